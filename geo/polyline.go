package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// DecodePolyline decodes a track from the encoded polyline format used
// by mapping APIs, with five decimal places of precision.
func DecodePolyline(s string) ([]Location, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("bad polyline: %v", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("bad polyline: %d trailing bytes", len(rest))
	}
	ls := make([]Location, len(coords))
	for i, c := range coords {
		ls[i] = Location{Lat: c[0], Lon: c[1]}
	}
	return ls, nil
}

// EncodePolyline encodes a track in the encoded polyline format.
func EncodePolyline(ls []Location) string {
	coords := make([][]float64, len(ls))
	for i, l := range ls {
		coords[i] = []float64{l.Lat, l.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
