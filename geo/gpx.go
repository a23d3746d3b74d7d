package geo

import (
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"
)

// ReadGPX returns every track segment and route in a GPX document as
// a separate track. Segments are named after their track, with a
// suffix when a track has more than one.
func ReadGPX(r io.Reader) ([]Track, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g, err := gpx.ParseBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gpx: %v", err)
	}
	var tracks []Track
	for _, t := range g.Tracks {
		for i, seg := range t.Segments {
			name := t.Name
			if len(t.Segments) > 1 {
				name = fmt.Sprintf("%s/%d", t.Name, i)
			}
			tracks = append(tracks, Track{Name: name, Points: gpxLocations(seg.Points)})
		}
	}
	for _, rt := range g.Routes {
		tracks = append(tracks, Track{Name: rt.Name, Points: gpxLocations(rt.Points)})
	}
	return tracks, nil
}

func gpxLocations(pts []gpx.GPXPoint) []Location {
	ls := make([]Location, len(pts))
	for i, p := range pts {
		ls[i] = Location{Lat: p.Latitude, Lon: p.Longitude}
	}
	return ls
}
