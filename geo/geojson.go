package geo

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON returns the line strings in a GeoJSON document. The
// document may be a FeatureCollection, a single Feature or a bare
// geometry. Features contribute their "name" property as the track
// name; points and polygons are ignored.
func ReadGeoJSON(r io.Reader) ([]Track, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(buf, &head); err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %v", err)
	}
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geojson: %v", err)
		}
		var tracks []Track
		for _, f := range fc.Features {
			tracks = append(tracks, featureTracks(f)...)
		}
		return tracks, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geojson: %v", err)
		}
		return featureTracks(f), nil
	case "":
		return nil, fmt.Errorf("geojson document has no type")
	default:
		g, err := geojson.UnmarshalGeometry(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geojson: %v", err)
		}
		return geometryTracks("", g.Geometry()), nil
	}
}

func featureTracks(f *geojson.Feature) []Track {
	name, _ := f.Properties["name"].(string)
	return geometryTracks(name, f.Geometry)
}

func geometryTracks(name string, g orb.Geometry) []Track {
	switch g := g.(type) {
	case orb.LineString:
		return []Track{{Name: name, Points: lineLocations(g)}}
	case orb.MultiLineString:
		var tracks []Track
		for _, ls := range g {
			tracks = append(tracks, Track{Name: name, Points: lineLocations(ls)})
		}
		return tracks
	case orb.Collection:
		var tracks []Track
		for _, c := range g {
			tracks = append(tracks, geometryTracks(name, c)...)
		}
		return tracks
	}
	return nil
}

func lineLocations(ls orb.LineString) []Location {
	r := make([]Location, len(ls))
	for i, p := range ls {
		r[i] = Location{Lat: p.Lat(), Lon: p.Lon()}
	}
	return r
}

func lineString(ls []Location) orb.LineString {
	r := make(orb.LineString, len(ls))
	for i, l := range ls {
		r[i] = orb.Point{l.Lon, l.Lat}
	}
	return r
}

// A Feature is a named line together with the properties written
// alongside it.
type Feature struct {
	Track
	Properties map[string]interface{}
}

// WriteGeoJSON writes the features as a GeoJSON FeatureCollection of
// line strings.
func WriteGeoJSON(w io.Writer, features []Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(lineString(f.Points))
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}
		if f.Name != "" {
			gf.Properties["name"] = f.Name
		}
		fc.Append(gf)
	}
	buf, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
