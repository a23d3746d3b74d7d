// Package geo turns geographic tracks into screen-space paths that
// the paths package can generalize, and back again.
package geo

import (
	"math"

	"github.com/paulhankin/pathgen/paths"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Location is a WGS84 coordinate in degrees.
type Location struct {
	Lat, Lon float64
}

// Track is a named sequence of locations, such as a GPX track segment.
type Track struct {
	Name   string
	Points []Location
}

// A Projector maps locations to screen positions and back.
type Projector interface {
	Project(Location) paths.Vec2
	Unproject(paths.Vec2) Location
}

const (
	tileSize = 256
	maxLat   = 85.05112878
	// half the circumference of the web mercator world, in meters.
	mercatorHalf = math.Pi * 6378137
)

// Mercator is the web mercator projection used by slippy maps. At
// zoom level z the world is 256*2^z pixels across; the projection is
// positioned so that Center appears in the middle of Viewport, with y
// growing downwards.
type Mercator struct {
	Zoom     float64
	Center   Location
	Viewport paths.Vec2
}

func (m *Mercator) worldSize() float64 {
	return tileSize * math.Exp2(m.Zoom)
}

// world returns the position of l in world pixels.
func (m *Mercator) world(l Location) paths.Vec2 {
	lat := math.Max(-maxLat, math.Min(maxLat, l.Lat))
	p := project.WGS84.ToMercator(orb.Point{l.Lon, lat})
	ws := m.worldSize()
	return paths.Vec2{
		(p[0] + mercatorHalf) / (2 * mercatorHalf) * ws,
		(mercatorHalf - p[1]) / (2 * mercatorHalf) * ws,
	}
}

// Project returns the screen position of l.
func (m *Mercator) Project(l Location) paths.Vec2 {
	c := m.world(m.Center)
	w := m.world(l)
	return paths.Vec2{
		w[0] - c[0] + m.Viewport[0]/2,
		w[1] - c[1] + m.Viewport[1]/2,
	}
}

// Unproject returns the location shown at screen position v.
func (m *Mercator) Unproject(v paths.Vec2) Location {
	c := m.world(m.Center)
	ws := m.worldSize()
	wx := v[0] - m.Viewport[0]/2 + c[0]
	wy := v[1] - m.Viewport[1]/2 + c[1]
	p := project.Mercator.ToWGS84(orb.Point{
		wx/ws*2*mercatorHalf - mercatorHalf,
		mercatorHalf - wy/ws*2*mercatorHalf,
	})
	return Location{Lat: p.Lat(), Lon: p.Lon()}
}

// Bounds is the screen rectangle covered by the viewport.
func (m *Mercator) Bounds() paths.Bounds {
	return paths.Bounds{Max: m.Viewport}
}

// Centroid returns the centre of the tracks, treating latitude and
// longitude as planar coordinates and weighting each segment by its
// length. Tracks with no length fall back to the mean of their points.
// It returns false if there are no points at all.
func Centroid(tracks ...Track) (Location, bool) {
	var lines []*geom.LineString
	var sum Location
	n := 0
	for _, t := range tracks {
		flat := make([]float64, 0, 2*len(t.Points))
		for _, l := range t.Points {
			flat = append(flat, l.Lon, l.Lat)
			sum.Lat += l.Lat
			sum.Lon += l.Lon
			n++
		}
		if len(t.Points) >= 2 {
			lines = append(lines, geom.NewLineStringFlat(geom.XY, flat))
		}
	}
	if n == 0 {
		return Location{}, false
	}
	if len(lines) > 0 {
		c := xy.LinesCentroid(lines[0], lines[1:]...)
		if len(c) >= 2 && !math.IsNaN(c[0]) && !math.IsNaN(c[1]) {
			return Location{Lat: c[1], Lon: c[0]}, true
		}
	}
	return Location{Lat: sum.Lat / float64(n), Lon: sum.Lon / float64(n)}, true
}

// ProjectTracks projects every track to a path. The bounds of the
// result are the projector's viewport if it has one, otherwise the
// bounds of the projected points.
func ProjectTracks(proj Projector, tracks ...Track) *paths.Paths {
	ps := &paths.Paths{}
	for _, t := range tracks {
		p := paths.Path{V: make([]paths.Vec2, len(t.Points))}
		for i, l := range t.Points {
			p.V[i] = proj.Project(l)
		}
		ps.P = append(ps.P, p)
	}
	if b, ok := proj.(interface{ Bounds() paths.Bounds }); ok {
		ps.Bounds = b.Bounds()
	} else {
		ps.TightenBounds()
	}
	return ps
}

// UnprojectPoints maps screen positions back to locations.
func UnprojectPoints(proj Projector, v []paths.Vec2) []Location {
	r := make([]Location, len(v))
	for i, x := range v {
		r[i] = proj.Unproject(x)
	}
	return r
}
