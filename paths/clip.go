package paths

// region is a Cohen-Sutherland outcode: which sides of the bounds a
// point lies beyond.
type region uint8

const (
	beyondLeft region = 1 << iota
	beyondRight
	beyondBottom
	beyondTop
)

func regionOf(v Vec2, b Bounds) region {
	var r region
	if v[0] < b.Min[0] {
		r |= beyondLeft
	} else if v[0] > b.Max[0] {
		r |= beyondRight
	}
	if v[1] < b.Min[1] {
		r |= beyondBottom
	} else if v[1] > b.Max[1] {
		r |= beyondTop
	}
	return r
}

// clipSegment clips a-b to the bounds using Cohen-Sutherland.
// ok is false if no part of the segment is inside.
func clipSegment(a, b Vec2, bs Bounds) (Vec2, Vec2, bool) {
	ra, rb := regionOf(a, bs), regionOf(b, bs)
	for {
		if ra|rb == 0 {
			return a, b, true
		}
		if ra&rb != 0 {
			return a, b, false
		}
		out := ra
		if rb > ra {
			out = rb
		}
		var v Vec2
		switch {
		case out&beyondTop != 0:
			v = Vec2{a[0] + (b[0]-a[0])*(bs.Max[1]-a[1])/(b[1]-a[1]), bs.Max[1]}
		case out&beyondBottom != 0:
			v = Vec2{a[0] + (b[0]-a[0])*(bs.Min[1]-a[1])/(b[1]-a[1]), bs.Min[1]}
		case out&beyondRight != 0:
			v = Vec2{bs.Max[0], a[1] + (b[1]-a[1])*(bs.Max[0]-a[0])/(b[0]-a[0])}
		default:
			v = Vec2{bs.Min[0], a[1] + (b[1]-a[1])*(bs.Min[0]-a[0])/(b[0]-a[0])}
		}
		if out == ra {
			a, ra = v, regionOf(v, bs)
		} else {
			b, rb = v, regionOf(v, bs)
		}
	}
}

// clipPoints splits v into the runs that lie inside b.
// Runs with fewer than two points are dropped.
func clipPoints(v []Vec2, b Bounds) []Path {
	var parts []Path
	joined := false
	for i := 1; i < len(v); i++ {
		a, c, ok := clipSegment(v[i-1], v[i], b)
		if !ok {
			joined = false
			continue
		}
		if !joined || a != v[i-1] {
			parts = append(parts, Path{V: []Vec2{a}})
		}
		last := &parts[len(parts)-1]
		last.V = append(last.V, c)
		joined = c == v[i]
	}
	r := parts[:0]
	for _, p := range parts {
		if len(p.V) >= 2 {
			r = append(r, p)
		}
	}
	return r
}

// Clipped returns the parts of the paths inside b, with b as their
// bounds. A path that leaves and re-enters b is split in two.
func (ps *Paths) Clipped(b Bounds) *Paths {
	np := &Paths{Bounds: b}
	for _, p := range ps.P {
		np.P = append(np.P, clipPoints(p.V, b)...)
	}
	return np
}
