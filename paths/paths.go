// Package paths provides tools for generalizing 2d paths consisting
// of line segments: simplification, moving-average smoothing, and
// the composition of the two.
//
// All transforms are pure. They never modify their input and never
// return slices that share storage with it, so the same sequence can
// be handed to several transforms, possibly concurrently.
package paths

import "math"

// Vec2 is a 2-dimensional vector.
type Vec2 [2]float64

// A Path is a contiguous series of line segments, from the
// first point in the V slice to the last.
type Path struct {
	V []Vec2
}

// Bounds describes an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec2
}

// Paths is a set of paths, along with a view bounds.
type Paths struct {
	Bounds Bounds
	P      []Path
}

func clonePoints(v []Vec2) []Vec2 {
	r := make([]Vec2, len(v))
	copy(r, v)
	return r
}

// Clone returns a deep copy of ps.
func (ps *Paths) Clone() *Paths {
	np := &Paths{Bounds: ps.Bounds, P: make([]Path, len(ps.P))}
	for i, p := range ps.P {
		np.P[i] = Path{V: clonePoints(p.V)}
	}
	return np
}

// Len returns the total number of vertices across all paths.
func (ps *Paths) Len() int {
	n := 0
	for _, p := range ps.P {
		n += len(p.V)
	}
	return n
}

// TightenBounds adjusts the bounds to exactly contain the paths.
// If there are no paths, the bounds are set to zero.
func (ps *Paths) TightenBounds() {
	inf := math.Inf(1)
	lo := Vec2{inf, inf}
	hi := Vec2{-inf, -inf}
	if ps.Len() == 0 {
		ps.Bounds = Bounds{}
		return
	}
	for _, p := range ps.P {
		for _, v := range p.V {
			lo[0] = math.Min(lo[0], v[0])
			lo[1] = math.Min(lo[1], v[1])
			hi[0] = math.Max(hi[0], v[0])
			hi[1] = math.Max(hi[1], v[1])
		}
	}
	ps.Bounds = Bounds{Min: lo, Max: hi}
}

// Translated returns a copy of the paths moved by dx.
func (ps *Paths) Translated(dx Vec2) *Paths {
	b := ps.Bounds
	return ps.Transformed(Bounds{
		Min: vec2AddVec2(b.Min, dx),
		Max: vec2AddVec2(b.Max, dx),
	})
}

// Transformed returns a copy of the paths resized so that the rectangle
// forming the current bounds becomes nb. A bounds with zero width or
// height is stretched around its center rather than divided by zero.
func (ps *Paths) Transformed(nb Bounds) *Paths {
	ob := ps.Bounds
	scale := func(x float64, axis int) float64 {
		ow := ob.Max[axis] - ob.Min[axis]
		nw := nb.Max[axis] - nb.Min[axis]
		if ow == 0 {
			return nb.Min[axis] + nw/2
		}
		return (x-ob.Min[axis])/ow*nw + nb.Min[axis]
	}
	np := &Paths{Bounds: nb, P: make([]Path, len(ps.P))}
	for i, p := range ps.P {
		v := make([]Vec2, len(p.V))
		for j, x := range p.V {
			v[j] = Vec2{scale(x[0], 0), scale(x[1], 1)}
		}
		np.P[i] = Path{V: v}
	}
	return np
}

// move adds a new (initially empty) path starting at x,
// unless the last path already ends at x.
func (ps *Paths) move(x Vec2) {
	if len(ps.P) == 0 {
		ps.P = append(ps.P, Path{V: []Vec2{x}})
		return
	}
	p := &ps.P[len(ps.P)-1]
	if len(p.V) > 0 && p.V[len(p.V)-1] == x {
		return
	}
	ps.P = append(ps.P, Path{V: []Vec2{x}})
}

// line extends the last path with an edge that goes to x.
func (ps *Paths) line(x Vec2) {
	p := &ps.P[len(ps.P)-1]
	p.V = append(p.V, x)
}

func vec2AddVec2(a, b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func vec2SubVec2(a, b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func vec2distSq(a, b Vec2) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
