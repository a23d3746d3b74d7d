package paths

import (
	"fmt"
	"math"
)

// segDistSq returns the squared distance from v to the segment s-e.
// When the foot of the perpendicular falls outside the segment the
// distance to the nearer end is used instead.
func segDistSq(v, s, e Vec2) float64 {
	d := vec2SubVec2(e, s)
	p := s
	if d[0] != 0 || d[1] != 0 {
		t := ((v[0]-s[0])*d[0] + (v[1]-s[1])*d[1]) / (d[0]*d[0] + d[1]*d[1])
		if t > 1 {
			p = e
		} else if t > 0 {
			p = Vec2{s[0] + d[0]*t, s[1] + d[1]*t}
		}
	}
	return vec2distSq(v, p)
}

func checkTolerance(tol float64) error {
	if tol < 0 || math.IsNaN(tol) {
		return fmt.Errorf("%w: tolerance %v must be non-negative", ErrInvalidParameter, tol)
	}
	return nil
}

// simplifyRadial keeps only points farther than the tolerance from
// the previously kept point. The last point is always kept.
func simplifyRadial(v []Vec2, sqTol float64) []Vec2 {
	r := []Vec2{v[0]}
	prev := 0
	for i := 1; i < len(v); i++ {
		if vec2distSq(v[i], v[prev]) > sqTol {
			r = append(r, v[i])
			prev = i
		}
	}
	if prev != len(v)-1 {
		r = append(r, v[len(v)-1])
	}
	return r
}

// markWorst finds the point strictly between first and last that is
// furthest from the segment joining them. If it's further than the
// tolerance it is kept, and both halves are examined in turn.
// Among equally distant points the one with the lowest index wins.
func markWorst(v []Vec2, first, last int, sqTol float64, keep []bool) {
	worst := -1
	worstD := sqTol
	for i := first + 1; i < last; i++ {
		if d := segDistSq(v[i], v[first], v[last]); d > worstD {
			worst = i
			worstD = d
		}
	}
	if worst < 0 {
		return
	}
	keep[worst] = true
	markWorst(v, first, worst, sqTol, keep)
	markWorst(v, worst, last, sqTol, keep)
}

func simplifyDouglasPeucker(v []Vec2, sqTol float64) []Vec2 {
	keep := make([]bool, len(v))
	keep[0] = true
	keep[len(v)-1] = true
	markWorst(v, 0, len(v)-1, sqTol, keep)
	var r []Vec2
	for i, k := range keep {
		if k {
			r = append(r, v[i])
		}
	}
	return r
}

// Simplify removes points from v, with the guarantee that all removed
// points are within tol (distance) from the new path. The first and
// last points are always kept, and the points that remain are in
// their original order.
//
// If highQuality is false, points closer than tol to their
// predecessor are discarded before the Douglas-Peucker pass, which is
// faster on densely sampled paths but may drop a few more points.
//
// Paths with fewer than two points are returned unchanged (copied).
// A negative or NaN tolerance returns ErrInvalidParameter.
func Simplify(v []Vec2, tol float64, highQuality bool) ([]Vec2, error) {
	if err := checkTolerance(tol); err != nil {
		return nil, err
	}
	if len(v) < 2 {
		return clonePoints(v), nil
	}
	sqTol := tol * tol
	if !highQuality {
		v = simplifyRadial(v, sqTol)
	}
	return simplifyDouglasPeucker(v, sqTol), nil
}

// Simplified returns a copy of the paths with each path simplified.
func (ps *Paths) Simplified(tol float64, highQuality bool) (*Paths, error) {
	np := &Paths{Bounds: ps.Bounds, P: make([]Path, len(ps.P))}
	for i, p := range ps.P {
		v, err := Simplify(p.V, tol, highQuality)
		if err != nil {
			return nil, err
		}
		np.P[i] = Path{V: v}
	}
	return np, nil
}
