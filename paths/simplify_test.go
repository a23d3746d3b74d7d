package paths

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

type simplifyTestCase struct {
	desc string
	path Path
	tol  float64
	hq   bool
	want Path
}

// pathOf builds a path from x, y pairs.
func pathOf(t *testing.T, args ...float64) Path {
	t.Helper()
	if len(args)%2 != 0 {
		t.Fatalf("pathOf needs an even number of args, got %v", args)
	}
	path := Path{V: []Vec2{}}
	for i := 0; i < len(args); i += 2 {
		path.V = append(path.V, Vec2{args[i], args[i+1]})
	}
	return path
}

func TestSimplify(t *testing.T) {
	p := func(args ...float64) Path { return pathOf(t, args...) }

	cases := []simplifyTestCase{
		{
			desc: "line with slightly displaced midpoint, high tolerance",
			path: p(-1, 0, 0, 0.25, 1.0, 0),
			tol:  0.5,
			hq:   true,
			want: p(-1, 0, 1, 0),
		},
		{
			desc: "line with slightly displaced midpoint, low tolerance",
			path: p(-1, 0, 0, 0.5, 1.0, 0),
			tol:  0.2,
			hq:   true,
			want: p(-1, 0, 0, 0.5, 1.0, 0),
		},
		{
			desc: "square with slightly displaced midpoints",
			path: p(-1, -1, 0, -1.1, 1, -1, 0.9, 0, 1, 1, 0, 1.1, -1, 1, -0.9, 0, -1, -1),
			tol:  0.2,
			hq:   true,
			want: p(-1, -1, 1, -1, 1, 1, -1, 1, -1, -1),
		},
		{
			desc: "collinear points",
			path: p(0, 0, 1, 0, 2, 0, 3, 0, 4, 0),
			tol:  0.5,
			hq:   true,
			want: p(0, 0, 4, 0),
		},
		{
			desc: "collinear points, zero tolerance",
			path: p(0, 0, 1, 0, 2, 0, 3, 0, 4, 0),
			tol:  0,
			hq:   true,
			want: p(0, 0, 4, 0),
		},
		{
			desc: "zero tolerance keeps every point off the line",
			path: p(0, 0, 1, 0, 2, 0.001, 3, 0, 4, 0),
			tol:  0,
			hq:   true,
			want: p(0, 0, 1, 0, 2, 0.001, 3, 0, 4, 0),
		},
		{
			desc: "point beyond the end of the anchor segment",
			path: p(0, 0, 5, 0.1, 4, 0),
			tol:  0.5,
			hq:   true,
			want: p(0, 0, 5, 0.1, 4, 0),
		},
		{
			desc: "zig-zag with equidistant peaks",
			path: p(0, 0, 1, 1, 2, 0, 3, 1, 4, 0),
			tol:  0.5,
			hq:   true,
			want: p(0, 0, 1, 1, 2, 0, 3, 1, 4, 0),
		},
		{
			desc: "equidistant points: the earliest splits the path",
			path: p(0, 0, 1, 2, 2, 2, 3, 0),
			tol:  1.5,
			hq:   true,
			want: p(0, 0, 1, 2, 3, 0),
		},
		{
			desc: "fast mode drops points close to their predecessor",
			path: p(0, 0, 0.1, 0.3, 0.2, 0, 5, 0, 10, 0),
			tol:  0.5,
			hq:   false,
			want: p(0, 0, 10, 0),
		},
		{
			desc: "fast mode keeps the last point even when close to its predecessor",
			path: p(0, 0, 3, 3, 3.1, 3),
			tol:  1,
			hq:   false,
			want: p(0, 0, 3.1, 3),
		},
		{
			desc: "single point",
			path: p(7, 7),
			tol:  1,
			hq:   true,
			want: p(7, 7),
		},
		{
			desc: "empty",
			path: p(),
			tol:  1,
			hq:   false,
			want: p(),
		},
	}
	for _, c := range cases {
		arg := append([]Vec2{}, c.path.V...)
		got, err := Simplify(arg, c.tol, c.hq)
		if err != nil {
			t.Errorf("%s: Simplify(%v, %v, %v) failed: %v", c.desc, c.path.V, c.tol, c.hq, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want.V) {
			t.Errorf("%s: Simplify(%v, %v, %v) = %v, want %v", c.desc, c.path.V, c.tol, c.hq, got, c.want.V)
		}
		if !reflect.DeepEqual(arg, c.path.V) {
			t.Errorf("%s: Simplify modified its input: %v", c.desc, arg)
		}
	}
}

// TestSimplifyTieBreak checks that among interior points at the same
// maximum distance, the one earliest in the path splits it. Which
// one wins decides what else survives, so reversing the path changes
// the result.
func TestSimplifyTieBreak(t *testing.T) {
	cases := []struct {
		v, want []Vec2
	}{
		{
			v:    []Vec2{{0, 0}, {1, 2}, {2, 2}, {3, 0}},
			want: []Vec2{{0, 0}, {1, 2}, {3, 0}},
		},
		{
			v:    []Vec2{{3, 0}, {2, 2}, {1, 2}, {0, 0}},
			want: []Vec2{{3, 0}, {2, 2}, {0, 0}},
		},
	}
	for _, c := range cases {
		for i := 0; i < 3; i++ {
			got, err := Simplify(c.v, 1.5, true)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Simplify(%v, 1.5) = %v, want %v", c.v, got, c.want)
			}
		}
	}
}

func TestSimplifyInvalid(t *testing.T) {
	for _, tol := range []float64{-1, -1e-9, math.NaN()} {
		if _, err := Simplify([]Vec2{{0, 0}, {1, 1}}, tol, true); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Simplify(tol=%v) error = %v, want ErrInvalidParameter", tol, err)
		}
	}
	if _, err := Simplify(nil, -1, true); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Simplify(nil, -1) error = %v, want ErrInvalidParameter", err)
	}
}

func TestSimplified(t *testing.T) {
	p := func(args ...float64) Path { return pathOf(t, args...) }
	ps := &Paths{
		Bounds: Bounds{Min: Vec2{-1000, -1000}, Max: Vec2{1000, 1000}},
		P:      []Path{p(-1, 0, 0, 0.25, 1.0, 0), p(0, 0, 1, 0, 2, 5)},
	}
	orig := ps.Clone()
	got, err := ps.Simplified(0.5, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []Path{p(-1, 0, 1, 0), p(0, 0, 1, 0, 2, 5)}
	if !reflect.DeepEqual(got.P, want) {
		t.Errorf("%v.Simplified(0.5).P = %v, want %v", orig, got.P, want)
	}
	if !reflect.DeepEqual(ps, orig) {
		t.Errorf("Simplified modified its receiver: %v", ps)
	}
	if _, err := ps.Simplified(-1, true); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Simplified(-1) error = %v, want ErrInvalidParameter", err)
	}
}

// randomWalk returns a wandering path of n points.
func randomWalk(rnd *rand.Rand, n int) []Vec2 {
	v := make([]Vec2, n)
	heading := 0.0
	for i := 1; i < n; i++ {
		heading += rnd.NormFloat64() * 0.4
		step := 2 + rnd.Float64()*6
		v[i] = Vec2{v[i-1][0] + step*math.Cos(heading), v[i-1][1] + step*math.Sin(heading)}
	}
	return v
}

func isSubsequence(sub, v []Vec2) bool {
	j := 0
	for _, x := range v {
		if j < len(sub) && sub[j] == x {
			j++
		}
	}
	return j == len(sub)
}

func TestSimplifyProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	tols := []float64{0, 0.5, 1, 2, 4, 8, 25}
	for trial := 0; trial < 50; trial++ {
		v := randomWalk(rnd, 2+rnd.Intn(300))
		prevLen := len(v) + 1
		for _, tol := range tols {
			for _, hq := range []bool{true, false} {
				s, err := Simplify(v, tol, hq)
				if err != nil {
					t.Fatal(err)
				}
				if len(s) < 2 || len(s) > len(v) {
					t.Errorf("len(Simplify(%d points, %v, %v)) = %d", len(v), tol, hq, len(s))
				}
				if s[0] != v[0] || s[len(s)-1] != v[len(v)-1] {
					t.Errorf("Simplify(%v, %v) changed the endpoints", tol, hq)
				}
				if !isSubsequence(s, v) {
					t.Errorf("Simplify(%v, %v) is not an ordered subset of its input", tol, hq)
				}
				if !hq {
					continue
				}
				again, _ := Simplify(s, tol, hq)
				if !reflect.DeepEqual(again, s) {
					t.Errorf("Simplify is not idempotent at tolerance %v: %d points then %d", tol, len(s), len(again))
				}
				if len(s) > prevLen {
					t.Errorf("Simplify(%v) has %d points, more than %d at a lower tolerance", tol, len(s), prevLen)
				}
				prevLen = len(s)
			}
		}
	}
}

// TestSimplifyMatchesOrb compares the high quality simplification
// against orb's Douglas-Peucker implementation.
func TestSimplifyMatchesOrb(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for trial := 0; trial < 30; trial++ {
		v := randomWalk(rnd, 3+rnd.Intn(500))
		ls := make(orb.LineString, len(v))
		for i, x := range v {
			ls[i] = orb.Point(x)
		}
		for _, tol := range []float64{0.3, 1, 4, 12} {
			got, err := Simplify(v, tol, true)
			if err != nil {
				t.Fatal(err)
			}
			want, ok := simplify.DouglasPeucker(tol).Simplify(ls.Clone()).(orb.LineString)
			if !ok {
				t.Fatalf("orb simplify did not return a line string")
			}
			if len(got) != len(want) {
				t.Errorf("trial %d tol %v: got %d points, orb kept %d", trial, tol, len(got), len(want))
				continue
			}
			for i := range got {
				if got[i] != Vec2(want[i]) {
					t.Errorf("trial %d tol %v: point %d = %v, orb has %v", trial, tol, i, got[i], want[i])
					break
				}
			}
		}
	}
}
