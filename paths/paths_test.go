package paths

import (
	"reflect"
	"testing"
)

type clipTestCase struct {
	bounds Bounds
	path   Path
	want   []Path
}

func TestClipped(t *testing.T) {
	b := func(x0, y0, x1, y1 float64) Bounds {
		return Bounds{Min: Vec2{x0, y0}, Max: Vec2{x1, y1}}
	}
	p := func(args ...float64) Path { return pathOf(t, args...) }

	cases := []clipTestCase{
		{
			bounds: b(0, 0, 300, 200),
			path:   p(-100, 100, 150, 100),
			want:   []Path{p(0, 100, 150, 100)},
		},
		{
			bounds: b(0, 0, 300, 200),
			path:   p(-100, 100, 400, 100),
			want:   []Path{p(0, 100, 300, 100)},
		},
		{
			bounds: b(0, 0, 300, 200),
			path:   p(150, 100, 400, 100),
			want:   []Path{p(150, 100, 300, 100)},
		},
		{
			bounds: b(0, 0, 300, 200),
			path:   p(150, 100, 150, 250),
			want:   []Path{p(150, 100, 150, 200)},
		},
		{
			bounds: b(0, 0, 300, 200),
			path:   p(150, -50, 150, 100),
			want:   []Path{p(150, 0, 150, 100)},
		},
		{
			bounds: b(0, 0, 300, 200),
			path:   p(150, -50, 150, 250),
			want:   []Path{p(150, 0, 150, 200)},
		},
		{
			bounds: b(0, 0, 200, 100),
			path:   p(-50, 0, 100, 150, 250, 0),
			want:   []Path{p(0, 50, 50, 100), p(150, 100, 200, 50)},
		},
		{
			bounds: b(0, 0, 200, 100),
			path:   p(10, 10, 20, 20, 30, 10),
			want:   []Path{p(10, 10, 20, 20, 30, 10)},
		},
	}
	for _, c := range cases {
		ps := &Paths{
			Bounds: b(-1000, -1000, 1000, 1000),
			P:      []Path{{V: append([]Vec2{}, c.path.V...)}},
		}
		orig := ps.Clone()
		got := ps.Clipped(c.bounds)
		if !reflect.DeepEqual(got.P, c.want) {
			t.Errorf("%v.Clipped(%v).P = %v, want %v", orig, c.bounds, got.P, c.want)
		}
		if got.Bounds != c.bounds {
			t.Errorf("Clipped(%v).Bounds = %v", c.bounds, got.Bounds)
		}
		if !reflect.DeepEqual(ps, orig) {
			t.Errorf("Clipped modified its receiver")
		}
	}
}

func TestClippedOutside(t *testing.T) {
	ps := &Paths{P: []Path{pathOf(t, -10, -10, -5, -20)}}
	got := ps.Clipped(Bounds{Max: Vec2{100, 100}})
	if len(got.P) != 0 {
		t.Errorf("Clipped path wholly outside the bounds = %v, want none", got.P)
	}
}

func TestTightenBounds(t *testing.T) {
	ps := &Paths{P: []Path{pathOf(t, 1, 5, -2, 3), pathOf(t, 4, -1)}}
	ps.TightenBounds()
	want := Bounds{Min: Vec2{-2, -1}, Max: Vec2{4, 5}}
	if ps.Bounds != want {
		t.Errorf("TightenBounds() = %v, want %v", ps.Bounds, want)
	}
	empty := &Paths{Bounds: want}
	empty.TightenBounds()
	if empty.Bounds != (Bounds{}) {
		t.Errorf("TightenBounds() on no paths = %v, want zero", empty.Bounds)
	}
}

func TestTransformed(t *testing.T) {
	ps := &Paths{
		Bounds: Bounds{Min: Vec2{0, 0}, Max: Vec2{10, 20}},
		P:      []Path{pathOf(t, 0, 0, 10, 20, 5, 10)},
	}
	orig := ps.Clone()
	got := ps.Transformed(Bounds{Min: Vec2{100, 100}, Max: Vec2{120, 140}})
	want := []Path{pathOf(t, 100, 100, 120, 140, 110, 120)}
	if !reflect.DeepEqual(got.P, want) {
		t.Errorf("Transformed().P = %v, want %v", got.P, want)
	}
	if !reflect.DeepEqual(ps, orig) {
		t.Errorf("Transformed modified its receiver")
	}

	moved := ps.Translated(Vec2{1, -1})
	want = []Path{pathOf(t, 1, -1, 11, 19, 6, 9)}
	if !reflect.DeepEqual(moved.P, want) {
		t.Errorf("Translated().P = %v, want %v", moved.P, want)
	}
	if moved.Bounds != (Bounds{Min: Vec2{1, -1}, Max: Vec2{11, 19}}) {
		t.Errorf("Translated().Bounds = %v", moved.Bounds)
	}
	if n := moved.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}
