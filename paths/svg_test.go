package paths

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/rustyoz/svg"
)

// A simple test svg that contains paths and groups that have
// transforms applied to them.
var testSVG = `
<svg width="2000" height="1000">
   <path d="M 123, 456 321, 654"/>
   <g transform="translate(200, 100) scale(2)" stroke="black" fill="none">
	   <path d="M100,50 300, 200"/>
	   <g transform="translate(50,50)">
		   <path d="M 50, 50 250, 50 150, 100"/>
	   </g>
   </g>
</svg>`

func TestSVG(t *testing.T) {
	got, err := FromSVG(strings.NewReader(testSVG))
	if err != nil {
		t.Fatalf("failed to parse svg: %v", err)
	}
	want := &Paths{
		Bounds: Bounds{Max: Vec2{2000, 1000}},
		P: []Path{
			{V: []Vec2{{123, 456}, {321, 654}}},
			{V: []Vec2{{400, 200}, {800, 500}}},
			{V: []Vec2{{400, 300}, {800, 300}, {600, 400}}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("svg parse. Got:\n%v\nWant:\n%v\n", got, want)
	}
}

func TestSVGElements(t *testing.T) {
	const doc = `
<svg viewBox="-10 -20 100 50">
   <polyline points="0,0 10,0 10,10"/>
   <polygon points="0 0 5 0 5 5"/>
   <line x1="1" y1="2" x2="3" y2="4"/>
   <path d="m 10 10 l 5 0 l 0 5 z"/>
   <path d="M0-1L2-3" transform="matrix(1 0 0 1 -1 1)"/>
   <text x="5" y="5">ignored</text>
</svg>`
	got, err := FromSVG(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse svg: %v", err)
	}
	want := &Paths{
		Bounds: Bounds{Min: Vec2{-10, -20}, Max: Vec2{90, 30}},
		P: []Path{
			{V: []Vec2{{0, 0}, {10, 0}, {10, 10}}},
			{V: []Vec2{{0, 0}, {5, 0}, {5, 5}, {0, 0}}},
			{V: []Vec2{{1, 2}, {3, 4}}},
			{V: []Vec2{{10, 10}, {15, 10}, {15, 15}, {10, 10}}},
			{V: []Vec2{{-1, 0}, {1, -2}}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("svg parse. Got:\n%v\nWant:\n%v\n", got, want)
	}
}

func TestSVGErrors(t *testing.T) {
	docs := []string{
		`<svg width="10" height="10"><path d="M 1 2 3"/></svg>`,
		`<svg width="10" height="10"><path d="M 1 2 C 3 4 5 6 7 8"/></svg>`,
		`<svg width="10" height="10"><g transform="rotate(45)"><path d="M 1 2 3 4"/></g></svg>`,
		`<svg width="ten" height="10"></svg>`,
	}
	for _, d := range docs {
		if _, err := FromSVG(strings.NewReader(d)); err == nil {
			t.Errorf("FromSVG(%q) succeeded, want an error", d)
		}
	}
}

// TestSVGRoundTrip parses paths out of an svg, writes them back
// to a new svg file, parses the paths out of that, and then checks
// that the paths (or bounds) don't change.
func TestSVGRoundTrip(t *testing.T) {
	got, err := FromSVG(strings.NewReader(testSVG))
	if err != nil {
		t.Fatalf("failed to parse svg: %v", err)
	}
	if len(got.P) == 0 {
		t.Fatalf("expected some paths")
	}
	var bb bytes.Buffer
	if err := got.SVG(&bb); err != nil {
		t.Fatalf("failed to write back svg: %v", err)
	}
	got2, err := FromSVG(&bb)
	if err != nil {
		t.Fatalf("failed to re-parse svg: %v", err)
	}
	if !reflect.DeepEqual(got, got2) {
		t.Errorf("svg round-trip not identity. Started with:\n%v\nGot:\n%v", got, got2)
	}
}

func TestWriteLayersSVG(t *testing.T) {
	v := []Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	r, err := Generalize(v, &Options{Tolerance: 0.5, Window: 3, Layers: LayerOriginal | LayerSimplified})
	if err != nil {
		t.Fatal(err)
	}
	b := Bounds{Max: Vec2{10, 10}}
	var bb bytes.Buffer
	if err := WriteLayersSVG(&bb, b, []*Report{r}); err != nil {
		t.Fatal(err)
	}
	out := bb.String()
	for _, id := range []string{`id="original"`, `id="simplified"`} {
		if !strings.Contains(out, id) {
			t.Errorf("layer svg is missing %s:\n%s", id, out)
		}
	}
	if strings.Contains(out, `id="averaged"`) {
		t.Errorf("layer svg contains a layer that was not computed:\n%s", out)
	}
	back, err := FromSVG(&bb)
	if err != nil {
		t.Fatalf("failed to re-parse layer svg: %v", err)
	}
	want := []Path{{V: v}, {V: []Vec2{{0, 0}, {4, 0}}}}
	if !reflect.DeepEqual(back.P, want) {
		t.Errorf("re-parsed layers = %v, want %v", back.P, want)
	}
}

func TestFromSVGDrawing(t *testing.T) {
	const doc = `<svg width="100" height="50"><path d="M 10 10 L 20 20 L 30 10"/></svg>`
	got, err := FromSVGDrawing(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse svg: %v", err)
	}
	if got.Bounds != (Bounds{Max: Vec2{100, 50}}) {
		t.Errorf("bounds = %v, want 100x50", got.Bounds)
	}
	if got.Len() < 2 {
		t.Errorf("got %d vertices, want at least 2", got.Len())
	}
}

func TestDrawClosedErrors(t *testing.T) {
	dis := make(chan *svg.DrawingInstruction, 3)
	dis <- &svg.DrawingInstruction{Kind: svg.MoveInstruction, M: &svg.Tuple{1, 2}}
	dis <- &svg.DrawingInstruction{Kind: svg.LineInstruction, M: &svg.Tuple{3, 4}}
	dis <- &svg.DrawingInstruction{Kind: svg.CloseInstruction}
	close(dis)
	errs := make(chan error)
	close(errs)

	ps := &Paths{}
	if err := ps.draw(dis, errs); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	want := []Path{{V: []Vec2{{1, 2}, {3, 4}, {1, 2}}}}
	if !reflect.DeepEqual(ps.P, want) {
		t.Errorf("drawn paths = %v, want %v", ps.P, want)
	}

	dis = make(chan *svg.DrawingInstruction)
	errs = make(chan error, 1)
	errs <- fmt.Errorf("bad path")
	if err := (&Paths{}).draw(dis, errs); err == nil {
		t.Errorf("draw ignored an error from the parser")
	}
}
