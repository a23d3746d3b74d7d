package paths

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is returned (wrapped) when a tolerance is
// negative or a smoothing window is less than one.
var ErrInvalidParameter = errors.New("invalid parameter")

// Order says which transform runs first when both are applied.
type Order int

const (
	// SmoothFirst averages the path and then simplifies the result.
	SmoothFirst Order = iota
	// SimplifyFirst simplifies the path and then averages the result.
	SimplifyFirst
)

func (o Order) String() string {
	switch o {
	case SmoothFirst:
		return "smooth-first"
	case SimplifyFirst:
		return "simplify-first"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder is the inverse of Order.String.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smooth-first", "smooth":
		return SmoothFirst, nil
	case "simplify-first", "simplify":
		return SimplifyFirst, nil
	}
	return 0, fmt.Errorf("%w: unknown order %q", ErrInvalidParameter, s)
}

// Composition is the result of applying both transforms in turn.
// Stage holds the output of the first transform and Output the
// output of the second.
type Composition struct {
	Order  Order
	Input  int
	Stage  []Vec2
	Output []Vec2
}

// StageCount is the number of points after the first transform.
func (c *Composition) StageCount() int { return len(c.Stage) }

// OutputCount is the number of points after both transforms.
func (c *Composition) OutputCount() int { return len(c.Output) }

func compose(v []Vec2, tol float64, window int, highQuality bool, order Order) (*Composition, error) {
	if err := checkTolerance(tol); err != nil {
		return nil, err
	}
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	c := &Composition{Order: order, Input: len(v)}
	var err error
	switch order {
	case SmoothFirst:
		if c.Stage, err = Smooth(v, window); err != nil {
			return nil, err
		}
		c.Output, err = Simplify(c.Stage, tol, highQuality)
	case SimplifyFirst:
		if c.Stage, err = Simplify(v, tol, highQuality); err != nil {
			return nil, err
		}
		c.Output, err = Smooth(c.Stage, window)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, order)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SimplifyThenSmooth simplifies v and then averages the simplified
// points over window.
func SimplifyThenSmooth(v []Vec2, tol float64, window int, highQuality bool) (*Composition, error) {
	return compose(v, tol, window, highQuality, SimplifyFirst)
}

// SmoothThenSimplify averages v over window and then simplifies the
// averaged points.
func SmoothThenSimplify(v []Vec2, tol float64, window int, highQuality bool) (*Composition, error) {
	return compose(v, tol, window, highQuality, SmoothFirst)
}

// Layer identifies one of the generalized versions of a path.
type Layer uint8

// The layers of a Report. Combined is the composition of simplifying
// and averaging in the order set by Options.Order.
const (
	LayerOriginal Layer = 1 << iota
	LayerSimplified
	LayerAveraged
	LayerCombined

	// AllLayers selects every layer.
	AllLayers = LayerOriginal | LayerSimplified | LayerAveraged | LayerCombined
)

var layerNames = []struct {
	l    Layer
	name string
}{
	{LayerOriginal, "original"},
	{LayerSimplified, "simplified"},
	{LayerAveraged, "averaged"},
	{LayerCombined, "combined"},
}

// Layers lists the individual layers set in l, in display order.
func (l Layer) Layers() []Layer {
	var r []Layer
	for _, ln := range layerNames {
		if l&ln.l != 0 {
			r = append(r, ln.l)
		}
	}
	return r
}

func (l Layer) String() string {
	var parts []string
	for _, ln := range layerNames {
		if l&ln.l != 0 {
			parts = append(parts, ln.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseLayers parses layer names such as "original", "combined" or
// "all" and returns their union.
func ParseLayers(names ...string) (Layer, error) {
	var l Layer
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "all" {
			l |= AllLayers
			continue
		}
		found := false
		for _, ln := range layerNames {
			if ln.name == n {
				l |= ln.l
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown layer %q", ErrInvalidParameter, n)
		}
	}
	return l, nil
}

// Options controls Generalize.
type Options struct {
	Tolerance   float64 // maximum distance of a dropped point from the simplified path
	Window      int     // number of points averaged by the moving average
	HighQuality bool    // skip the radial-distance pre-pass when simplifying
	Order       Order   // order of the transforms in the combined layer
	Layers      Layer   // which layers to compute
}

// DefaultOptions returns a tolerance of 4, a window of 5, high quality
// simplification and all layers, with the combined layer averaging
// before simplifying.
func DefaultOptions() *Options {
	return &Options{
		Tolerance:   4,
		Window:      5,
		HighQuality: true,
		Order:       SmoothFirst,
		Layers:      AllLayers,
	}
}

// Validate reports whether the options can be used.
func (o *Options) Validate() error {
	if err := checkTolerance(o.Tolerance); err != nil {
		return err
	}
	if err := checkWindow(o.Window); err != nil {
		return err
	}
	if o.Order != SmoothFirst && o.Order != SimplifyFirst {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, o.Order)
	}
	return nil
}

// Report holds the generalized versions of a single path. Layers that
// were not requested are nil.
type Report struct {
	Original   []Vec2
	Simplified []Vec2
	Averaged   []Vec2
	Combined   []Vec2
}

// Layer returns the points for a single layer.
func (r *Report) Layer(l Layer) []Vec2 {
	switch l {
	case LayerOriginal:
		return r.Original
	case LayerSimplified:
		return r.Simplified
	case LayerAveraged:
		return r.Averaged
	case LayerCombined:
		return r.Combined
	}
	return nil
}

// LayerCounts is the number of points in each layer of a report.
type LayerCounts struct {
	Original   int `json:"original"`
	Simplified int `json:"simplified"`
	Averaged   int `json:"averaged"`
	Combined   int `json:"combined"`
}

// Counts returns the number of points in each layer.
func (r *Report) Counts() LayerCounts {
	return LayerCounts{
		Original:   len(r.Original),
		Simplified: len(r.Simplified),
		Averaged:   len(r.Averaged),
		Combined:   len(r.Combined),
	}
}

// Generalize computes the layers requested in opts for v.
// A nil opts means DefaultOptions.
func Generalize(v []Vec2, opts *Options) (*Report, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Report{}
	var err error
	if opts.Layers&LayerOriginal != 0 {
		r.Original = clonePoints(v)
	}
	if opts.Layers&LayerSimplified != 0 {
		if r.Simplified, err = Simplify(v, opts.Tolerance, opts.HighQuality); err != nil {
			return nil, err
		}
	}
	if opts.Layers&LayerAveraged != 0 {
		if r.Averaged, err = Smooth(v, opts.Window); err != nil {
			return nil, err
		}
	}
	if opts.Layers&LayerCombined != 0 {
		c, err := compose(v, opts.Tolerance, opts.Window, opts.HighQuality, opts.Order)
		if err != nil {
			return nil, err
		}
		r.Combined = c.Output
	}
	return r, nil
}

// Generalize computes a report for every path.
func (ps *Paths) Generalize(opts *Options) ([]*Report, error) {
	rs := make([]*Report, len(ps.P))
	for i, p := range ps.P {
		r, err := Generalize(p.V, opts)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		rs[i] = r
	}
	return rs, nil
}
