package paths

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/JoshVarga/svgparser"
	"golang.org/x/net/html/charset"
)

// parseBounds reads the view bounds of the svg element, preferring
// the viewBox over width and height.
func parseBounds(e *svgparser.Element) (Bounds, error) {
	if vb := strings.Fields(strings.ReplaceAll(e.Attributes["viewBox"], ",", " ")); len(vb) == 4 {
		f, err := parseFloats(vb)
		if err != nil {
			return Bounds{}, fmt.Errorf("bad viewBox: %w", err)
		}
		return Bounds{Min: Vec2{f[0], f[1]}, Max: Vec2{f[0] + f[2], f[1] + f[3]}}, nil
	}
	width, err := strconv.ParseFloat(strings.TrimSuffix(e.Attributes["width"], "px"), 64)
	if err != nil {
		return Bounds{}, err
	}
	height, err := strconv.ParseFloat(strings.TrimSuffix(e.Attributes["height"], "px"), 64)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{Max: Vec2{width, height}}, nil
}

func parseLine(ps *Paths, xf *svgXform, e *svgparser.Element) error {
	f, err := parseFloats([]string{
		e.Attributes["x1"], e.Attributes["y1"], e.Attributes["x2"], e.Attributes["y2"],
	})
	if err != nil {
		return err
	}
	ps.move(xf.Apply(Vec2{f[0], f[1]}))
	ps.line(xf.Apply(Vec2{f[2], f[3]}))
	return nil
}

// parsePolyline handles both polyline and polygon elements. A polygon
// is closed by repeating its first point.
func parsePolyline(ps *Paths, xf *svgXform, e *svgparser.Element, closed bool) error {
	f, err := parseFloats(strings.Fields(strings.ReplaceAll(e.Attributes["points"], ",", " ")))
	if err != nil {
		return err
	}
	if len(f)%2 != 0 {
		return fmt.Errorf("%s has an odd number of coordinates", e.Name)
	}
	if len(f) == 0 {
		return nil
	}
	p := Path{}
	for i := 0; i < len(f); i += 2 {
		p.V = append(p.V, xf.Apply(Vec2{f[i], f[i+1]}))
	}
	if closed {
		p.V = append(p.V, p.V[0])
	}
	ps.P = append(ps.P, p)
	return nil
}

type xformScannerState int

const (
	xfsName xformScannerState = 1 + iota
	xfsBra
	xfsMaybeComma
	xfsArg
)

func parseFloats(a []string) ([]float64, error) {
	var r []float64
	for _, x := range a {
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, f)
	}
	return r, nil
}

func svgXformTranslate(x, y float64) *svgXform {
	return &svgXform{
		M: [3][3]float64{
			{1, 0, x},
			{0, 1, y},
			{0, 0, 1},
		},
	}
}

func svgXformScale(x, y float64) *svgXform {
	return &svgXform{
		M: [3][3]float64{
			{x, 0, 0},
			{0, y, 0},
			{0, 0, 1},
		},
	}
}

func svgXformMatrix(a, b, c, d, e, f float64) *svgXform {
	return &svgXform{
		M: [3][3]float64{
			{a, c, e},
			{b, d, f},
			{0, 0, 1},
		},
	}
}

func parseSingleXform(name string, args []string) (*svgXform, error) {
	fa, err := parseFloats(args)
	if err != nil {
		return nil, err
	}
	switch name {
	case "translate":
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("translate should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, 0)
		}
		return svgXformTranslate(fa[0], fa[1]), nil
	case "scale":
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("scale should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, fa[0])
		}
		return svgXformScale(fa[0], fa[1]), nil
	case "matrix":
		if len(fa) != 6 {
			return nil, fmt.Errorf("matrix should have six parameters: got %s", args)
		}
		return svgXformMatrix(fa[0], fa[1], fa[2], fa[3], fa[4], fa[5]), nil
	default:
		return nil, fmt.Errorf("unknown transform function %q", name)
	}
}

func parseSVGXForm(x string) (*svgXform, error) {
	var s scanner.Scanner
	xf := svgIdentity
	s.Init(strings.NewReader(x))
	state := xfsName
	fname := ""
	var args []string
	neg := false
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch state {
		case xfsName:
			if tok != scanner.Ident {
				return nil, fmt.Errorf("failed to parse transform: expected transform name, but got %q", s.TokenText())
			}
			fname = s.TokenText()
			state = xfsBra
		case xfsBra:
			if tok != '(' {
				return nil, fmt.Errorf("failed to parse transform: expected (, but got %q", s.TokenText())
			}
			state = xfsArg
		case xfsMaybeComma:
			if tok == ',' {
				state = xfsArg
				continue
			}
			fallthrough
		case xfsArg:
			switch {
			case tok == ')':
				newxform, err := parseSingleXform(fname, args)
				if err != nil {
					return nil, err
				}
				xf = xf.Compose(newxform)
				state = xfsName
				args = nil
			case tok == '-':
				neg = true
			case tok == scanner.Float || tok == scanner.Int:
				t := s.TokenText()
				if neg {
					t = "-" + t
					neg = false
				}
				args = append(args, t)
				state = xfsMaybeComma
			default:
				return nil, fmt.Errorf("unexpected token %q parsing transform %q", s.TokenText(), x)
			}
		}
	}
	if state != xfsName {
		return nil, fmt.Errorf("failed to parse transform: %q", x)
	}
	return xf, nil
}

// pathTokens splits path data into command letters and numbers.
// Numbers may be separated by whitespace, commas, or a sign.
func pathTokens(d string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	prev := rune(0)
	for _, r := range d {
		switch {
		case r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case r == '-' || r == '+':
			if prev != 'e' && prev != 'E' {
				flush()
			}
			cur.WriteRune(r)
		case r == 'e' || r == 'E':
			cur.WriteRune(r)
		case unicode.IsLetter(r):
			flush()
			toks = append(toks, string(r))
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	flush()
	return toks
}

// parsePath understands the M, L and Z commands, absolute (upper
// case) or relative (lower case). Any other command is an error.
func parsePath(ps *Paths, xf *svgXform, e *svgparser.Element) error {
	var (
		cmd      rune
		cur      Vec2 // current point, before the transform
		start    Vec2
		xy       Vec2
		xyp      int
		newStart bool
	)
	for _, t := range pathTokens(e.Attributes["d"]) {
		if r := rune(t[0]); len(t) == 1 && unicode.IsLetter(r) {
			if xyp != 0 {
				return fmt.Errorf("got odd number of components before %s", t)
			}
			switch r {
			case 'M', 'm':
				newStart = true
			case 'L', 'l':
			case 'Z', 'z':
				if len(ps.P) > 0 && len(ps.P[len(ps.P)-1].V) > 0 {
					ps.line(xf.Apply(start))
				}
				cur = start
			default:
				return fmt.Errorf("unsupported path command %q", t)
			}
			cmd = r
			continue
		}
		if cmd == 0 || cmd == 'Z' || cmd == 'z' {
			return fmt.Errorf("path data %q must start with a move", e.Attributes["d"])
		}
		x, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return err
		}
		xy[xyp] = x
		xyp++
		if xyp < 2 {
			continue
		}
		xyp = 0
		if unicode.IsLower(cmd) {
			xy = vec2AddVec2(cur, xy)
		}
		cur = xy
		if newStart {
			ps.P = append(ps.P, Path{V: []Vec2{xf.Apply(cur)}})
			start = cur
			newStart = false
			continue
		}
		ps.line(xf.Apply(cur))
	}
	if xyp != 0 {
		return fmt.Errorf("got stray component in path")
	}
	return nil
}

type svgXform struct {
	M [3][3]float64
}

func (xf *svgXform) Compose(xf2 *svgXform) *svgXform {
	var a svgXform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				a.M[i][k] += xf.M[i][j] * xf2.M[j][k]
			}
		}
	}
	return &a
}

func (xf *svgXform) Apply(v Vec2) Vec2 {
	x := [3]float64{v[0], v[1], 1.0}
	var r [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i] += xf.M[i][j] * x[j]
		}
	}
	return Vec2{r[0] / r[2], r[1] / r[2]}
}

var svgIdentity = &svgXform{
	M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
}

// parsePaths walks the children of e. Element kinds that can't hold
// a path (text, style, metadata and the like) are skipped.
func parsePaths(p *Paths, xform *svgXform, e *svgparser.Element) error {
	for _, c := range e.Children {
		xf := xform
		if t := c.Attributes["transform"]; t != "" {
			cxf, err := parseSVGXForm(t)
			if err != nil {
				return err
			}
			xf = xform.Compose(cxf)
		}
		var err error
		switch c.Name {
		case "g":
			err = parsePaths(p, xf, c)
		case "path":
			err = parsePath(p, xf, c)
		case "line":
			err = parseLine(p, xf, c)
		case "polyline":
			err = parsePolyline(p, xf, c, false)
		case "polygon":
			err = parsePolyline(p, xf, c, true)
		}
		if err != nil {
			return fmt.Errorf("%s element: %w", c.Name, err)
		}
	}
	return nil
}

// FromSVG parses an SVG file, extracting paths.
// This provides only limited SVG parsing support, and
// will fail or produce incorrect results if the SVG file
// uses features that it doesn't understand.
func FromSVG(r io.Reader) (*Paths, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, err
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, err
	}
	bs, err := parseBounds(elt)
	if err != nil {
		return nil, err
	}
	p := &Paths{Bounds: bs}
	return p, parsePaths(p, svgIdentity, elt)
}

const svgHeader = `<svg height="%g" width="%g" viewBox="%g %g %g %g" version="1.1" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`

type svgWriter struct {
	w   *bufio.Writer
	err error
}

func (sw *svgWriter) printf(f string, args ...interface{}) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, f, args...)
}

func (sw *svgWriter) header(b Bounds) {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	sw.printf(svgHeader, h, w, b.Min[0], b.Min[1], w, h)
	sw.printf("\n")
}

func (sw *svgWriter) path(v []Vec2) {
	if len(v) == 0 {
		return
	}
	sw.printf(`<path d="`)
	for i, x := range v {
		if i == 0 {
			sw.printf("M %.2f, %.2f", x[0], x[1])
		} else {
			sw.printf(" %.2f, %.2f", x[0], x[1])
		}
	}
	sw.printf("\"/>\n")
}

func (sw *svgWriter) flush() error {
	sw.printf("</svg>\n")
	if sw.err == nil {
		sw.err = sw.w.Flush()
	}
	return sw.err
}

// SVG writes an SVG file that contains black strokes along the paths.
func (ps *Paths) SVG(w io.Writer) error {
	sw := &svgWriter{w: bufio.NewWriter(w)}
	sw.header(ps.Bounds)
	sw.printf("<g fill=\"none\" stroke=\"black\" stroke-width=\"0.1\">\n")
	for _, p := range ps.P {
		sw.path(p.V)
	}
	sw.printf("</g>\n")
	return sw.flush()
}

// layerStyle is the stroke used for each layer: yellow for the
// original, magenta for the simplified, cyan for the averaged and
// white for the combined path.
var layerStyle = map[Layer]string{
	LayerOriginal:   `stroke="#ffff00" stroke-opacity="0.78" stroke-width="2"`,
	LayerSimplified: `stroke="#ff00ff" stroke-opacity="0.63" stroke-width="5"`,
	LayerAveraged:   `stroke="#00ffff" stroke-opacity="0.63" stroke-width="5"`,
	LayerCombined:   `stroke="#ffffff" stroke-opacity="0.63" stroke-width="5"`,
}

// WriteLayersSVG writes one group per layer, containing that layer of
// every report. Layers that are empty in every report are omitted.
func WriteLayersSVG(w io.Writer, b Bounds, reports []*Report) error {
	sw := &svgWriter{w: bufio.NewWriter(w)}
	sw.header(b)
	for _, l := range AllLayers.Layers() {
		present := false
		for _, r := range reports {
			if len(r.Layer(l)) > 0 {
				present = true
			}
		}
		if !present {
			continue
		}
		sw.printf("<g id=%q fill=\"none\" %s>\n", l.String(), layerStyle[l])
		for _, r := range reports {
			sw.path(r.Layer(l))
		}
		sw.printf("</g>\n")
	}
	return sw.flush()
}
