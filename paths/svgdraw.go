package paths

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rustyoz/svg"
)

// FromSVGDrawing parses an SVG file using its drawing instructions
// rather than its element tree, which copes with a wider range of
// path commands than FromSVG. Curves are replaced by the straight
// segment to their end point; circles are ignored.
func FromSVGDrawing(r io.Reader) (*Paths, error) {
	s, err := svg.ParseSvgFromReader(r, "", 1.0)
	if err != nil {
		return nil, err
	}
	ps := &Paths{}
	if w, h, ok := svgSize(s.Width, s.Height); ok {
		ps.Bounds = Bounds{Max: Vec2{w, h}}
	}

	dis, errs := s.ParseDrawingInstructions()
	if err := ps.draw(dis, errs); err != nil {
		return nil, err
	}
	if ps.Bounds == (Bounds{}) {
		ps.TightenBounds()
	}
	return ps, nil
}

// draw appends the instructions from dis to ps until dis is closed.
// A closed errs is ignored from then on.
func (ps *Paths) draw(dis <-chan *svg.DrawingInstruction, errs <-chan error) error {
	var start Vec2
	for {
		select {
		case di, ok := <-dis:
			if !ok {
				return nil
			}
			switch di.Kind {
			case svg.MoveInstruction:
				start = Vec2(*di.M)
				ps.P = append(ps.P, Path{V: []Vec2{start}})
			case svg.LineInstruction:
				if err := ps.drawTo(Vec2(*di.M)); err != nil {
					return err
				}
			case svg.CurveInstruction:
				if di.CurvePoints == nil || di.CurvePoints.T == nil {
					continue
				}
				if err := ps.drawTo(Vec2(*di.CurvePoints.T)); err != nil {
					return err
				}
			case svg.CloseInstruction:
				if err := ps.drawTo(start); err != nil {
					return err
				}
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return err
			}
		}
	}
}

func (ps *Paths) drawTo(v Vec2) error {
	if len(ps.P) == 0 {
		return fmt.Errorf("svg drawing starts without a move")
	}
	ps.line(v)
	return nil
}

func svgSize(w, h string) (float64, float64, bool) {
	fw, err := strconv.ParseFloat(strings.TrimSuffix(w, "px"), 64)
	if err != nil {
		return 0, 0, false
	}
	fh, err := strconv.ParseFloat(strings.TrimSuffix(h, "px"), 64)
	if err != nil {
		return 0, 0, false
	}
	return fw, fh, true
}
