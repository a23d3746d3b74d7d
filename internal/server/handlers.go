package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/paulhankin/pathgen/internal/metrics"
	"github.com/paulhankin/pathgen/paths"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// params are the generalization settings a request may override.
// Missing fields take the server's defaults.
type params struct {
	Tolerance   *float64 `json:"tolerance"`
	Window      *int     `json:"window"`
	HighQuality *bool    `json:"high_quality"`
	Order       string   `json:"order"`
	Layers      []string `json:"layers"`
}

type pointsRequest struct {
	params
	Points []paths.Vec2 `json:"points"`
}

type pointsResponse struct {
	Points []paths.Vec2 `json:"points"`
	Count  int          `json:"count"`
}

type generalizeResponse struct {
	Order  string                  `json:"order"`
	Layers map[string][]paths.Vec2 `json:"layers"`
	Counts paths.LayerCounts       `json:"counts"`
}

type sketchResponse struct {
	ID     string `json:"id"`
	Length int    `json:"length"`
}

func (s *Server) options(p *params) (*paths.Options, error) {
	o := *s.defaults
	if p.Tolerance != nil {
		o.Tolerance = *p.Tolerance
	}
	if p.Window != nil {
		o.Window = *p.Window
	}
	if p.HighQuality != nil {
		o.HighQuality = *p.HighQuality
	}
	if p.Order != "" {
		order, err := paths.ParseOrder(p.Order)
		if err != nil {
			return nil, err
		}
		o.Order = order
	}
	if len(p.Layers) > 0 {
		layers, err := paths.ParseLayers(p.Layers...)
		if err != nil {
			return nil, err
		}
		o.Layers = layers
	}
	return &o, o.Validate()
}

// queryParams reads params from the query string, where layers are
// comma separated.
func queryParams(c *fiber.Ctx) (*params, error) {
	p := &params{Order: c.Query("order")}
	if v := c.Query("tolerance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(paths.ErrInvalidParameter, "tolerance %q", v)
		}
		p.Tolerance = &f
	}
	if v := c.Query("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(paths.ErrInvalidParameter, "window %q", v)
		}
		p.Window = &n
	}
	if v := c.Query("high_quality"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(paths.ErrInvalidParameter, "high_quality %q", v)
		}
		p.HighQuality = &b
	}
	if v := c.Query("layers"); v != "" {
		p.Layers = strings.Split(v, ",")
	}
	return p, nil
}

func (s *Server) respondReport(c *fiber.Ctx, opts *paths.Options, r *paths.Report) error {
	metrics.ObserveReport(opts, r)
	resp := generalizeResponse{
		Order:  opts.Order.String(),
		Layers: map[string][]paths.Vec2{},
		Counts: r.Counts(),
	}
	for _, l := range opts.Layers.Layers() {
		resp.Layers[l.String()] = r.Layer(l)
	}
	return c.JSON(resp)
}

func (s *Server) parsePoints(c *fiber.Ctx) (*pointsRequest, error) {
	var req pointsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) handleGeneralize(c *fiber.Ctx) error {
	req, err := s.parsePoints(c)
	if err != nil {
		return errBadRequest(c, "invalid request body: "+err.Error())
	}
	opts, err := s.options(&req.params)
	if err != nil {
		return errGeneralize(c, err)
	}
	start := time.Now()
	r, err := paths.Generalize(req.Points, opts)
	if err != nil {
		return errGeneralize(c, err)
	}
	s.log.Debug("generalized path",
		zap.Int("points", len(req.Points)),
		zap.Stringer("layers", opts.Layers),
		zap.Duration("elapsed", time.Since(start)))
	return s.respondReport(c, opts, r)
}

func (s *Server) handleSimplify(c *fiber.Ctx) error {
	req, err := s.parsePoints(c)
	if err != nil {
		return errBadRequest(c, "invalid request body: "+err.Error())
	}
	opts, err := s.options(&req.params)
	if err != nil {
		return errGeneralize(c, err)
	}
	v, err := paths.Simplify(req.Points, opts.Tolerance, opts.HighQuality)
	if err != nil {
		return errGeneralize(c, err)
	}
	return c.JSON(pointsResponse{Points: v, Count: len(v)})
}

func (s *Server) handleSmooth(c *fiber.Ctx) error {
	req, err := s.parsePoints(c)
	if err != nil {
		return errBadRequest(c, "invalid request body: "+err.Error())
	}
	opts, err := s.options(&req.params)
	if err != nil {
		return errGeneralize(c, err)
	}
	v, err := paths.Smooth(req.Points, opts.Window)
	if err != nil {
		return errGeneralize(c, err)
	}
	return c.JSON(pointsResponse{Points: v, Count: len(v)})
}

// sketchID copies the id route parameter, which otherwise aliases a
// request buffer that fiber reuses.
func sketchID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func (s *Server) handleListSketches(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ids": s.sketches.IDs()})
}

func (s *Server) handleAppendSketch(c *fiber.Ctx) error {
	id := sketchID(c)
	req, err := s.parsePoints(c)
	if err != nil {
		return errBadRequest(c, "invalid request body: "+err.Error())
	}
	n := s.sketches.Get(id).Append(req.Points...)
	metrics.ActiveSketches.Set(float64(len(s.sketches.IDs())))
	return c.JSON(sketchResponse{ID: id, Length: n})
}

func (s *Server) handleGetSketch(c *fiber.Ctx) error {
	id := sketchID(c)
	b, ok := s.sketches.Lookup(id)
	if !ok {
		return errNotFound(c, "no sketch "+strconv.Quote(id))
	}
	p, err := queryParams(c)
	if err != nil {
		return errGeneralize(c, err)
	}
	opts, err := s.options(p)
	if err != nil {
		return errGeneralize(c, err)
	}
	r, err := b.Generalize(opts)
	if err != nil {
		return errGeneralize(c, err)
	}
	return s.respondReport(c, opts, r)
}

func (s *Server) handleDeleteSketch(c *fiber.Ctx) error {
	id := sketchID(c)
	if !s.sketches.Delete(id) {
		return errNotFound(c, "no sketch "+strconv.Quote(id))
	}
	metrics.ActiveSketches.Set(float64(len(s.sketches.IDs())))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"uptime": time.Since(s.started).String(),
	})
}
