// Package server exposes path generalization over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/paulhankin/pathgen/internal/config"
	"github.com/paulhankin/pathgen/internal/metrics"
	"github.com/paulhankin/pathgen/paths"
	"github.com/paulhankin/pathgen/sketch"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Server is the pathgen HTTP service.
type Server struct {
	app      *fiber.App
	cfg      config.ServerConfig
	defaults *paths.Options
	sketches *sketch.Registry
	log      *zap.Logger
	started  time.Time
}

// New returns a server whose requests fall back to defaults for any
// generalization setting they leave out.
func New(cfg config.ServerConfig, defaults *paths.Options, log *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		defaults: defaults,
		sketches: sketch.NewRegistry(),
		log:      log,
		started:  time.Now(),
	}
	s.app = fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		AppName:               "pathgen",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.routes()
	return s
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(metrics.Middleware())
	s.app.Get("/metrics", metrics.Handler())
	s.app.Use(requestid.New())
	s.app.Use(s.accessLog())

	v1 := s.app.Group("/v1")
	v1.Get("/health", s.handleHealth)
	v1.Post("/generalize", s.handleGeneralize)
	v1.Post("/simplify", s.handleSimplify)
	v1.Post("/smooth", s.handleSmooth)
	v1.Get("/sketches", s.handleListSketches)
	v1.Post("/sketches/:id/points", s.handleAppendSketch)
	v1.Get("/sketches/:id", s.handleGetSketch)
	v1.Delete("/sketches/:id", s.handleDeleteSketch)
}

func (s *Server) accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		level := zapcore.InfoLevel
		switch {
		case err != nil || status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		reqID, _ := c.Locals("requestid").(string)
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes_out", len(c.Response().Body())),
			zap.String("request_id", reqID),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if ce := s.log.Check(level, "request"); ce != nil {
			ce.Write(fields...)
		}
		return err
	}
}

// Run serves until ctx is cancelled and then shuts down, giving
// in-flight requests up to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.cfg.Addr))
		errc <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.log.Info("shutting down, draining connections")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(sctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.log.Info("server stopped")
	return nil
}
