// Package metrics holds the Prometheus metrics exported by pathgen serve.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulhankin/pathgen/paths"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathgen",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathgen",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	// Generalizations counts generalized paths by the order of the
	// combined layer.
	Generalizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathgen",
		Subsystem: "paths",
		Name:      "generalizations_total",
		Help:      "Total paths generalized",
	}, []string{"order"})

	// LayerPoints is the number of points in each computed layer.
	LayerPoints = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathgen",
		Subsystem: "paths",
		Name:      "layer_points",
		Help:      "Number of points in a generalized layer",
		Buckets:   prometheus.ExponentialBuckets(2, 4, 8),
	}, []string{"layer"})

	InvalidParameters = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathgen",
		Subsystem: "paths",
		Name:      "invalid_parameters_total",
		Help:      "Total requests rejected for a bad tolerance, window, order or layer",
	})

	ActiveSketches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pathgen",
		Subsystem: "sketch",
		Name:      "active",
		Help:      "Current number of sketch buffers",
	})
)

// ObserveReport records the size of every layer that r holds.
func ObserveReport(opts *paths.Options, r *paths.Report) {
	Generalizations.WithLabelValues(opts.Order.String()).Inc()
	for _, l := range opts.Layers.Layers() {
		LayerPoints.WithLabelValues(l.String()).Observe(float64(len(r.Layer(l))))
	}
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus registry.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
