package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestIDMiddleware tags every request with an id for log correlation,
// honoring one supplied by the caller.
type requestIDMiddleware struct{}

func newRequestIDMiddleware() *requestIDMiddleware {
	return &requestIDMiddleware{}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

// requestID returns the id assigned by the request-id middleware, or an
// empty string when the middleware did not run.
func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

type loggingMiddleware struct {
	logger *slog.Logger
}

func newLoggingMiddleware(logger *slog.Logger) *loggingMiddleware {
	return &loggingMiddleware{logger: logger}
}

func (m *loggingMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger := m.logger.With(
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		// Probes are frequent; keep them out of the info log.
		if c.Path() == healthPath || c.Path() == metricsPath {
			logger.Debug("request handled")
		} else {
			logger.Info("request handled")
		}
		return err
	}
}

type metricsMiddleware struct {
	metrics *Metrics
}

func newMetricsMiddleware(metrics *Metrics) *metricsMiddleware {
	return &metricsMiddleware{metrics: metrics}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		// The route pattern, not the raw path, keeps label cardinality low.
		route := c.Route().Path
		m.metrics.requests.WithLabelValues(route, c.Method(), statusClass(c.Response().StatusCode())).Inc()
		m.metrics.latency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
		return err
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}
