// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/config"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// Server serves the code index over HTTP.
type Server struct {
	cfg     *config.Config
	index   *icdmap.Index
	logger  *slog.Logger
	app     *fiber.App
	metrics *Metrics
	cache   *queryCache
}

// New assembles a server around an opened index. The index stays owned by
// the caller and is not closed on shutdown.
func New(cfg *config.Config, index *icdmap.Index, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "icdmapd",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
	})

	s := &Server{
		cfg:     cfg,
		index:   index,
		logger:  logger,
		app:     app,
		metrics: NewMetrics(),
	}

	if cfg.Cache.Enabled {
		cache, err := newQueryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.app.Use(recover.New())
	s.app.Use(newRequestIDMiddleware().Middleware())
	s.app.Use(newLoggingMiddleware(s.logger).Middleware())
	if s.cfg.Metrics.Enabled {
		s.app.Use(newMetricsMiddleware(s.metrics).Middleware())
	}

	s.app.Get("/", indexPageHandler)

	s.app.Get(healthPath, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if s.cfg.Metrics.Enabled {
		handler := fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}),
		)
		s.app.Get(metricsPath, func(c *fiber.Ctx) error {
			handler(c.Context())
			return nil
		})
	}

	api := s.app.Group("/api/v1")
	api.Post("/search", newSearchHandler(s.logger, s.index, s.cache, s.metrics, s.cfg.Search.TopK).Handle)
	api.Get("/codes/:code", newLookupHandler(s.logger, s.index).Handle)
	api.Get("/codes/:code/related", newRelatedHandler(s.logger, s.index).Handle)
	api.Get("/status", newStatusHandler(s.logger, s.index, s.cfg).Handle)
}

// Run blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	s.logger.Info("server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and releases the query cache.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cache != nil {
		defer s.cache.close()
	}
	return s.app.ShutdownWithContext(ctx)
}
