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
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/search"
)

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Matches []matchResult `json:"matches"`
	Cached  bool          `json:"cached"`
	TookMs  int64         `json:"took_ms"`
}

type searchHandler struct {
	logger  *slog.Logger
	index   *icdmap.Index
	cache   *queryCache
	metrics *Metrics
	topK    int // result count when the request does not set one
}

func newSearchHandler(
	logger *slog.Logger,
	index *icdmap.Index,
	cache *queryCache,
	metrics *Metrics,
	topK int,
) Handler {
	if topK <= 0 {
		topK = search.DefaultTopK
	}
	return &searchHandler{
		logger:  logger,
		index:   index,
		cache:   cache,
		metrics: metrics,
		topK:    topK,
	}
}

func (h *searchHandler) Handle(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}
	topK := req.TopK
	switch {
	case topK <= 0:
		topK = h.topK
	case topK > search.MaxTopK:
		topK = search.MaxTopK
	}

	start := time.Now()
	if h.cache != nil {
		if matches, ok := h.cache.get(req.Query, topK); ok {
			h.metrics.cacheHits.Inc()
			return c.JSON(h.respond(req.Query, matches, true, start))
		}
		h.metrics.cacheMisses.Inc()
	}

	matches, err := h.index.Search(c.Context(), req.Query, topK)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyQuery):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
		case errors.Is(err, search.ErrIndexEmpty):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no codes indexed"})
		}
		h.logger.Error("search failed", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
	}

	h.metrics.resultCounts.Observe(float64(len(matches)))
	if h.cache != nil {
		h.cache.put(req.Query, topK, matches)
	}
	return c.JSON(h.respond(req.Query, matches, false, start))
}

func (h *searchHandler) respond(query string, matches []*search.Match, cached bool, start time.Time) searchResponse {
	return searchResponse{
		Query:   query,
		Count:   len(matches),
		Matches: toMatchResults(matches),
		Cached:  cached,
		TookMs:  time.Since(start).Milliseconds(),
	}
}
