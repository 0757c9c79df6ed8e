package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/config"
)

type statusResponse struct {
	Status     string     `json:"status"`
	Codes      int        `json:"codes"`
	Source     string     `json:"source,omitempty"`
	Dimensions int        `json:"dimensions,omitempty"`
	BuiltAt    *time.Time `json:"built_at,omitempty"`
	EmbeddedAt *time.Time `json:"embedded_at,omitempty"`
	Semantic   bool       `json:"semantic"`
	Cache      bool       `json:"cache"`
}

type statusHandler struct {
	logger *slog.Logger
	index  *icdmap.Index
	cfg    *config.Config
}

func newStatusHandler(logger *slog.Logger, index *icdmap.Index, cfg *config.Config) Handler {
	return &statusHandler{logger: logger, index: index, cfg: cfg}
}

func (h *statusHandler) Handle(c *fiber.Ctx) error {
	count, err := h.index.Count(c.Context())
	if err != nil {
		h.logger.Error("status count failed", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "status unavailable"})
	}

	resp := statusResponse{
		Status:   "empty",
		Codes:    count,
		Semantic: h.cfg.Semantic.Enabled,
		Cache:    h.cfg.Cache.Enabled,
	}

	info, err := h.index.Info(c.Context())
	if err != nil {
		h.logger.Error("status info failed", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "status unavailable"})
	}
	if info != nil {
		resp.Status = "ready"
		resp.Source = info.Source
		resp.Dimensions = info.Dimensions
		resp.BuiltAt = &info.BuiltAt
		resp.EmbeddedAt = &info.EmbeddedAt
	}
	return c.JSON(resp)
}
