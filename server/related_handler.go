package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/search"
	"github.com/poiesic/icdmap/storage"
)

type relatedResponse struct {
	Code    string        `json:"code"`
	Count   int           `json:"count"`
	Matches []matchResult `json:"matches"`
}

type relatedHandler struct {
	logger *slog.Logger
	index  *icdmap.Index
}

func newRelatedHandler(logger *slog.Logger, index *icdmap.Index) Handler {
	return &relatedHandler{logger: logger, index: index}
}

func (h *relatedHandler) Handle(c *fiber.Ctx) error {
	code := c.Params("code")
	limit := c.QueryInt("limit", search.DefaultRelatedLimit)

	matches, err := h.index.Related(c.Context(), code, limit)
	if err != nil {
		switch {
		case errors.Is(err, icd10.ErrMalformedCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("malformed code %q", code)})
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("code %s not found", icd10.Format(icd10.Normalize(code)))})
		case errors.Is(err, search.ErrNoVector):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "code has no vector; rebuild the index"})
		}
		h.logger.Error("related lookup failed", "request_id", requestID(c), "code", code, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "related lookup failed"})
	}

	return c.JSON(relatedResponse{
		Code:    icd10.Format(icd10.Normalize(code)),
		Count:   len(matches),
		Matches: toMatchResults(matches),
	})
}
