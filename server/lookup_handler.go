package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/storage"
)

type codeResponse struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Billable    bool      `json:"billable"`
	Chapter     int       `json:"chapter"`
	ChapterName string    `json:"chapter_name,omitempty"`
	HasVector   bool      `json:"has_vector"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type lookupHandler struct {
	logger *slog.Logger
	index  *icdmap.Index
}

func newLookupHandler(logger *slog.Logger, index *icdmap.Index) Handler {
	return &lookupHandler{logger: logger, index: index}
}

func (h *lookupHandler) Handle(c *fiber.Ctx) error {
	code := c.Params("code")
	record, err := h.index.Lookup(c.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, icd10.ErrMalformedCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("malformed code %q", code)})
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("code %s not found", icd10.Format(icd10.Normalize(code)))})
		}
		h.logger.Error("lookup failed", "request_id", requestID(c), "code", code, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}

	resp := codeResponse{
		Code:        icd10.Format(record.Code),
		Description: record.Description,
		Billable:    record.Billable,
		Chapter:     record.Chapter,
		HasVector:   len(record.Vector) > 0,
		UpdatedAt:   record.UpdatedAt,
	}
	if chapter, err := icd10.ChapterByNumber(record.Chapter); err == nil {
		resp.ChapterName = chapter.Title
	}
	return c.JSON(resp)
}
