package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/icdmap/search"
)

// Handler is the contract every route handler implements.
type Handler interface {
	Handle(c *fiber.Ctx) error
}

// matchResult is the wire form of one ranked suggestion.
type matchResult struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	Billable      bool    `json:"billable"`
	Chapter       int     `json:"chapter"`
	Score         float64 `json:"score"`
	LexicalScore  float64 `json:"lexical_score"`
	Coherence     float64 `json:"coherence"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	Justification string  `json:"justification"`
}

func toMatchResults(matches []*search.Match) []matchResult {
	results := make([]matchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, matchResult{
			Code:          m.Code,
			Description:   m.Description,
			Billable:      m.Billable,
			Chapter:       m.Chapter,
			Score:         m.Score,
			LexicalScore:  m.LexicalScore,
			Coherence:     m.Coherence,
			SemanticScore: m.SemanticScore,
			Justification: m.Justification,
		})
	}
	return results
}
