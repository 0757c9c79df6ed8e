package search

import (
	"iter"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/match"
)

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string)
	CodeLookup(code string)
	AfterLexicalSearch(candidates []match.Candidate)
	AfterRecordRetrieval(records []*core.CodeRecord)
	AfterCoherenceRerank(coherence map[core.ID]float64)
	AfterSemanticRerank(ids iter.Seq[core.ID])
	LexicalAndSemanticHit(record *core.CodeRecord)
	LexicalHit(record *core.CodeRecord)
	SemanticHit(record *core.CodeRecord)
	Finish(matches []*Match)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) CodeLookup(_ string)                        {}
func (n *noopMonitor) AfterLexicalSearch(_ []match.Candidate)     {}
func (n *noopMonitor) AfterRecordRetrieval(_ []*core.CodeRecord)  {}
func (n *noopMonitor) AfterCoherenceRerank(_ map[core.ID]float64) {}
func (n *noopMonitor) AfterSemanticRerank(_ iter.Seq[core.ID])    {}
func (n *noopMonitor) LexicalAndSemanticHit(_ *core.CodeRecord)   {}
func (n *noopMonitor) LexicalHit(_ *core.CodeRecord)              {}
func (n *noopMonitor) SemanticHit(_ *core.CodeRecord)             {}
func (n *noopMonitor) Finish(_ []*Match)                          {}
