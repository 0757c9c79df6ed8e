package match

import (
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/icdmap/core"
	"github.com/xrash/smetrics"
)

const (
	// Candidate sets smaller than this fall back to a full scan so sparse
	// posting lists cannot hide a close match.
	candidateFloor = 32

	// Minimum Jaro-Winkler similarity for a query token to stand in for
	// an index token it does not exactly equal.
	fuzzyTokenThreshold = 0.9
)

// Candidate is a lexically scored document.
type Candidate struct {
	Id          core.ID
	Code        string
	Description string
	Score       float64
}

type document struct {
	id          core.ID
	code        string
	description string
	sortKey     string
}

// Index is an in-memory lexical index over code descriptions.
// Add all documents up front; reads are safe from concurrent goroutines.
type Index struct {
	mu      sync.RWMutex
	docs    map[core.ID]*document
	byToken map[string][]core.ID
	vocab   Vocabulary
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithVocabulary sets the synonym vocabulary used for query expansion.
// Default is the built-in clinical vocabulary.
func WithVocabulary(vocab Vocabulary) IndexOption {
	return func(ix *Index) {
		ix.vocab = vocab
	}
}

// NewIndex creates an empty index.
func NewIndex(opts ...IndexOption) *Index {
	ix := &Index{
		docs:    make(map[core.ID]*document),
		byToken: make(map[string][]core.ID),
		vocab:   DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Add indexes a description under its record ID. Re-adding an ID replaces
// its description but leaves stale posting entries; Add is meant for the
// one-shot load when an index is built from storage.
func (ix *Index) Add(id core.ID, code, description string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := &document{
		id:          id,
		code:        code,
		description: description,
		sortKey:     sortKey(description),
	}
	ix.docs[id] = doc

	seen := make(map[string]bool)
	for _, token := range tokenizeAndFilter(description) {
		if seen[token] {
			continue
		}
		seen[token] = true
		ix.byToken[token] = append(ix.byToken[token], id)
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Candidates returns the IDs of documents sharing at least one token with
// the expanded query. Tokens with no exact posting are matched fuzzily
// against the token vocabulary. Falls back to every document when the
// pruned set is too small to trust.
func (ix *Index) Candidates(query string) []core.ID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	tokens := ix.vocab.Expand(tokenizeAndFilter(query))

	set := make(map[core.ID]bool)
	for _, token := range tokens {
		ids, ok := ix.byToken[token]
		if !ok {
			ids = ix.fuzzyPostings(token)
		}
		for _, id := range ids {
			set[id] = true
		}
	}

	if len(set) < candidateFloor {
		return ix.allIDs()
	}

	ids := make([]core.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Best scores the candidate documents against the query by token-sort
// similarity and returns the top limit, highest first. Shorthand queries
// are also scored through their vocabulary rewrites, keeping the best.
// Equal scores order by code ascending.
func (ix *Index) Best(query string, limit int) []Candidate {
	if limit <= 0 {
		return nil
	}

	candidateIDs := ix.Candidates(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, 1)
	for _, variant := range ix.vocab.Variants(query) {
		keys = append(keys, sortKey(variant))
	}

	results := make([]Candidate, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		doc, ok := ix.docs[id]
		if !ok {
			continue
		}
		var score float64
		for _, key := range keys {
			score = max(score, Ratio(key, doc.sortKey))
		}
		results = append(results, Candidate{
			Id:          doc.id,
			Code:        doc.code,
			Description: doc.description,
			Score:       score,
		})
	}

	slices.SortFunc(results, func(a, b Candidate) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.Code, b.Code)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// BestCodes scores every document's code against a code-shaped query by
// Jaro-Winkler similarity and returns the top limit, highest first. The
// query must already be normalized (uppercase, no dot). Used when the
// query is a code or code fragment rather than diagnosis text.
func (ix *Index) BestCodes(code string, limit int) []Candidate {
	if limit <= 0 || code == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]Candidate, 0, len(ix.docs))
	for _, doc := range ix.docs {
		results = append(results, Candidate{
			Id:          doc.id,
			Code:        doc.code,
			Description: doc.description,
			Score:       CodeSimilarity(code, doc.code),
		})
	}

	slices.SortFunc(results, func(a, b Candidate) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.Code, b.Code)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// fuzzyPostings collects postings for index tokens close to token.
// Caller must hold at least a read lock.
func (ix *Index) fuzzyPostings(token string) []core.ID {
	var ids []core.ID
	for indexed, postings := range ix.byToken {
		// Cheap guard: fuzzy matches share a first letter
		if indexed[0] != token[0] {
			continue
		}
		if smetrics.JaroWinkler(token, indexed, jwBoostThreshold, jwPrefixSize) >= fuzzyTokenThreshold {
			ids = append(ids, postings...)
		}
	}
	return ids
}

// allIDs returns every document ID. Caller must hold at least a read lock.
func (ix *Index) allIDs() []core.ID {
	ids := make([]core.ID, 0, len(ix.docs))
	for id := range ix.docs {
		ids = append(ids, id)
	}
	return ids
}
