package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/poiesic/icdmap/ai"
	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/match"
	"github.com/poiesic/icdmap/storage"
)

const (
	// DefaultTopK is the number of suggestions returned when the caller
	// does not ask for a specific count.
	DefaultTopK = 3

	// DefaultRelatedLimit is the number of neighbors Related returns when
	// the caller does not ask for a specific count.
	DefaultRelatedLimit = 10

	// MaxTopK caps the number of results per query.
	MaxTopK = 25

	// defaultCandidateLimit is how many lexical candidates feed the
	// rerank stages.
	defaultCandidateLimit = 50

	// defaultCoherenceWeight scales the hierarchy coherence boost.
	defaultCoherenceWeight = 0.25

	// coherenceLeaders is how many top lexical vectors form the centroid
	// that coherence is measured against.
	coherenceLeaders = 5

	// lexicalFloor is the minimum token-sort ratio for a candidate to
	// count as a lexical hit.
	lexicalFloor = 0.1

	// semanticThreshold is the minimum embedding similarity for a
	// candidate to count as a semantic hit - same cutoff at which a
	// match stops being meaningful for short clinical text.
	semanticThreshold = 0.60

	// bothStagesBoost multiplies candidates confirmed by both the
	// lexical and semantic stages.
	bothStagesBoost = 1.5

	// verbatimBoost is added when a description contains every query word.
	verbatimBoost = 0.3
)

// Match is one ranked code suggestion for a query.
type Match struct {
	Code          string // Display form, with the dot ("E11.52")
	Description   string
	Billable      bool
	Chapter       int
	Score         float64 // Fused relevance score; may exceed 1 after boosts
	LexicalScore  float64 // Token-sort ratio component in [0,1]
	Coherence     float64 // Hierarchy agreement component in [0,1]
	SemanticScore float64 // Embedding similarity component in [0,1]
	Justification string
}

// Searcher suggests ICD-10-CM codes for free text diagnoses by fusing
// lexical similarity, hierarchy coherence, and optional embedding similarity.
type Searcher struct {
	codes           storage.CodeRepository
	index           *match.Index
	embedder        ai.Embedder
	logger          *slog.Logger
	candidateLimit  int
	coherenceWeight float64
	minScore        float64
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEmbedder enables the semantic rerank stage using the given embedder.
// Without it, search runs on the lexical and coherence stages alone.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		s.embedder = embedder
		return nil
	}
}

// WithCandidateLimit sets how many lexical candidates feed the rerank
// stages. Default is 50.
func WithCandidateLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 {
			return fmt.Errorf("candidate limit must be positive, got %d", limit)
		}
		s.candidateLimit = limit
		return nil
	}
}

// WithCoherenceWeight sets how strongly hierarchy agreement boosts lexical
// scores. Zero disables the coherence stage. Default is 0.25.
func WithCoherenceWeight(weight float64) Option {
	return func(s *Searcher) error {
		if weight < 0 {
			return fmt.Errorf("coherence weight cannot be negative, got %v", weight)
		}
		s.coherenceWeight = weight
		return nil
	}
}

// WithMinScore drops matches whose fused score falls below the floor.
// Default is 0, keeping everything the stages admit.
func WithMinScore(score float64) Option {
	return func(s *Searcher) error {
		if score < 0 {
			return fmt.Errorf("minimum score cannot be negative, got %v", score)
		}
		s.minScore = score
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(codes storage.CodeRepository, index *match.Index, opts ...Option) (*Searcher, error) {
	if codes == nil {
		return nil, ErrCodeRepositoryRequired
	}
	if index == nil {
		return nil, ErrMatchIndexRequired
	}

	s := &Searcher{
		codes:           codes,
		index:           index,
		logger:          slog.Default(),
		candidateLimit:  defaultCandidateLimit,
		coherenceWeight: defaultCoherenceWeight,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search suggests codes for a free text diagnosis.
// Returns up to topK matches ranked by relevance; topK <= 0 means
// DefaultTopK, and values above MaxTopK are clamped.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]*Match, error) {
	return s.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor suggests codes for a free text diagnosis with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor Monitor) ([]*Match, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if s.index.Len() == 0 {
		return nil, ErrIndexEmpty
	}
	switch {
	case topK <= 0:
		topK = DefaultTopK
	case topK > MaxTopK:
		topK = MaxTopK
	}

	// Code-shaped queries resolve by lookup, not fuzzy matching
	if icd10.LooksLikeCode(query) {
		return s.searchByCode(ctx, query, topK, monitor)
	}

	// 1. Lexical candidates by token-sort similarity
	candidates := s.index.Best(query, s.candidateLimit)
	monitor.AfterLexicalSearch(candidates)

	// 2. Retrieve the backing records for vectors and display fields
	ids := make([]core.ID, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.Id)
	}
	records, err := s.codes.GetCodeRecords(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving code records", "recordCount", len(ids), "err", err)
		return nil, err
	}
	byId := make(map[core.ID]*core.CodeRecord, len(records))
	for _, record := range records {
		if record != nil {
			byId[record.Id] = record
		}
	}
	monitor.AfterRecordRetrieval(records)

	// 3. Hierarchy coherence against the lexical leaders' centroid
	coherence := s.coherenceScores(candidates, byId)
	monitor.AfterCoherenceRerank(coherence)

	// 4. Optional semantic stage: embedding similarity between the query
	// and each candidate description
	semantic := s.semanticScores(ctx, query, candidates)
	monitor.AfterSemanticRerank(maps.Keys(semantic))

	// 5. Fuse the stages and score each candidate
	results := make([]*Match, 0, len(candidates))
	for _, candidate := range candidates {
		record, ok := byId[candidate.Id]
		if !ok {
			continue
		}

		lexical := candidate.Score
		coh := coherence[candidate.Id]
		base := lexical * (1 + s.coherenceWeight*coh)

		sem, inSemantic := semantic[candidate.Id]
		inLexical := lexical >= lexicalFloor

		var score float64
		switch {
		case inLexical && inSemantic:
			// Confirmed by both stages: boost, weighted by embedding similarity
			score = bothStagesBoost * sem * base
			monitor.LexicalAndSemanticHit(record)
		case inSemantic:
			// Semantic only: admit at plain embedding similarity
			score = sem
			monitor.SemanticHit(record)
		case inLexical:
			score = base
			monitor.LexicalHit(record)
		default:
			continue
		}

		// Apply verbatim match boost
		verbatim := match.ContainsAllWords(record.Description, query)
		if verbatim {
			score += verbatimBoost
		}

		if score < s.minScore {
			continue
		}

		m := &Match{
			Code:          icd10.Format(record.Code),
			Description:   record.Description,
			Billable:      record.Billable,
			Chapter:       record.Chapter,
			Score:         score,
			LexicalScore:  lexical,
			Coherence:     coh,
			SemanticScore: sem,
		}
		m.Justification = justify(m, inLexical, inSemantic, verbatim)
		results = append(results, m)
	}

	rank(results)
	if len(results) > topK {
		results = results[:topK]
	}
	monitor.Finish(results)

	return results, nil
}

// Related returns the classification neighbors of a code: the records whose
// hierarchy embeddings lie closest to its own, anchor excluded. Limit <= 0
// means DefaultRelatedLimit, and values above MaxTopK are clamped.
func (s *Searcher) Related(ctx context.Context, code string, limit int) ([]*Match, error) {
	normalized, err := icd10.Validate(code)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultRelatedLimit
	case limit > MaxTopK:
		limit = MaxTopK
	}

	anchor, err := s.codes.GetCodeRecordByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(anchor.Vector) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVector, icd10.Format(normalized))
	}

	// One extra because the anchor scores highest against itself
	similar, err := s.codes.FindSimilar(ctx, anchor.Vector, 0, limit+1)
	if err != nil {
		s.logger.Error("error querying for similar records", "code", normalized, "err", err)
		return nil, err
	}

	results := make([]*Match, 0, limit)
	for _, hit := range similar {
		if hit.Record.Id == anchor.Id {
			continue
		}
		results = append(results, &Match{
			Code:        icd10.Format(hit.Record.Code),
			Description: hit.Record.Description,
			Billable:    hit.Record.Billable,
			Chapter:     hit.Record.Chapter,
			Score:       float64(hit.Score),
			Justification: fmt.Sprintf("Classification neighbor of %s (similarity %.2f)",
				icd10.Format(normalized), hit.Score),
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// searchByCode resolves a code-shaped query by direct lookup, falling back
// to the closest stored codes when the exact code is not indexed.
func (s *Searcher) searchByCode(ctx context.Context, query string, topK int, monitor Monitor) ([]*Match, error) {
	code := icd10.Normalize(query)
	monitor.CodeLookup(code)

	record, err := s.codes.GetCodeRecordByCode(ctx, code)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("error looking up code", "code", code, "err", err)
		return nil, err
	}
	if record != nil {
		results := []*Match{{
			Code:          icd10.Format(record.Code),
			Description:   record.Description,
			Billable:      record.Billable,
			Chapter:       record.Chapter,
			Score:         1.0,
			LexicalScore:  1.0,
			Justification: fmt.Sprintf("Exact match for code %s", icd10.Format(code)),
		}}
		monitor.Finish(results)
		return results, nil
	}

	// Unknown code: offer the closest stored codes instead
	candidates := s.index.BestCodes(code, topK)
	ids := make([]core.ID, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.Id)
	}
	records, err := s.codes.GetCodeRecords(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving code records", "recordCount", len(ids), "err", err)
		return nil, err
	}
	byId := make(map[core.ID]*core.CodeRecord, len(records))
	for _, rec := range records {
		if rec != nil {
			byId[rec.Id] = rec
		}
	}

	results := make([]*Match, 0, len(candidates))
	for _, candidate := range candidates {
		rec, ok := byId[candidate.Id]
		if !ok {
			continue
		}
		results = append(results, &Match{
			Code:         icd10.Format(rec.Code),
			Description:  rec.Description,
			Billable:     rec.Billable,
			Chapter:      rec.Chapter,
			Score:        candidate.Score,
			LexicalScore: candidate.Score,
			Justification: fmt.Sprintf("Code similar to %s (%.0f%% similarity)",
				icd10.Format(code), candidate.Score*100),
		})
	}
	monitor.Finish(results)
	return results, nil
}

// coherenceScores measures how much each candidate's hierarchy embedding
// agrees with the centroid of the lexical leaders. Candidates without
// vectors contribute nothing and score zero.
func (s *Searcher) coherenceScores(candidates []match.Candidate, byId map[core.ID]*core.CodeRecord) map[core.ID]float64 {
	scores := make(map[core.ID]float64)
	if s.coherenceWeight == 0 {
		return scores
	}

	// Candidates arrive ranked, so the first vectors are the leaders
	leaders := make([][]float32, 0, coherenceLeaders)
	for _, candidate := range candidates {
		if candidate.Score < lexicalFloor {
			break
		}
		record := byId[candidate.Id]
		if record == nil || len(record.Vector) == 0 {
			continue
		}
		leaders = append(leaders, record.Vector)
		if len(leaders) == coherenceLeaders {
			break
		}
	}
	if len(leaders) == 0 {
		return scores
	}

	centroid := embedding.Centroid(leaders)
	for _, candidate := range candidates {
		record := byId[candidate.Id]
		if record == nil || len(record.Vector) == 0 {
			continue
		}
		if cos := float64(embedding.CosineSimilarity(record.Vector, centroid)); cos > 0 {
			scores[candidate.Id] = cos
		}
	}
	return scores
}

// semanticScores embeds the query and the candidate descriptions and keeps
// the similarity of candidates clearing the semantic threshold. A failing
// embedder degrades search to the lexical stages rather than failing the
// query.
func (s *Searcher) semanticScores(ctx context.Context, query string, candidates []match.Candidate) map[core.ID]float64 {
	scores := make(map[core.ID]float64)
	if s.embedder == nil || len(candidates) == 0 {
		return scores
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Warn("embedding query failed, continuing without semantic stage", "err", err)
		return scores
	}

	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		texts[i] = candidate.Description
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		s.logger.Warn("embedding descriptions failed, continuing without semantic stage", "err", err)
		return scores
	}
	if len(vectors) != len(candidates) {
		s.logger.Warn("embedder returned wrong vector count, continuing without semantic stage",
			"want", len(candidates), "got", len(vectors))
		return scores
	}

	for i, candidate := range candidates {
		if sim := float64(embedding.CosineSimilarity(queryVector, vectors[i])); sim >= semanticThreshold {
			scores[candidate.Id] = sim
		}
	}
	return scores
}

// justify renders the human readable explanation for a match.
func justify(m *Match, inLexical, inSemantic, verbatim bool) string {
	var parts []string
	if inLexical {
		parts = append(parts, fmt.Sprintf("Matched '%s' (%.1f%% token-sort similarity)",
			m.Description, m.LexicalScore*100))
	} else {
		parts = append(parts, fmt.Sprintf("Embedding similarity %.2f despite weak lexical overlap",
			m.SemanticScore))
	}
	if m.Coherence > 0 {
		parts = append(parts, fmt.Sprintf("classification neighbors agree (coherence %.2f)", m.Coherence))
	}
	if inLexical && inSemantic {
		parts = append(parts, fmt.Sprintf("embedding similarity %.2f", m.SemanticScore))
	}
	if verbatim {
		parts = append(parts, "contains every query word")
	}
	return strings.Join(parts, "; ")
}

// rank orders matches by descending score, ties broken by code ascending
// so equal scores list in code order.
func rank(results []*Match) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Code < results[j].Code
	})
}
