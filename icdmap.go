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


package icdmap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/icdmap/ai"
	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/indexing"
	"github.com/poiesic/icdmap/match"
	"github.com/poiesic/icdmap/search"
	"github.com/poiesic/icdmap/storage"
	"github.com/poiesic/icdmap/storage/badger"
)

// Index is the embeddable facade over a code database. It wires the badger
// backend, the repositories, the lexical match index and the searcher, and
// exposes the operations the CLI and daemon are built on.
type Index struct {
	backend     *badger.Backend
	codes       storage.CodeRepository
	meta        storage.MetaRepository
	checkpoints storage.CheckpointRepository
	logger      *slog.Logger

	matchOpts  []match.IndexOption
	searchOpts []search.Option

	mu       sync.RWMutex
	searcher *search.Searcher
}

// Option configures an Index.
type Option func(*indexOptions)

type indexOptions struct {
	vocabulary    *match.Vocabulary
	embedder      ai.Embedder
	searchOptions []search.Option
	logger        *slog.Logger
}

// WithVocabulary replaces the builtin synonym vocabulary used for query
// expansion.
func WithVocabulary(vocab match.Vocabulary) Option {
	return func(o *indexOptions) {
		o.vocabulary = &vocab
	}
}

// WithEmbedder enables the searcher's semantic rerank stage.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *indexOptions) {
		o.embedder = embedder
	}
}

// WithSearchOptions forwards options to the underlying searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *indexOptions) {
		o.searchOptions = append(o.searchOptions, opts...)
	}
}

// WithLogger sets the logger for the index and its searcher.
func WithLogger(logger *slog.Logger) Option {
	return func(o *indexOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens the code database at filePath, creating it if needed, and loads
// the match index from the stored records.
func Open(filePath string, opts ...Option) (*Index, error) {
	return open(filePath, false, opts...)
}

// OpenMemory opens an ephemeral in-memory index. Useful for tests and
// short-lived tooling.
func OpenMemory(opts ...Option) (*Index, error) {
	return open("", true, opts...)
}

func open(filePath string, inMemory bool, opts ...Option) (*Index, error) {
	// Apply options
	options := &indexOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	// Create code repository
	codes, err := badger.NewCodeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	idx := &Index{
		backend:     backend,
		codes:       codes,
		meta:        badger.NewMetaRepository(backend),
		checkpoints: badger.NewCheckpointRepository(backend),
		logger:      options.logger,
	}

	if options.vocabulary != nil {
		idx.matchOpts = append(idx.matchOpts, match.WithVocabulary(*options.vocabulary))
	}
	idx.searchOpts = append(idx.searchOpts, search.WithLogger(options.logger))
	if options.embedder != nil {
		idx.searchOpts = append(idx.searchOpts, search.WithEmbedder(options.embedder))
	}
	idx.searchOpts = append(idx.searchOpts, options.searchOptions...)

	if err := idx.Reload(context.Background()); err != nil {
		codes.Close()
		backend.Close()
		return nil, err
	}
	return idx, nil
}

// Reload rebuilds the in-memory match index and searcher from the stored
// records. Build calls it automatically; call it directly after writing
// records through the repository yourself.
func (idx *Index) Reload(ctx context.Context) error {
	matcher := match.NewIndex(idx.matchOpts...)
	count := 0
	err := idx.codes.ListCodeRecords(ctx, func(record *core.CodeRecord) error {
		matcher.Add(record.Id, record.Code, record.Description)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load match index: %w", err)
	}

	searcher, err := search.NewSearcher(idx.codes, matcher, idx.searchOpts...)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.searcher = searcher
	idx.mu.Unlock()

	idx.logger.Debug("match index loaded", "codes", count)
	return nil
}

// Search suggests codes for a free text diagnosis. topK <= 0 uses the
// searcher default.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]*search.Match, error) {
	return idx.currentSearcher().Search(ctx, query, topK)
}

// Related returns the classification neighbors of a code by vector
// similarity.
func (idx *Index) Related(ctx context.Context, code string, limit int) ([]*search.Match, error) {
	return idx.currentSearcher().Related(ctx, code, limit)
}

// Lookup returns the stored record for a code, accepting dotted or undotted
// forms.
func (idx *Index) Lookup(ctx context.Context, code string) (*core.CodeRecord, error) {
	normalized, err := icd10.Validate(code)
	if err != nil {
		return nil, err
	}
	return idx.codes.GetCodeRecordByCode(ctx, normalized)
}

// Info returns the metadata of the last completed build, or nil when the
// index has never been built.
func (idx *Index) Info(ctx context.Context) (*core.IndexInfo, error) {
	return idx.meta.LoadIndexInfo(ctx)
}

// Count returns the number of stored code records.
func (idx *Index) Count(ctx context.Context) (int, error) {
	return idx.codes.CountCodeRecords(ctx)
}

// Build runs the full index pipeline over entries (store, train, vectorize,
// save IndexInfo) and reloads the match index when it completes.
// progress: where to write progress output (typically os.Stderr)
func (idx *Index) Build(
	ctx context.Context,
	source string,
	entries []icd10.Entry,
	trainer *embedding.Trainer,
	config *indexing.Config,
	progress io.Writer,
) (*core.IndexInfo, error) {
	pipeline, err := indexing.NewPipeline(idx.codes, idx.meta, idx.checkpoints, trainer, config, progress)
	if err != nil {
		return nil, err
	}

	info, err := pipeline.Run(ctx, source, entries)
	if err != nil {
		return nil, err
	}

	if err := idx.Reload(ctx); err != nil {
		return nil, err
	}
	return info, nil
}

// CodeRepository exposes the underlying code repository.
func (idx *Index) CodeRepository() storage.CodeRepository {
	return idx.codes
}

func (idx *Index) currentSearcher() *search.Searcher {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.searcher
}

// Close releases the index. In-flight operations must finish first.
func (idx *Index) Close() error {
	// Close repositories
	if err := idx.codes.Close(); err != nil {
		idx.logger.Error("error closing code repository", "err", err)
		return err
	}

	// Close backend
	if err := idx.backend.Close(); err != nil {
		idx.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
