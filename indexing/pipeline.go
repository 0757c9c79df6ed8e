package indexing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/storage"
)

const (
	// DefaultBatchSize is the default number of records per storage batch.
	DefaultBatchSize = 500

	// DefaultReportInterval is the default number of records between
	// progress reports.
	DefaultReportInterval = 1000

	// DefaultMaxRetries is the default number of attempts for a
	// conflicting update.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default base delay for retry backoff.
	DefaultRetryDelay = 100 * time.Millisecond
)

// Config holds configuration for an index build.
type Config struct {
	// BatchSize is the number of records written per storage batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// Workers is how many vector update batches run concurrently
	Workers int

	// MaxRetries is the maximum number of attempts for conflicting updates
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultReportInterval,
		Workers:        defaultWorkers(),
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
	}
}

func defaultWorkers() int {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return workers
}

func (c *Config) batchSize() int {
	if c.BatchSize < 1 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) reportInterval() int {
	if c.ReportInterval < 1 {
		return DefaultReportInterval
	}
	return c.ReportInterval
}

func (c *Config) workers() int {
	if c.Workers < 1 {
		return defaultWorkers()
	}
	return c.Workers
}

func (c *Config) maxRetries() int {
	if c.MaxRetries < 1 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

func (c *Config) retryDelay() time.Duration {
	if c.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return c.RetryDelay
}

// Pipeline runs a full index build: store the code set, train the hierarchy
// embedding over it, vectorize the stored records, and record the result in
// the index metadata.
type Pipeline struct {
	builder    *Builder
	vectorizer *Vectorizer
	meta       storage.MetaRepository
	progress   io.Writer
	logger     *slog.Logger
}

// NewPipeline creates a pipeline over the given repositories.
// progress: where to write progress output (typically os.Stderr)
func NewPipeline(
	codes storage.CodeRepository,
	meta storage.MetaRepository,
	checkpoints storage.CheckpointRepository,
	trainer *embedding.Trainer,
	config *Config,
	progress io.Writer,
) (*Pipeline, error) {
	if meta == nil {
		return nil, ErrMetaRepositoryRequired
	}
	if progress == nil {
		progress = io.Discard
	}

	builder, err := NewBuilder(codes, config, progress)
	if err != nil {
		return nil, err
	}
	vectorizer, err := NewVectorizer(codes, checkpoints, trainer, config, progress)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		builder:    builder,
		vectorizer: vectorizer,
		meta:       meta,
		progress:   progress,
		logger:     slog.Default(),
	}, nil
}

// Run executes the build over entries. source names the code set origin for
// IndexInfo (a file path, or icd10.SourceBuiltin).
func (p *Pipeline) Run(ctx context.Context, source string, entries []icd10.Entry) (*core.IndexInfo, error) {
	started := time.Now()

	// A fresh build invalidates any vectorize frontier left behind by an
	// interrupted run.
	if err := p.vectorizer.Reset(ctx); err != nil {
		return nil, err
	}

	records, err := p.builder.Build(ctx, entries)
	if err != nil {
		return nil, err
	}
	builtAt := time.Now().UTC()

	model, err := p.vectorizer.Vectorize(ctx, entries)
	if err != nil {
		return nil, err
	}

	info := &core.IndexInfo{
		Source:     source,
		CodeCount:  len(records),
		Dimensions: model.Dimensions(),
		BuiltAt:    builtAt,
		EmbeddedAt: time.Now().UTC(),
	}
	if err := p.meta.SaveIndexInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to save index info: %w", err)
	}

	elapsed := time.Since(started)
	p.logger.Info("index build complete",
		"source", source,
		"codes", info.CodeCount,
		"dimensions", info.Dimensions,
		"elapsed", elapsed.Round(time.Millisecond))
	fmt.Fprintf(p.progress, "Indexed %d codes in %v\n", info.CodeCount, elapsed.Round(time.Millisecond))

	return info, nil
}
