package indexing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/storage"
)

// Builder converts a parsed code set into validated records and stores them
// in batches.
type Builder struct {
	codes     storage.CodeRepository
	batchSize int
	interval  int
	progress  io.Writer
	logger    *slog.Logger
}

// NewBuilder creates a builder over the given repository.
// progress: where to write progress output (typically os.Stderr)
func NewBuilder(codes storage.CodeRepository, config *Config, progress io.Writer) (*Builder, error) {
	if codes == nil {
		return nil, ErrCodeRepositoryRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Builder{
		codes:     codes,
		batchSize: config.batchSize(),
		interval:  config.reportInterval(),
		progress:  progress,
		logger:    slog.Default(),
	}, nil
}

// Build stores one record per entry and returns the records with their IDs
// assigned. Every entry is validated up front; a single bad entry fails the
// build before anything is written.
func (b *Builder) Build(ctx context.Context, entries []icd10.Entry) ([]*core.CodeRecord, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	records := make([]*core.CodeRecord, len(entries))
	for i, entry := range entries {
		chapter, err := icd10.ChapterOf(entry.Code)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.Code, err)
		}

		record := &core.CodeRecord{
			Code:        entry.Code,
			Description: entry.Description(),
			Billable:    entry.Billable,
			Chapter:     chapter.Number,
		}
		if err := core.ValidateCodeRecord(record); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.Code, err)
		}
		records[i] = record
	}

	b.logger.Info("storing code records", "records", len(records), "batchSize", b.batchSize)
	fmt.Fprintf(b.progress, "Storing %d code records (batch size: %d)\n", len(records), b.batchSize)

	tracker := NewProgressTracker(b.progress, "Storing", len(records), b.interval)
	tracker.Start()

	for start := 0; start < len(records); start += b.batchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := min(start+b.batchSize, len(records))
		if _, err := b.codes.AddCodeRecords(ctx, records[start:end]...); err != nil {
			return nil, fmt.Errorf("failed to store batch at %d: %w", start, err)
		}
		tracker.Increment(end - start)
	}
	tracker.Finish()

	return records, nil
}
