package storage

import (
	"context"

	"github.com/poiesic/icdmap/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds code records similar to the given vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CodeRepository provides operations for managing ICD-10 code records.
type CodeRepository interface {
	Repository
	// AddCodeRecords adds one or more code records to storage.
	// The record ID is derived from the code string (core.IDFromCode),
	// so re-adding the same code overwrites the earlier record.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the records with IDs and timestamps populated.
	AddCodeRecords(ctx context.Context, records ...*core.CodeRecord) ([]*core.CodeRecord, error)

	// UpdateCodeRecords updates existing code records.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateCodeRecords(ctx context.Context, records ...*core.CodeRecord) ([]*core.CodeRecord, error)

	// DeleteCodeRecords removes code records by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteCodeRecords(ctx context.Context, ids ...core.ID) error

	// GetCodeRecord retrieves a single code record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetCodeRecord(ctx context.Context, id core.ID) (*core.CodeRecord, error)

	// GetCodeRecords retrieves multiple code records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetCodeRecords(ctx context.Context, ids ...core.ID) ([]*core.CodeRecord, error)

	// GetCodeRecordByCode retrieves a code record by its normalized code string.
	// Returns ErrNotFound if no record carries the code.
	GetCodeRecordByCode(ctx context.Context, code string) (*core.CodeRecord, error)

	// GetCodeRecordsByChapter retrieves all records in an ICD-10 chapter,
	// ordered by code ascending.
	GetCodeRecordsByChapter(ctx context.Context, chapter int) ([]*core.CodeRecord, error)

	// ListCodeRecords streams every stored record to fn in key order.
	// Iteration stops early if fn returns an error.
	ListCodeRecords(ctx context.Context, fn func(record *core.CodeRecord) error) error

	// CountCodeRecords returns the number of stored code records.
	CountCodeRecords(ctx context.Context) (int, error)
}

// MetaRepository stores index-level metadata.
type MetaRepository interface {
	// SaveIndexInfo persists the index metadata, replacing any prior value.
	SaveIndexInfo(ctx context.Context, info *core.IndexInfo) error

	// LoadIndexInfo returns the stored index metadata.
	// Returns nil, nil when no metadata has been saved yet.
	LoadIndexInfo(ctx context.Context) (*core.IndexInfo, error)
}

// CheckpointRepository persists pipeline progress markers so long-running
// stages can resume after interruption.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for its stage.
	SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for a stage.
	// Returns nil, nil when the stage has no checkpoint.
	LoadCheckpoint(ctx context.Context, stage string) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a stage.
	// Clearing a missing checkpoint is not an error.
	ClearCheckpoint(ctx context.Context, stage string) error
}
