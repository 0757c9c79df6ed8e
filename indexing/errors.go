package indexing

import "errors"

var (
	// ErrCodeRepositoryRequired is returned when a code repository is not provided.
	ErrCodeRepositoryRequired = errors.New("code repository required")

	// ErrMetaRepositoryRequired is returned when a meta repository is not provided.
	ErrMetaRepositoryRequired = errors.New("meta repository required")

	// ErrCheckpointRepositoryRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository required")

	// ErrTrainerRequired is returned when a trainer is not provided.
	ErrTrainerRequired = errors.New("trainer required")

	// ErrNoEntries is returned when a build is attempted over an empty code set.
	ErrNoEntries = errors.New("no entries to index")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
