package embedding

import "errors"

var (
	// ErrGraphRequired indicates Train was called without a hierarchy graph.
	ErrGraphRequired = errors.New("hierarchy graph is required")

	// ErrInvalidConfig indicates a trainer option with an out-of-range value.
	ErrInvalidConfig = errors.New("invalid trainer configuration")

	// ErrDimensionMismatch indicates vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimensions do not match")
)
