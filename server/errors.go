package server

import "errors"

var (
	// ErrConfigRequired is returned when a server is created without a config.
	ErrConfigRequired = errors.New("config required")

	// ErrIndexRequired is returned when a server is created without an index.
	ErrIndexRequired = errors.New("index required")
)
