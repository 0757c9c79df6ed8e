package config

import "errors"

// ErrInvalidConfig is returned when a configuration value is out of range or
// missing.
var ErrInvalidConfig = errors.New("invalid config")
