package config

import "errors"

// Sentinel errors for configuration failure modes. Load wraps these
// with the offending path or field; callers check with errors.Is.
var (
	// ErrInvalidConfig indicates the file is syntactically or
	// semantically invalid (bad YAML, bad duration, unknown severity).
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrMissingRequired indicates a required field is empty after
	// defaults were applied.
	ErrMissingRequired = errors.New("config: missing required field")
)
