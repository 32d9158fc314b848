package workflow

import "errors"

// Workflow errors.
var (
	// ErrMissingFields indicates state validation failed.
	ErrMissingFields = errors.New("missing required fields")

	// ErrOutsideRepo indicates a target path escapes the repository root.
	ErrOutsideRepo = errors.New("path outside repository")
)
