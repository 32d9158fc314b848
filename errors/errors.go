package errors

import "errors"

// Failure classes the CLI explains to the user.
var (
	// ErrNotAuthenticated indicates missing or rejected credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the credentials lack access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates an API rate limit was hit.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNotInGitRepo indicates the command requires a git repository.
	ErrNotInGitRepo = errors.New("not in a git repository")

	// ErrInvalidConfig indicates the configuration cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")
)
