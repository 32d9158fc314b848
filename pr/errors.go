package pr

import "errors"

var (
	// ErrNoProvider is returned when no hosting provider is configured.
	ErrNoProvider = errors.New("no PR provider configured")

	// ErrUnknownProvider is returned for remotes that are neither GitHub
	// nor GitLab.
	ErrUnknownProvider = errors.New("unknown git provider")

	// ErrExists is returned by CreatePR when head already has an open
	// pull request.
	ErrExists = errors.New("pull request already exists for this branch")

	ErrNotFound = errors.New("pull request not found")

	// ErrClosed and ErrMerged report that the pull request for a branch
	// is finished and cannot be reused.
	ErrClosed = errors.New("pull request is closed")
	ErrMerged = errors.New("pull request is already merged")

	// ErrNoChanges is returned when head and base have no diff.
	ErrNoChanges = errors.New("no changes between branches")
)
