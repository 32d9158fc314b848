package issue

import "errors"

// Issue retrieval errors.
var (
	ErrNotFound      = errors.New("issue not found")
	ErrInvalidRepo   = errors.New("repository must be owner/name")
	ErrIsPullRequest = errors.New("number refers to a pull request")
	ErrRateLimited   = errors.New("issue tracker rate limit exceeded")
)
