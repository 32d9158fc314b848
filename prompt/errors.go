package prompt

import "errors"

// ErrNotFound indicates no template exists under the requested name.
var ErrNotFound = errors.New("prompt not found")
