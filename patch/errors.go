package patch

import "errors"

// ErrTooLarge indicates a generated diff exceeds the configured line limit.
var ErrTooLarge = errors.New("diff too large")
