package checkpoint

import "errors"

// ErrCorrupt indicates a stored checkpoint could not be decoded.
var ErrCorrupt = errors.New("corrupt checkpoint")
