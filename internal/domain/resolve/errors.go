package resolve

import "errors"

// Sentinel kinds for resolution errors.
var (
	ErrInvalidAlpha = errors.New("blend weight must be in [0,1]")
)
