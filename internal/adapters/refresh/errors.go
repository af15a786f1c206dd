package refresh

import "errors"

// Sentinel kinds for refresh errors.
var (
	ErrInvalidSpec  = errors.New("invalid refresh schedule")
	ErrBackpressure = errors.New("refresh queue full")
)
