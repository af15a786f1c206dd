package artifact

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrDecode             = errors.New("artifact decode failed")
	ErrMissingTrackColumn = errors.New("artifact schema missing track_id column")
)
