package objstore

import "errors"

// Sentinel kinds for object store errors.
var (
	ErrClient = errors.New("object store client setup failed")
	ErrFetch  = errors.New("object fetch failed")
)
