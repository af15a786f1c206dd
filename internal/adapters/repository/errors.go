package repository

import "errors"

// Sentinel kinds for table store errors.
var (
	ErrUnknownTable = errors.New("unknown table name")
)
