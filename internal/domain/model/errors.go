package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownTable = errors.New("unknown table name")
)
