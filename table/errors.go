package table

import "errors"

var (
	// ErrLoadFailure is returned when no encoding and delimiter combination
	// parses the source. It is fatal to engine construction.
	ErrLoadFailure = errors.New("load failure")

	// ErrInvalidColumnMap is returned when a column mapping cannot be read.
	ErrInvalidColumnMap = errors.New("invalid column map")
)
