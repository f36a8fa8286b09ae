package intent

import "errors"

var (
	// ErrInvalidRoles indicates a role dictionary could not be read or parsed.
	ErrInvalidRoles = errors.New("invalid role dictionary")
)
