package unavailable

import "errors"

var (
	ErrInvalidReason = errors.New("invalid unavailability reason")
	ErrBlockNotFound = errors.New("unavailable block not found")
)
