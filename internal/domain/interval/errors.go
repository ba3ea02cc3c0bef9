package interval

import "errors"

var (
	ErrMissingBounds  = errors.New("interval start and end are required")
	ErrEndBeforeStart = errors.New("interval end must be after start")
	ErrNotMergeable   = errors.New("intervals neither overlap nor touch")
)
