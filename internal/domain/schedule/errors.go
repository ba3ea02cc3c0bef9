package schedule

import "errors"

var (
	ErrPhysicianNotFound   = errors.New("physician schedule not found")
	ErrInvalidAvailability = errors.New("availability window is invalid")
)
