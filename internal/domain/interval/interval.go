package interval

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time range [Start, End). Two intervals that merely
// touch at an endpoint do not overlap.
type Interval struct {
	ID          uuid.UUID
	Start       time.Time
	End         time.Time
	Description string
}

func New(start, end time.Time, description string) (Interval, error) {
	iv := Interval{
		ID:          uuid.New(),
		Start:       start,
		End:         end,
		Description: description,
	}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return ErrMissingBounds
	}
	if !iv.End.After(iv.Start) {
		return ErrEndBeforeStart
	}
	return nil
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// ContainsTime reports whether t falls inside the interval. The end instant
// itself is excluded.
func (iv Interval) ContainsTime(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// ContainsInterval reports whether other lies entirely inside iv.
func (iv Interval) ContainsInterval(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// IsAdjacentTo reports whether the two intervals share exactly one boundary
// instant, in either order, without overlapping.
func (iv Interval) IsAdjacentTo(other Interval) bool {
	return iv.End.Equal(other.Start) || other.End.Equal(iv.Start)
}

// MergeWith returns a fresh interval spanning both inputs. It fails unless the
// intervals overlap or are adjacent, so merging can never invent free time.
func (iv Interval) MergeWith(other Interval) (Interval, error) {
	if !iv.Overlaps(other) && !iv.IsAdjacentTo(other) {
		return Interval{}, ErrNotMergeable
	}
	merged := Interval{
		ID:          uuid.New(),
		Start:       iv.Start,
		End:         iv.End,
		Description: iv.Description,
	}
	if other.Start.Before(merged.Start) {
		merged.Start = other.Start
	}
	if other.End.After(merged.End) {
		merged.End = other.End
	}
	return merged, nil
}

// IsWithinBusinessHours reports whether every instant of the interval falls
// inside the default Monday-Friday 08:00-17:00 window.
func (iv Interval) IsWithinBusinessHours() bool {
	return DefaultBusinessHours.Covers(iv)
}
