package booking

import (
	"time"

	"github.com/clinicdesk/schedcore/internal/domain/schedule"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
)

// Slot is a candidate [Start, End) interval free of conflicts. IsOptimal
// flags morning starts for downstream ranking only; it carries no
// correctness weight.
type Slot struct {
	Start     time.Time
	End       time.Time
	IsOptimal bool
}

func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Strategy locates open slots of a requested duration on one schedule.
// Implementations must honor facility-wide unavailability passed by the
// caller and never mutate the schedule.
type Strategy interface {
	FindNextAvailableSlot(sched *schedule.Schedule, duration time.Duration, earliest time.Time, facility []*unavailable.Block) (Slot, bool)
	FindAvailableSlots(sched *schedule.Schedule, duration time.Duration, earliest time.Time, maxResults int, facility []*unavailable.Block) []Slot
}

const (
	// DefaultGranularity is the scan step between candidate starts.
	DefaultGranularity = 15 * time.Minute

	morningStart = 9 * time.Hour
	morningEnd   = 12 * time.Hour
)

// FirstAvailableStrategy walks forward in fixed increments from the earliest
// acceptable time and keeps the first qualifying slots. Earliest start always
// wins; there is no gap optimization.
type FirstAvailableStrategy struct {
	Granularity time.Duration
	Horizon     time.Duration
}

func NewFirstAvailableStrategy() *FirstAvailableStrategy {
	return &FirstAvailableStrategy{
		Granularity: DefaultGranularity,
		Horizon:     schedule.DefaultSearchHorizon,
	}
}

func (s *FirstAvailableStrategy) FindNextAvailableSlot(sched *schedule.Schedule, duration time.Duration, earliest time.Time, facility []*unavailable.Block) (Slot, bool) {
	slots := s.FindAvailableSlots(sched, duration, earliest, 1, facility)
	if len(slots) == 0 {
		return Slot{}, false
	}
	return slots[0], true
}

func (s *FirstAvailableStrategy) FindAvailableSlots(sched *schedule.Schedule, duration time.Duration, earliest time.Time, maxResults int, facility []*unavailable.Block) []Slot {
	if sched == nil || duration <= 0 || maxResults <= 0 {
		return nil
	}
	step := s.Granularity
	if step <= 0 {
		step = DefaultGranularity
	}
	horizon := s.Horizon
	if horizon <= 0 {
		horizon = schedule.DefaultSearchHorizon
	}
	limit := earliest.Add(horizon)
	hours := sched.Availability()

	var slots []Slot
	cursor, ok := hours.NextOpening(earliest)
	for ok && cursor.Before(limit) && len(slots) < maxResults {
		end := cursor.Add(duration)
		if sched.IsTimeSlotAvailable(cursor, end, facility) {
			slots = append(slots, Slot{
				Start:     cursor,
				End:       end,
				IsOptimal: inMorningWindow(cursor),
			})
		}
		cursor, ok = hours.NextOpening(cursor.Add(step))
	}
	return slots
}

func inMorningWindow(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	return offset >= morningStart && offset < morningEnd
}
