package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/interval"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
)

// DefaultSearchHorizon bounds slot searches that do not supply their own
// horizon, so a fully booked calendar cannot trigger an unbounded scan.
const DefaultSearchHorizon = 30 * 24 * time.Hour

// Schedule is the authoritative per-physician collection of appointments and
// unavailability. It is not safe for concurrent use; the scheduler service
// serializes access.
type Schedule struct {
	physicianID  uuid.UUID
	appointments []*appointment.Appointment
	blocks       []*unavailable.Block
	availability interval.WeeklyHours
}

func New(physicianID uuid.UUID) *Schedule {
	return &Schedule{
		physicianID:  physicianID,
		availability: interval.DefaultBusinessHours.Clone(),
	}
}

func (s *Schedule) PhysicianID() uuid.UUID {
	return s.physicianID
}

// Appointments returns a snapshot ordered by start time.
func (s *Schedule) Appointments() []*appointment.Appointment {
	out := make([]*appointment.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// Blocks returns a snapshot of physician-scoped unavailability.
func (s *Schedule) Blocks() []*unavailable.Block {
	out := make([]*unavailable.Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

func (s *Schedule) Availability() interval.WeeklyHours {
	return s.availability.Clone()
}

// SetAvailability replaces the weekly standard availability. Invalid windows
// are rejected wholesale so the schedule never holds a half-applied week.
func (s *Schedule) SetAvailability(hours interval.WeeklyHours) error {
	for _, window := range hours {
		if !window.Valid() {
			return ErrInvalidAvailability
		}
	}
	s.availability = hours.Clone()
	return nil
}

// FindAppointment looks up an appointment by id.
func (s *Schedule) FindAppointment(id uuid.UUID) (*appointment.Appointment, bool) {
	for _, a := range s.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// TryAddAppointment inserts the appointment only when its slot is free of
// active appointments, applicable unavailability and falls inside standard
// availability. It never partially mutates: a false return leaves the
// schedule untouched.
func (s *Schedule) TryAddAppointment(a *appointment.Appointment, facility []*unavailable.Block) bool {
	if a == nil || a.Validate() != nil {
		return false
	}
	if !s.availability.Covers(a.Interval) {
		return false
	}
	if s.overlapsActiveAppointment(a.Interval, a.ID) {
		return false
	}
	if s.overlapsBlock(a.Interval, facility) {
		return false
	}
	s.appointments = append(s.appointments, a)
	sort.SliceStable(s.appointments, func(i, j int) bool {
		return s.appointments[i].Start.Before(s.appointments[j].Start)
	})
	return true
}

// RemoveAppointment deletes the appointment outright, freeing its slot.
func (s *Schedule) RemoveAppointment(id uuid.UUID) bool {
	for i, a := range s.appointments {
		if a.ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return true
		}
	}
	return false
}

// AddUnavailableBlock inserts the block unless it would retroactively overlap
// active appointments; those are returned so the caller can surface them.
func (s *Schedule) AddUnavailableBlock(b *unavailable.Block) []*appointment.Appointment {
	var clashing []*appointment.Appointment
	for _, a := range s.appointments {
		if a.IsActive() && a.Overlaps(b.Interval) {
			clashing = append(clashing, a)
		}
	}
	if len(clashing) > 0 {
		return clashing
	}
	s.blocks = append(s.blocks, b)
	sort.SliceStable(s.blocks, func(i, j int) bool {
		return s.blocks[i].Start.Before(s.blocks[j].Start)
	})
	return nil
}

// RemoveUnavailableBlock deletes a physician-scoped block by id.
func (s *Schedule) RemoveUnavailableBlock(id uuid.UUID) bool {
	for i, b := range s.blocks {
		if b.ID == id {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return true
		}
	}
	return false
}

// IsTimeSlotAvailable reports whether [start, end) could hold a new
// appointment right now.
func (s *Schedule) IsTimeSlotAvailable(start, end time.Time, facility []*unavailable.Block) bool {
	iv := interval.Interval{Start: start, End: end}
	if iv.Validate() != nil {
		return false
	}
	if !s.availability.Covers(iv) {
		return false
	}
	return !s.overlapsActiveAppointment(iv, uuid.Nil) && !s.overlapsBlock(iv, facility)
}

// FindNextAvailableSlot scans forward from after in steps of the requested
// duration, snapping to the next availability opening, until a free slot is
// found or the horizon is exhausted. A non-positive horizon uses
// DefaultSearchHorizon.
func (s *Schedule) FindNextAvailableSlot(duration time.Duration, after time.Time, horizon time.Duration, facility []*unavailable.Block) (time.Time, bool) {
	if duration <= 0 {
		return time.Time{}, false
	}
	if horizon <= 0 {
		horizon = DefaultSearchHorizon
	}
	limit := after.Add(horizon)

	cursor, ok := s.availability.NextOpening(after)
	for ok && cursor.Before(limit) {
		if s.IsTimeSlotAvailable(cursor, cursor.Add(duration), facility) {
			return cursor, true
		}
		cursor, ok = s.availability.NextOpening(cursor.Add(duration))
	}
	return time.Time{}, false
}

// DaySummary aggregates one date's load.
type DaySummary struct {
	Date        time.Time
	Booked      time.Duration
	Blocked     time.Duration
	Available   time.Duration
	Utilization float64
}

// AvailabilitySummary reports booked versus free time inside the standard
// availability window of the given date.
func (s *Schedule) AvailabilitySummary(date time.Time) DaySummary {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	summary := DaySummary{Date: day}

	window, open := s.availability[day.Weekday()]
	if !open {
		return summary
	}
	windowIv := interval.Interval{Start: day.Add(window.Start), End: day.Add(window.End)}
	total := windowIv.Duration()

	for _, a := range s.appointments {
		if a.IsActive() {
			summary.Booked += overlapDuration(a.Interval, windowIv)
		}
	}
	for _, b := range s.blocks {
		summary.Blocked += overlapDuration(b.Interval, windowIv)
	}

	summary.Available = total - summary.Booked - summary.Blocked
	if summary.Available < 0 {
		summary.Available = 0
	}
	if total > 0 {
		summary.Utilization = float64(summary.Booked) / float64(total) * 100
	}
	return summary
}

// AppointmentsInRange returns appointments overlapping [start, end), ordered
// by start time.
func (s *Schedule) AppointmentsInRange(start, end time.Time) []*appointment.Appointment {
	iv := interval.Interval{Start: start, End: end}
	var out []*appointment.Appointment
	for _, a := range s.appointments {
		if a.Overlaps(iv) {
			out = append(out, a)
		}
	}
	return out
}

// CleanupBefore drops terminal appointments that ended before the cutoff and
// returns how many were removed. Active appointments are never touched.
func (s *Schedule) CleanupBefore(cutoff time.Time) int {
	kept := s.appointments[:0]
	removed := 0
	for _, a := range s.appointments {
		if !a.IsActive() && a.End.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.appointments = kept
	return removed
}

func (s *Schedule) overlapsActiveAppointment(iv interval.Interval, excludeID uuid.UUID) bool {
	for _, a := range s.appointments {
		if a.ID == excludeID || !a.IsActive() {
			continue
		}
		if a.Overlaps(iv) {
			return true
		}
	}
	return false
}

func (s *Schedule) overlapsBlock(iv interval.Interval, facility []*unavailable.Block) bool {
	for _, b := range s.blocks {
		if b.Overlaps(iv) {
			return true
		}
	}
	for _, b := range facility {
		if b.AppliesTo(s.physicianID) && b.Overlaps(iv) {
			return true
		}
	}
	return false
}

func overlapDuration(a, b interval.Interval) time.Duration {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
