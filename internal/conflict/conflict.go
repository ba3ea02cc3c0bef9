package conflict

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/schedcore/internal/booking"
	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/interval"
	"github.com/clinicdesk/schedcore/internal/domain/schedule"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
)

type Type string

const (
	TypeDoubleBooking        Type = "double_booking"
	TypeUnavailableTime      Type = "unavailable_time"
	TypeOutsideBusinessHours Type = "outside_business_hours"
	TypeTooShort             Type = "too_short"
	TypeTooLong              Type = "too_long"
	TypeOverlap              Type = "overlap"
	TypeHoliday              Type = "holiday"
	TypeOther                Type = "other"
)

// Conflict is one structural reason a proposed appointment cannot be booked
// as-is.
type Conflict struct {
	Type        Type
	Message     string
	With        *interval.Interval
	Overridable bool
}

// CheckResult reports every conflict found for one proposal. Checks do not
// short-circuit: a caller may face several simultaneous reasons.
type CheckResult struct {
	Proposed  *appointment.Appointment
	Conflicts []Conflict
}

func (r CheckResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// DetectionResult extends a CheckResult with ranked alternative slots.
type DetectionResult struct {
	CheckResult
	Alternatives []booking.Slot
	Recommended  *booking.Slot
}

// Request carries everything a check needs to judge one proposal.
type Request struct {
	Proposed *appointment.Appointment
	Schedule *schedule.Schedule
	Facility []*unavailable.Block
	// ExcludeID skips one existing appointment during the double-booking
	// check, which makes reschedule-in-place checks possible.
	ExcludeID uuid.UUID
}

// CheckFunc is a pure conflict rule. The detector folds over an ordered list
// of these, so additional rules can be layered without touching the detector.
type CheckFunc func(Request) []Conflict

type Config struct {
	MinDuration     time.Duration
	MaxDuration     time.Duration
	MaxAlternatives int
}

func DefaultConfig() Config {
	return Config{
		MinDuration:     15 * time.Minute,
		MaxDuration:     180 * time.Minute,
		MaxAlternatives: 3,
	}
}

type Detector struct {
	cfg      Config
	strategy booking.Strategy
	checks   []CheckFunc
}

func NewDetector(cfg Config, strategy booking.Strategy) *Detector {
	if cfg.MinDuration <= 0 || cfg.MaxDuration <= cfg.MinDuration {
		cfg = DefaultConfig()
	}
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = DefaultConfig().MaxAlternatives
	}
	d := &Detector{cfg: cfg, strategy: strategy}
	d.checks = []CheckFunc{
		d.checkDuration,
		d.checkDoubleBooking,
		d.checkUnavailability,
		d.checkBusinessHours,
	}
	return d
}

// AddCheck appends a custom rule behind the built-in ones.
func (d *Detector) AddCheck(fn CheckFunc) {
	if fn != nil {
		d.checks = append(d.checks, fn)
	}
}

// Check runs every rule and collects all conflicts for the proposal.
func (d *Detector) Check(req Request) CheckResult {
	result := CheckResult{Proposed: req.Proposed}
	if req.Proposed == nil || req.Schedule == nil {
		return result
	}
	for _, check := range d.checks {
		result.Conflicts = append(result.Conflicts, check(req)...)
	}
	return result
}

// FindAlternatives asks the booking strategy for replacement slots near the
// originally requested time. Earliest start wins; an optimal slot is
// preferred only on an exact tie. The first ranked slot becomes the
// recommendation.
func (d *Detector) FindAlternatives(result CheckResult, sched *schedule.Schedule, facility []*unavailable.Block) DetectionResult {
	out := DetectionResult{CheckResult: result}
	if d.strategy == nil || result.Proposed == nil || sched == nil {
		return out
	}

	slots := d.strategy.FindAvailableSlots(sched, result.Proposed.Duration(), result.Proposed.Start, d.cfg.MaxAlternatives, facility)
	rankSlots(slots)
	out.Alternatives = slots
	if len(slots) > 0 {
		recommended := slots[0]
		out.Recommended = &recommended
	}
	return out
}

func rankSlots(slots []booking.Slot) {
	for i := 1; i < len(slots); i++ {
		for j := i; j > 0; j-- {
			a, b := slots[j-1], slots[j]
			swap := b.Start.Before(a.Start) || (b.Start.Equal(a.Start) && b.IsOptimal && !a.IsOptimal)
			if !swap {
				break
			}
			slots[j-1], slots[j] = b, a
		}
	}
}

func (d *Detector) checkDuration(req Request) []Conflict {
	duration := req.Proposed.Duration()
	switch {
	case duration < d.cfg.MinDuration:
		return []Conflict{{
			Type:    TypeTooShort,
			Message: fmt.Sprintf("appointment of %s is shorter than the %s minimum", duration, d.cfg.MinDuration),
		}}
	case duration > d.cfg.MaxDuration:
		return []Conflict{{
			Type:    TypeTooLong,
			Message: fmt.Sprintf("appointment of %s exceeds the %s maximum", duration, d.cfg.MaxDuration),
		}}
	}
	return nil
}

func (d *Detector) checkDoubleBooking(req Request) []Conflict {
	var conflicts []Conflict
	for _, existing := range req.Schedule.Appointments() {
		if existing.ID == req.ExcludeID || !existing.IsActive() {
			continue
		}
		if existing.Overlaps(req.Proposed.Interval) {
			iv := existing.Interval
			conflicts = append(conflicts, Conflict{
				Type:    TypeDoubleBooking,
				Message: fmt.Sprintf("physician already booked %s to %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339)),
				With:    &iv,
			})
		}
	}
	return conflicts
}

func (d *Detector) checkUnavailability(req Request) []Conflict {
	blocks := req.Schedule.Blocks()
	for _, b := range req.Facility {
		if b.AppliesTo(req.Proposed.PhysicianID) {
			blocks = append(blocks, b)
		}
	}

	var conflicts []Conflict
	for _, b := range blocks {
		if !b.Overlaps(req.Proposed.Interval) {
			continue
		}
		iv := b.Interval
		conflictType := TypeUnavailableTime
		if b.Reason == unavailable.ReasonHoliday {
			conflictType = TypeHoliday
		}
		conflicts = append(conflicts, Conflict{
			Type:        conflictType,
			Message:     fmt.Sprintf("time is blocked: %s", b.Reason),
			With:        &iv,
			Overridable: overridableReason(b.Reason),
		})
	}
	return conflicts
}

func (d *Detector) checkBusinessHours(req Request) []Conflict {
	if req.Schedule.Availability().Covers(req.Proposed.Interval) {
		return nil
	}
	return []Conflict{{
		Type:    TypeOutsideBusinessHours,
		Message: "requested time falls outside the physician's standard availability",
	}}
}

// Soft blocks such as meetings can be negotiated away by front-desk staff;
// absences and holidays cannot.
func overridableReason(r unavailable.Reason) bool {
	switch r {
	case unavailable.ReasonLunch, unavailable.ReasonMeeting, unavailable.ReasonAdministrative, unavailable.ReasonOther:
		return true
	}
	return false
}
