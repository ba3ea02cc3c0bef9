package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/schedcore/internal/domain/interval"
)

// State transitions possibilities:
//
//	tentative → scheduled → in_progress → completed
//	scheduled → cancelled
//	scheduled → no_show
//	scheduled → rescheduled (original is retired, replacement carries RescheduledFromID)
type Status string

const (
	StatusTentative   Status = "tentative"
	StatusScheduled   Status = "scheduled"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTentative, StatusScheduled, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Appointment occupies a half-open slot on one physician's schedule.
type Appointment struct {
	interval.Interval

	PatientID   uuid.UUID
	PhysicianID uuid.UUID

	Status Status
	Reason string
	Notes  string

	RoomNumber        *int
	RescheduledFromID *uuid.UUID

	CancelledAt        *time.Time
	CancellationReason string

	CreatedAt  time.Time
	ModifiedAt *time.Time
}

func (a *Appointment) CanTransitionTo(next Status) bool {
	allowed := map[Status][]Status{
		StatusTentative:   {StatusScheduled, StatusCancelled},
		StatusScheduled:   {StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
		StatusInProgress:  {StatusCompleted},
		StatusCompleted:   {},
		StatusCancelled:   {},
		StatusNoShow:      {},
		StatusRescheduled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the appointment still holds its slot. Terminal
// appointments free the time they used to occupy.
func (a *Appointment) IsActive() bool {
	return !a.Status.IsTerminal()
}

// CanCancel reports whether the appointment may still be called off: only a
// scheduled appointment whose start has not yet arrived.
func (a *Appointment) CanCancel(now time.Time) bool {
	return a.Status == StatusScheduled && a.Start.After(now)
}

// CanReschedule has the same precondition as CanCancel.
func (a *Appointment) CanReschedule(now time.Time) bool {
	return a.Status == StatusScheduled && a.Start.After(now)
}

func (a *Appointment) Cancel(reason string, now time.Time) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	a.touch(now)
	return nil
}

func (a *Appointment) Begin(now time.Time) error {
	if !a.CanTransitionTo(StatusInProgress) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusInProgress
	a.touch(now)
	return nil
}

func (a *Appointment) Complete(now time.Time) error {
	if !a.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCompleted
	a.touch(now)
	return nil
}

func (a *Appointment) MarkNoShow(now time.Time) error {
	if !a.CanTransitionTo(StatusNoShow) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusNoShow
	a.touch(now)
	return nil
}

// MarkRescheduled retires the appointment in favor of a replacement slot.
func (a *Appointment) MarkRescheduled(now time.Time) error {
	if !a.CanTransitionTo(StatusRescheduled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusRescheduled
	a.touch(now)
	return nil
}

func (a *Appointment) touch(now time.Time) {
	a.ModifiedAt = &now
}

// Clone returns an independent copy safe to hand to callers outside the
// scheduling lock.
func (a *Appointment) Clone() *Appointment {
	c := *a
	if a.RoomNumber != nil {
		v := *a.RoomNumber
		c.RoomNumber = &v
	}
	if a.RescheduledFromID != nil {
		v := *a.RescheduledFromID
		c.RescheduledFromID = &v
	}
	if a.CancelledAt != nil {
		v := *a.CancelledAt
		c.CancelledAt = &v
	}
	if a.ModifiedAt != nil {
		v := *a.ModifiedAt
		c.ModifiedAt = &v
	}
	return &c
}

type CreateAppointmentCommand struct {
	PatientID   uuid.UUID
	PhysicianID uuid.UUID
	Start       time.Time
	// End and DurationMins are alternatives; End wins when both are set.
	End          time.Time
	DurationMins int
	Reason       string
	Notes        string
	RoomNumber   *int
}

func (cmd *CreateAppointmentCommand) end() time.Time {
	if !cmd.End.IsZero() {
		return cmd.End
	}
	return cmd.Start.Add(time.Duration(cmd.DurationMins) * time.Minute)
}

// New builds a scheduled appointment from the command, validating required
// identifiers and interval bounds. Duration limits are a booking-policy
// concern checked by the conflict detector, not here.
func New(cmd CreateAppointmentCommand, now time.Time) (*Appointment, error) {
	if cmd.PatientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	if cmd.PhysicianID == uuid.Nil {
		return nil, ErrMissingPhysician
	}
	iv, err := interval.New(cmd.Start, cmd.end(), cmd.Reason)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		Interval:    iv,
		PatientID:   cmd.PatientID,
		PhysicianID: cmd.PhysicianID,
		Status:      StatusScheduled,
		Reason:      cmd.Reason,
		Notes:       cmd.Notes,
		RoomNumber:  cmd.RoomNumber,
		CreatedAt:   now,
	}, nil
}

type UpdateAppointmentCommand struct {
	Start      *time.Time
	End        *time.Time
	Reason     *string
	Notes      *string
	RoomNumber *int
}

type CancelAppointmentCommand struct {
	Reason string
}

type RescheduleAppointmentCommand struct {
	NewStart time.Time
	NewEnd   time.Time
}
