package unavailable

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/schedcore/internal/domain/interval"
)

type Reason string

const (
	ReasonNonBusinessHours Reason = "non_business_hours"
	ReasonLunch            Reason = "lunch"
	ReasonMeeting          Reason = "meeting"
	ReasonVacation         Reason = "vacation"
	ReasonSickLeave        Reason = "sick_leave"
	ReasonHoliday          Reason = "holiday"
	ReasonAdministrative   Reason = "administrative"
	ReasonEmergency        Reason = "emergency"
	ReasonOther            Reason = "other"
)

func (r Reason) IsValid() bool {
	switch r {
	case ReasonNonBusinessHours, ReasonLunch, ReasonMeeting, ReasonVacation,
		ReasonSickLeave, ReasonHoliday, ReasonAdministrative, ReasonEmergency, ReasonOther:
		return true
	}
	return false
}

// Block marks time that cannot be booked. A nil PhysicianID makes the block
// facility-wide, applying to every schedule.
type Block struct {
	interval.Interval

	Reason      Reason
	PhysicianID *uuid.UUID

	IsRecurring       bool
	RecurrencePattern string
}

type CreateBlockCommand struct {
	Start             time.Time
	End               time.Time
	Description       string
	Reason            Reason
	PhysicianID       *uuid.UUID
	IsRecurring       bool
	RecurrencePattern string
}

func New(cmd CreateBlockCommand) (*Block, error) {
	if !cmd.Reason.IsValid() {
		return nil, ErrInvalidReason
	}
	iv, err := interval.New(cmd.Start, cmd.End, cmd.Description)
	if err != nil {
		return nil, err
	}
	return &Block{
		Interval:          iv,
		Reason:            cmd.Reason,
		PhysicianID:       cmd.PhysicianID,
		IsRecurring:       cmd.IsRecurring,
		RecurrencePattern: cmd.RecurrencePattern,
	}, nil
}

// IsFacilityWide reports whether the block applies to every physician.
func (b *Block) IsFacilityWide() bool {
	return b.PhysicianID == nil
}

// AppliesTo reports whether the block constrains the given physician's
// schedule.
func (b *Block) AppliesTo(physicianID uuid.UUID) bool {
	return b.PhysicianID == nil || *b.PhysicianID == physicianID
}
