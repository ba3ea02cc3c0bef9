package v1

import (
	"time"

	"github.com/clinicdesk/schedcore/internal/booking"
	"github.com/clinicdesk/schedcore/internal/conflict"
	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/schedule"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
	"github.com/clinicdesk/schedcore/internal/service"
)

type createAppointmentRequest struct {
	PatientID    string    `json:"patient_id" binding:"required,uuid"`
	PhysicianID  string    `json:"physician_id" binding:"required,uuid"`
	Start        time.Time `json:"start" binding:"required"`
	End          time.Time `json:"end"`
	DurationMins int       `json:"duration_mins"`
	Reason       string    `json:"reason"`
	Notes        string    `json:"notes"`
	RoomNumber   *int      `json:"room_number"`
}

type updateAppointmentRequest struct {
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	Reason     *string    `json:"reason"`
	Notes      *string    `json:"notes"`
	RoomNumber *int       `json:"room_number"`
}

type transitionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type rescheduleAppointmentRequest struct {
	NewStart time.Time `json:"new_start" binding:"required"`
	NewEnd   time.Time `json:"new_end" binding:"required"`
}

type createBlockRequest struct {
	Start             time.Time `json:"start" binding:"required"`
	End               time.Time `json:"end" binding:"required"`
	Description       string    `json:"description"`
	Reason            string    `json:"reason" binding:"required"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurrencePattern string    `json:"recurrence_pattern"`
}

type dayWindowRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type availabilityRequest map[string]dayWindowRequest

type cleanupRequest struct {
	OlderThan time.Time `json:"older_than" binding:"required"`
}

type appointmentResponse struct {
	ID                 string     `json:"id"`
	PatientID          string     `json:"patient_id"`
	PhysicianID        string     `json:"physician_id"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	Status             string     `json:"status"`
	Reason             string     `json:"reason,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	RoomNumber         *int       `json:"room_number,omitempty"`
	RescheduledFromID  *string    `json:"rescheduled_from_id,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ModifiedAt         *time.Time `json:"modified_at,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:                 a.ID.String(),
		PatientID:          a.PatientID.String(),
		PhysicianID:        a.PhysicianID.String(),
		Start:              a.Start,
		End:                a.End,
		Status:             string(a.Status),
		Reason:             a.Reason,
		Notes:              a.Notes,
		RoomNumber:         a.RoomNumber,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		ModifiedAt:         a.ModifiedAt,
	}
	if a.RescheduledFromID != nil {
		from := a.RescheduledFromID.String()
		resp.RescheduledFromID = &from
	}
	return resp
}

func toAppointmentResponses(appts []*appointment.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type intervalResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type conflictResponse struct {
	Type        string            `json:"type"`
	Message     string            `json:"message"`
	With        *intervalResponse `json:"with,omitempty"`
	Overridable bool              `json:"overridable"`
}

func toConflictResponses(conflicts []conflict.Conflict) []conflictResponse {
	out := make([]conflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		resp := conflictResponse{
			Type:        string(c.Type),
			Message:     c.Message,
			Overridable: c.Overridable,
		}
		if c.With != nil {
			resp.With = &intervalResponse{Start: c.With.Start, End: c.With.End}
		}
		out = append(out, resp)
	}
	return out
}

type slotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	IsOptimal bool      `json:"is_optimal"`
}

func toSlotResponses(slots []booking.Slot) []slotResponse {
	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{Start: s.Start, End: s.End, IsOptimal: s.IsOptimal})
	}
	return out
}

type scheduleResultResponse struct {
	Success      bool                 `json:"success"`
	Appointment  *appointmentResponse `json:"appointment,omitempty"`
	Conflicts    []conflictResponse   `json:"conflicts,omitempty"`
	Alternatives []slotResponse       `json:"alternatives,omitempty"`
	Recommended  *slotResponse        `json:"recommended,omitempty"`
}

func toScheduleResultResponse(res *service.ScheduleResult) scheduleResultResponse {
	out := scheduleResultResponse{Success: res.Success}
	if res.Appointment != nil {
		appt := toAppointmentResponse(res.Appointment)
		out.Appointment = &appt
	}
	out.Conflicts = toConflictResponses(res.Conflicts)
	out.Alternatives = toSlotResponses(res.Alternatives)
	if res.Recommended != nil {
		rec := slotResponse{Start: res.Recommended.Start, End: res.Recommended.End, IsOptimal: res.Recommended.IsOptimal}
		out.Recommended = &rec
	}
	return out
}

type blockResponse struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Reason      string    `json:"reason"`
	PhysicianID *string   `json:"physician_id,omitempty"`
	IsRecurring bool      `json:"is_recurring"`
}

type blockResultResponse struct {
	Success     bool                  `json:"success"`
	Block       *blockResponse        `json:"block,omitempty"`
	Conflicting []appointmentResponse `json:"conflicting,omitempty"`
}

func toBlockResultResponse(res *service.BlockResult) blockResultResponse {
	out := blockResultResponse{Success: res.Success}
	if res.Block != nil {
		b := blockResponse{
			ID:          res.Block.ID.String(),
			Start:       res.Block.Start,
			End:         res.Block.End,
			Reason:      string(res.Block.Reason),
			IsRecurring: res.Block.IsRecurring,
		}
		if res.Block.PhysicianID != nil {
			id := res.Block.PhysicianID.String()
			b.PhysicianID = &id
		}
		out.Block = &b
	}
	out.Conflicting = toAppointmentResponses(res.Conflicting)
	return out
}

type statisticsResponse struct {
	PhysicianID      string             `json:"physician_id"`
	Total            int                `json:"total"`
	ByStatus         map[string]int     `json:"by_status"`
	Upcoming         int                `json:"upcoming"`
	NoShowRate       float64            `json:"no_show_rate"`
	CancellationRate float64            `json:"cancellation_rate"`
	Today            daySummaryResponse `json:"today"`
}

type daySummaryResponse struct {
	Date             time.Time `json:"date"`
	BookedMinutes    int       `json:"booked_minutes"`
	BlockedMinutes   int       `json:"blocked_minutes"`
	AvailableMinutes int       `json:"available_minutes"`
	Utilization      float64   `json:"utilization_percent"`
}

func toDaySummaryResponse(s schedule.DaySummary) daySummaryResponse {
	return daySummaryResponse{
		Date:             s.Date,
		BookedMinutes:    int(s.Booked.Minutes()),
		BlockedMinutes:   int(s.Blocked.Minutes()),
		AvailableMinutes: int(s.Available.Minutes()),
		Utilization:      s.Utilization,
	}
}

func toStatisticsResponse(stats *service.Statistics) statisticsResponse {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	return statisticsResponse{
		PhysicianID:      stats.PhysicianID.String(),
		Total:            stats.Total,
		ByStatus:         byStatus,
		Upcoming:         stats.Upcoming,
		NoShowRate:       stats.NoShowRate,
		CancellationRate: stats.CancellationRate,
		Today:            toDaySummaryResponse(stats.Today),
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func blockReason(raw string) unavailable.Reason {
	return unavailable.Reason(raw)
}
