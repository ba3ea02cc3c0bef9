package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/schedcore/config"
	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/interval"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
	"github.com/clinicdesk/schedcore/internal/service"
)

// SchedulerHandler translates HTTP requests into scheduler service calls and
// results back into user-facing payloads. It performs no scheduling logic of
// its own.
type SchedulerHandler struct {
	svc *service.SchedulerService
	cfg config.SchedulingConfig
	log *zap.Logger
}

func NewSchedulerHandler(svc *service.SchedulerService, cfg config.SchedulingConfig, log *zap.Logger) *SchedulerHandler {
	return &SchedulerHandler{svc: svc, cfg: cfg, log: log}
}

func (h *SchedulerHandler) ScheduleAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	patientID, _ := uuid.Parse(req.PatientID)
	physicianID, _ := uuid.Parse(req.PhysicianID)

	res, err := h.svc.ScheduleAppointment(c.Request.Context(), appointment.CreateAppointmentCommand{
		PatientID:    patientID,
		PhysicianID:  physicianID,
		Start:        req.Start,
		End:          req.End,
		DurationMins: req.DurationMins,
		Reason:       req.Reason,
		Notes:        req.Notes,
		RoomNumber:   req.RoomNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, APIResponse[any]{Data: toScheduleResultResponse(res)})
		return
	}
	respondCreated(c, toScheduleResultResponse(res))
}

func (h *SchedulerHandler) CheckConflicts(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	patientID, _ := uuid.Parse(req.PatientID)
	physicianID, _ := uuid.Parse(req.PhysicianID)

	res, err := h.svc.CheckForConflicts(c.Request.Context(), appointment.CreateAppointmentCommand{
		PatientID:    patientID,
		PhysicianID:  physicianID,
		Start:        req.Start,
		End:          req.End,
		DurationMins: req.DurationMins,
		Reason:       req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := scheduleResultResponse{
		Success:      !res.HasConflicts(),
		Conflicts:    toConflictResponses(res.Conflicts),
		Alternatives: toSlotResponses(res.Alternatives),
	}
	if res.Recommended != nil {
		rec := slotResponse{Start: res.Recommended.Start, End: res.Recommended.End, IsOptimal: res.Recommended.IsOptimal}
		payload.Recommended = &rec
	}
	respondOK(c, payload)
}

func (h *SchedulerHandler) CancelAppointment(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}
	var req cancelAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.CancelAppointment(c.Request.Context(), physicianID, appointmentID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := ""
	if !res.Changed {
		message = "appointment was already cancelled"
	}
	c.JSON(http.StatusOK, APIResponse[any]{Data: toAppointmentResponse(res.Appointment), Message: message})
}

// TransitionStatus moves an appointment through the visit lifecycle
// (in_progress, completed, no_show). Cancellation goes through its own route.
func (h *SchedulerHandler) TransitionStatus(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}
	var req transitionStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	target := appointment.Status(req.Status)
	if !target.IsValid() {
		respondError(c, http.StatusBadRequest, "unknown status: "+req.Status)
		return
	}

	a, err := h.svc.TransitionAppointmentStatus(c.Request.Context(), physicianID, appointmentID, target)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *SchedulerHandler) DeleteAppointment(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}
	if err := h.svc.DeleteAppointment(c.Request.Context(), physicianID, appointmentID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulerHandler) UpdateAppointment(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.UpdateAppointment(c.Request.Context(), physicianID, appointmentID, appointment.UpdateAppointmentCommand{
		Start:      req.Start,
		End:        req.End,
		Reason:     req.Reason,
		Notes:      req.Notes,
		RoomNumber: req.RoomNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, APIResponse[any]{Data: toScheduleResultResponse(res)})
		return
	}
	respondOK(c, toScheduleResultResponse(res))
}

func (h *SchedulerHandler) RescheduleAppointment(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}
	var req rescheduleAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.RescheduleAppointment(c.Request.Context(), physicianID, appointmentID, appointment.RescheduleAppointmentCommand{
		NewStart: req.NewStart,
		NewEnd:   req.NewEnd,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, APIResponse[any]{Data: toScheduleResultResponse(res)})
		return
	}
	respondCreated(c, toScheduleResultResponse(res))
}

// GetSchedule serves both the daily view (?date=) and an arbitrary range
// (?from=&to=). With no parameters it returns today.
func (h *SchedulerHandler) GetSchedule(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}

	if from, okFrom := parseQueryTime(c, "from", time.Time{}); okFrom && !from.IsZero() {
		to, okTo := parseQueryTime(c, "to", time.Time{})
		if !okTo {
			return
		}
		if to.IsZero() || !to.After(from) {
			respondError(c, http.StatusBadRequest, "to must be after from")
			return
		}
		appts := h.svc.GetScheduleInRange(c.Request.Context(), physicianID, from, to)
		respondOK(c, toAppointmentResponses(appts))
		return
	} else if !okFrom {
		return
	}

	date, ok := parseQueryTime(c, "date", time.Now())
	if !ok {
		return
	}
	appts := h.svc.GetDailySchedule(c.Request.Context(), physicianID, date)
	respondOK(c, toAppointmentResponses(appts))
}

func (h *SchedulerHandler) NextAvailable(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	durationMins := parseQueryInt(c, "duration_mins", 30)
	after, ok := parseQueryTime(c, "after", time.Now())
	if !ok {
		return
	}
	horizon := h.cfg.SearchHorizon
	if hours := parseQueryInt(c, "horizon_hours", 0); hours > 0 {
		horizon = time.Duration(hours) * time.Hour
	}

	start, found := h.svc.FindNextAvailableSlot(c.Request.Context(), physicianID, time.Duration(durationMins)*time.Minute, after, horizon)
	if !found {
		respondError(c, http.StatusNotFound, "no open slot within the search horizon")
		return
	}
	respondOK(c, slotResponse{Start: start, End: start.Add(time.Duration(durationMins) * time.Minute)})
}

func (h *SchedulerHandler) GetStatistics(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	stats, err := h.svc.GetPhysicianStatistics(c.Request.Context(), physicianID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toStatisticsResponse(stats))
}

func (h *SchedulerHandler) GetPatientAppointments(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}
	appts := h.svc.GetPatientAppointments(c.Request.Context(), patientID)
	respondOK(c, toAppointmentResponses(appts))
}

func (h *SchedulerHandler) AddFacilityBlock(c *gin.Context) {
	var req createBlockRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.AddFacilityUnavailableBlock(c.Request.Context(), unavailable.CreateBlockCommand{
		Start:             req.Start,
		End:               req.End,
		Description:       req.Description,
		Reason:            blockReason(req.Reason),
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, APIResponse[any]{Data: toBlockResultResponse(res)})
		return
	}
	respondCreated(c, toBlockResultResponse(res))
}

func (h *SchedulerHandler) AddPhysicianBlock(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	var req createBlockRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.AddPhysicianUnavailableBlock(c.Request.Context(), physicianID, unavailable.CreateBlockCommand{
		Start:             req.Start,
		End:               req.End,
		Description:       req.Description,
		Reason:            blockReason(req.Reason),
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, APIResponse[any]{Data: toBlockResultResponse(res)})
		return
	}
	respondCreated(c, toBlockResultResponse(res))
}

func (h *SchedulerHandler) RemovePhysicianBlock(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	blockID, ok := parseUUID(c, "blockId")
	if !ok {
		return
	}
	if err := h.svc.RemovePhysicianUnavailableBlock(c.Request.Context(), physicianID, blockID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulerHandler) RemoveFacilityBlock(c *gin.Context) {
	blockID, ok := parseUUID(c, "blockId")
	if !ok {
		return
	}
	if err := h.svc.RemoveFacilityUnavailableBlock(c.Request.Context(), blockID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulerHandler) SetAvailability(c *gin.Context) {
	physicianID, ok := parseUUID(c, "physicianId")
	if !ok {
		return
	}
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	hours := make(interval.WeeklyHours, len(req))
	for name, window := range req {
		day, known := weekdayNames[strings.ToLower(name)]
		if !known {
			respondError(c, http.StatusBadRequest, "unknown weekday: "+name)
			return
		}
		start, err := parseClock(window.Start)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid start for "+name+": must be HH:MM")
			return
		}
		end, err := parseClock(window.End)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid end for "+name+": must be HH:MM")
			return
		}
		hours[day] = interval.DayWindow{Start: start, End: end}
	}

	if err := h.svc.SetPhysicianAvailability(c.Request.Context(), physicianID, hours); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulerHandler) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if !bindJSON(c, &req) {
		return
	}
	removed := h.svc.CleanupOldAppointments(c.Request.Context(), req.OlderThan)
	respondOK(c, gin.H{"removed": removed})
}
