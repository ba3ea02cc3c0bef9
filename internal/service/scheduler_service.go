package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/clinicdesk/schedcore/internal/booking"
	"github.com/clinicdesk/schedcore/internal/conflict"
	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/interval"
	"github.com/clinicdesk/schedcore/internal/domain/schedule"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
	"github.com/clinicdesk/schedcore/pkg/metrics"
)

// SchedulerService is the single externally callable scheduling surface. It
// exclusively owns the physician schedules; every conflict check and the
// insert it guards run inside one critical section, so a successful add is
// never later found to be double-booked.
type SchedulerService struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]*schedule.Schedule
	facility  []*unavailable.Block

	detector  *conflict.Detector
	auditSvc  *AuditService
	collector *metrics.Collector
	repo      schedule.Repository
	log       *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewSchedulerService(
	detector *conflict.Detector,
	auditSvc *AuditService,
	collector *metrics.Collector,
	repo schedule.Repository,
	log *zap.Logger,
	now func() time.Time,
) *SchedulerService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SchedulerService{
		schedules: make(map[uuid.UUID]*schedule.Schedule),
		detector:  detector,
		auditSvc:  auditSvc,
		collector: collector,
		repo:      repo,
		log:       log,
		tracer:    otel.Tracer("schedcore/scheduler"),
		now:       now,
	}
}

// ScheduleResult reports the outcome of a booking-shaped operation. On
// conflict, Success is false and Alternatives carries ranked replacement
// slots; nothing was mutated.
type ScheduleResult struct {
	Success      bool
	Appointment  *appointment.Appointment
	Conflicts    []conflict.Conflict
	Alternatives []booking.Slot
	Recommended  *booking.Slot
}

type CancelResult struct {
	Appointment *appointment.Appointment
	// Changed is false when the appointment was already cancelled; the call
	// is then a no-op rather than a failure.
	Changed bool
}

// BlockResult reports an unavailable-block insertion. The insert is rejected
// when it would retroactively overlap booked appointments; those are
// returned so the caller can resolve them first.
type BlockResult struct {
	Success     bool
	Block       *unavailable.Block
	Conflicting []*appointment.Appointment
}

// Statistics aggregates one physician's appointment load.
type Statistics struct {
	PhysicianID      uuid.UUID
	Total            int
	ByStatus         map[appointment.Status]int
	Upcoming         int
	NoShowRate       float64
	CancellationRate float64
	Today            schedule.DaySummary
}

// ScheduleAppointment validates the command, checks conflicts and inserts
// atomically. Conflicting requests come back with alternatives instead of an
// error; validation problems are errors.
func (s *SchedulerService) ScheduleAppointment(ctx context.Context, cmd appointment.CreateAppointmentCommand) (*ScheduleResult, error) {
	ctx, span := s.tracer.Start(ctx, "SchedulerService.ScheduleAppointment")
	defer span.End()

	a, err := appointment.New(cmd, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sched := s.scheduleForLocked(a.PhysicianID)
	check := s.detector.Check(conflict.Request{Proposed: a, Schedule: sched, Facility: s.facility})
	if check.HasConflicts() {
		return s.conflictResultLocked(check, sched), nil
	}

	if !sched.TryAddAppointment(a, s.facility) {
		s.log.Error("schedule rejected appointment that passed conflict checks",
			zap.String("physician_id", a.PhysicianID.String()),
			zap.Time("start", a.Start),
		)
		return nil, ErrScheduleInsertFailed
	}

	s.countAppointment(appointment.StatusScheduled)
	s.audit(ctx, AuditEntry{
		Action:        "schedule",
		PhysicianID:   a.PhysicianID,
		PatientID:     a.PatientID,
		AppointmentID: a.ID,
		OccurredAt:    s.now(),
	})
	s.log.Info("appointment scheduled",
		zap.String("appointment_id", a.ID.String()),
		zap.String("physician_id", a.PhysicianID.String()),
		zap.Time("start", a.Start),
	)
	return &ScheduleResult{Success: true, Appointment: a.Clone()}, nil
}

// CancelAppointment is idempotent: cancelling an already-cancelled
// appointment reports Changed=false without touching state.
func (s *SchedulerService) CancelAppointment(ctx context.Context, physicianID, appointmentID uuid.UUID, reason string) (*CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil, schedule.ErrPhysicianNotFound
	}
	a, ok := sched.FindAppointment(appointmentID)
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if a.Status == appointment.StatusCancelled {
		return &CancelResult{Appointment: a.Clone(), Changed: false}, nil
	}

	now := s.now()
	if a.Status == appointment.StatusScheduled && !a.Start.After(now) {
		return nil, appointment.ErrNotCancellable
	}
	if err := a.Cancel(reason, now); err != nil {
		return nil, appointment.ErrNotCancellable
	}

	s.countAppointment(appointment.StatusCancelled)
	s.audit(ctx, AuditEntry{
		Action:        "cancel",
		PhysicianID:   physicianID,
		PatientID:     a.PatientID,
		AppointmentID: appointmentID,
		Detail:        reason,
		OccurredAt:    now,
	})
	return &CancelResult{Appointment: a.Clone(), Changed: true}, nil
}

// TransitionAppointmentStatus drives the visit lifecycle: begin, complete and
// no-show flow through here. Cancellation has its own entry point because it
// records a reason.
func (s *SchedulerService) TransitionAppointmentStatus(ctx context.Context, physicianID, appointmentID uuid.UUID, target appointment.Status) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil, schedule.ErrPhysicianNotFound
	}
	a, ok := sched.FindAppointment(appointmentID)
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}

	now := s.now()
	var err error
	switch target {
	case appointment.StatusInProgress:
		err = a.Begin(now)
	case appointment.StatusCompleted:
		err = a.Complete(now)
	case appointment.StatusNoShow:
		err = a.MarkNoShow(now)
	default:
		return nil, appointment.ErrInvalidStatusTransition
	}
	if err != nil {
		return nil, err
	}

	s.countAppointment(target)
	s.audit(ctx, AuditEntry{
		Action:        "status_" + string(target),
		PhysicianID:   physicianID,
		PatientID:     a.PatientID,
		AppointmentID: appointmentID,
		OccurredAt:    now,
	})
	return a.Clone(), nil
}

// DeleteAppointment removes the record outright, freeing its slot.
func (s *SchedulerService) DeleteAppointment(ctx context.Context, physicianID, appointmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return schedule.ErrPhysicianNotFound
	}
	if !sched.RemoveAppointment(appointmentID) {
		return appointment.ErrAppointmentNotFound
	}
	s.audit(ctx, AuditEntry{
		Action:        "delete",
		PhysicianID:   physicianID,
		AppointmentID: appointmentID,
		OccurredAt:    s.now(),
	})
	return nil
}

// UpdateAppointment applies partial changes. Metadata-only updates are always
// allowed; moving the interval re-runs conflict detection excluding the
// appointment's own slot, and the original stays untouched unless the checked
// re-insert succeeds.
func (s *SchedulerService) UpdateAppointment(ctx context.Context, physicianID, appointmentID uuid.UUID, cmd appointment.UpdateAppointmentCommand) (*ScheduleResult, error) {
	ctx, span := s.tracer.Start(ctx, "SchedulerService.UpdateAppointment")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil, schedule.ErrPhysicianNotFound
	}
	a, ok := sched.FindAppointment(appointmentID)
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}

	now := s.now()
	if cmd.Start == nil && cmd.End == nil {
		applyMetadata(a, cmd)
		a.ModifiedAt = &now
		return &ScheduleResult{Success: true, Appointment: a.Clone()}, nil
	}

	if a.Status.IsTerminal() {
		return nil, appointment.ErrInvalidStatusTransition
	}

	candidate := a.Clone()
	if cmd.Start != nil {
		candidate.Start = *cmd.Start
	}
	if cmd.End != nil {
		candidate.End = *cmd.End
	}
	applyMetadata(candidate, cmd)
	candidate.ModifiedAt = &now
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	check := s.detector.Check(conflict.Request{
		Proposed:  candidate,
		Schedule:  sched,
		Facility:  s.facility,
		ExcludeID: a.ID,
	})
	if check.HasConflicts() {
		return s.conflictResultLocked(check, sched), nil
	}

	sched.RemoveAppointment(a.ID)
	if !sched.TryAddAppointment(candidate, s.facility) {
		// Put the original back; its old slot just vacated so this cannot fail.
		if !sched.TryAddAppointment(a, s.facility) {
			s.log.Error("failed to restore appointment after rejected update",
				zap.String("appointment_id", a.ID.String()))
		}
		return nil, ErrScheduleInsertFailed
	}

	s.audit(ctx, AuditEntry{
		Action:        "update",
		PhysicianID:   physicianID,
		PatientID:     candidate.PatientID,
		AppointmentID: appointmentID,
		OccurredAt:    now,
	})
	return &ScheduleResult{Success: true, Appointment: candidate.Clone()}, nil
}

// RescheduleAppointment retires the original appointment and books a
// replacement carrying RescheduledFromID. On conflict the original keeps its
// slot and status.
func (s *SchedulerService) RescheduleAppointment(ctx context.Context, physicianID, appointmentID uuid.UUID, cmd appointment.RescheduleAppointmentCommand) (*ScheduleResult, error) {
	ctx, span := s.tracer.Start(ctx, "SchedulerService.RescheduleAppointment")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil, schedule.ErrPhysicianNotFound
	}
	orig, ok := sched.FindAppointment(appointmentID)
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}

	now := s.now()
	if !orig.CanReschedule(now) {
		return nil, appointment.ErrNotReschedulable
	}

	replacement, err := appointment.New(appointment.CreateAppointmentCommand{
		PatientID:   orig.PatientID,
		PhysicianID: orig.PhysicianID,
		Start:       cmd.NewStart,
		End:         cmd.NewEnd,
		Reason:      orig.Reason,
		Notes:       orig.Notes,
		RoomNumber:  orig.RoomNumber,
	}, now)
	if err != nil {
		return nil, err
	}
	fromID := orig.ID
	replacement.RescheduledFromID = &fromID

	check := s.detector.Check(conflict.Request{
		Proposed:  replacement,
		Schedule:  sched,
		Facility:  s.facility,
		ExcludeID: orig.ID,
	})
	if check.HasConflicts() {
		return s.conflictResultLocked(check, sched), nil
	}

	if err := orig.MarkRescheduled(now); err != nil {
		return nil, err
	}
	if !sched.TryAddAppointment(replacement, s.facility) {
		orig.Status = appointment.StatusScheduled
		return nil, ErrScheduleInsertFailed
	}

	s.countAppointment(appointment.StatusRescheduled)
	s.audit(ctx, AuditEntry{
		Action:        "reschedule",
		PhysicianID:   physicianID,
		PatientID:     replacement.PatientID,
		AppointmentID: replacement.ID,
		Detail:        fmt.Sprintf("from %s", appointmentID),
		OccurredAt:    now,
	})
	return &ScheduleResult{Success: true, Appointment: replacement.Clone()}, nil
}

// CheckForConflicts runs detection without mutating anything. Unknown
// physicians are judged against an empty default schedule.
func (s *SchedulerService) CheckForConflicts(ctx context.Context, cmd appointment.CreateAppointmentCommand) (*conflict.DetectionResult, error) {
	a, err := appointment.New(cmd, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[a.PhysicianID]
	if !ok {
		sched = schedule.New(a.PhysicianID)
	}
	check := s.detector.Check(conflict.Request{Proposed: a, Schedule: sched, Facility: s.facility})
	result := s.detector.FindAlternatives(check, sched, s.facility)
	return &result, nil
}

// FindNextAvailableSlot returns the earliest open start at or after the given
// time. The boolean is false when nothing fits inside the horizon.
func (s *SchedulerService) FindNextAvailableSlot(ctx context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time, horizon time.Duration) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched := s.scheduleForLocked(physicianID)
	start, found := sched.FindNextAvailableSlot(duration, after, horizon, s.facility)
	if s.collector != nil {
		outcome := "found"
		if !found {
			outcome = "none"
		}
		s.collector.SlotSearchesTotal.WithLabelValues(outcome).Inc()
	}
	return start, found
}

// GetDailySchedule returns the physician's appointments overlapping the given
// date, ordered by start.
func (s *SchedulerService) GetDailySchedule(ctx context.Context, physicianID uuid.UUID, date time.Time) []*appointment.Appointment {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.GetScheduleInRange(ctx, physicianID, day, day.AddDate(0, 0, 1))
}

// GetScheduleInRange returns cloned appointments overlapping [start, end).
func (s *SchedulerService) GetScheduleInRange(ctx context.Context, physicianID uuid.UUID, start, end time.Time) []*appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil
	}
	var out []*appointment.Appointment
	for _, a := range sched.AppointmentsInRange(start, end) {
		out = append(out, a.Clone())
	}
	return out
}

// GetPatientAppointments scans every physician schedule for the patient.
func (s *SchedulerService) GetPatientAppointments(ctx context.Context, patientID uuid.UUID) []*appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*appointment.Appointment
	for _, sched := range s.schedules {
		for _, a := range sched.Appointments() {
			if a.PatientID == patientID {
				out = append(out, a.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// AddFacilityUnavailableBlock inserts a block that applies to every
// physician. It is rejected when booked appointments already occupy the time.
func (s *SchedulerService) AddFacilityUnavailableBlock(ctx context.Context, cmd unavailable.CreateBlockCommand) (*BlockResult, error) {
	cmd.PhysicianID = nil
	b, err := unavailable.New(cmd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var clashing []*appointment.Appointment
	for _, sched := range s.schedules {
		for _, a := range sched.Appointments() {
			if a.IsActive() && a.Overlaps(b.Interval) {
				clashing = append(clashing, a.Clone())
			}
		}
	}
	if len(clashing) > 0 {
		sort.Slice(clashing, func(i, j int) bool { return clashing[i].Start.Before(clashing[j].Start) })
		return &BlockResult{Success: false, Block: b, Conflicting: clashing}, nil
	}

	s.facility = append(s.facility, b)
	s.countBlock("facility")
	s.audit(ctx, AuditEntry{Action: "block_facility", BlockID: b.ID, OccurredAt: s.now()})
	return &BlockResult{Success: true, Block: b}, nil
}

// AddPhysicianUnavailableBlock inserts a physician-scoped block, rejecting it
// when the physician already has booked appointments in the way.
func (s *SchedulerService) AddPhysicianUnavailableBlock(ctx context.Context, physicianID uuid.UUID, cmd unavailable.CreateBlockCommand) (*BlockResult, error) {
	cmd.PhysicianID = &physicianID
	b, err := unavailable.New(cmd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sched := s.scheduleForLocked(physicianID)
	if clashing := sched.AddUnavailableBlock(b); len(clashing) > 0 {
		cloned := make([]*appointment.Appointment, len(clashing))
		for i, a := range clashing {
			cloned[i] = a.Clone()
		}
		return &BlockResult{Success: false, Block: b, Conflicting: cloned}, nil
	}

	s.countBlock("physician")
	s.audit(ctx, AuditEntry{Action: "block_physician", PhysicianID: physicianID, BlockID: b.ID, OccurredAt: s.now()})
	return &BlockResult{Success: true, Block: b}, nil
}

// RemovePhysicianUnavailableBlock deletes a physician-scoped block, reopening
// its time.
func (s *SchedulerService) RemovePhysicianUnavailableBlock(ctx context.Context, physicianID, blockID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return schedule.ErrPhysicianNotFound
	}
	if !sched.RemoveUnavailableBlock(blockID) {
		return unavailable.ErrBlockNotFound
	}
	s.audit(ctx, AuditEntry{Action: "unblock_physician", PhysicianID: physicianID, BlockID: blockID, OccurredAt: s.now()})
	return nil
}

// RemoveFacilityUnavailableBlock deletes a facility-wide block.
func (s *SchedulerService) RemoveFacilityUnavailableBlock(ctx context.Context, blockID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.facility {
		if b.ID == blockID {
			s.facility = append(s.facility[:i], s.facility[i+1:]...)
			s.audit(ctx, AuditEntry{Action: "unblock_facility", BlockID: blockID, OccurredAt: s.now()})
			return nil
		}
	}
	return unavailable.ErrBlockNotFound
}

// SetPhysicianAvailability replaces the physician's standard weekly window.
// Invalid windows are reported per weekday so the caller can fix all of them
// at once.
func (s *SchedulerService) SetPhysicianAvailability(ctx context.Context, physicianID uuid.UUID, hours interval.WeeklyHours) error {
	var fields []string
	for day, window := range hours {
		if !window.Valid() {
			fields = append(fields, strings.ToLower(day.String())+": end must be after start and within the day")
		}
	}
	if len(fields) > 0 {
		sort.Strings(fields)
		return newValidationError(fields...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sched := s.scheduleForLocked(physicianID)
	if err := sched.SetAvailability(hours); err != nil {
		return err
	}
	s.audit(ctx, AuditEntry{Action: "set_availability", PhysicianID: physicianID, OccurredAt: s.now()})
	return nil
}

func (s *SchedulerService) GetPhysicianStatistics(ctx context.Context, physicianID uuid.UUID) (*Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[physicianID]
	if !ok {
		return nil, schedule.ErrPhysicianNotFound
	}

	now := s.now()
	stats := &Statistics{
		PhysicianID: physicianID,
		ByStatus:    make(map[appointment.Status]int),
		Today:       sched.AvailabilitySummary(now),
	}
	for _, a := range sched.Appointments() {
		stats.Total++
		stats.ByStatus[a.Status]++
		if a.IsActive() && a.Start.After(now) {
			stats.Upcoming++
		}
	}
	if seen := stats.ByStatus[appointment.StatusCompleted] + stats.ByStatus[appointment.StatusNoShow]; seen > 0 {
		stats.NoShowRate = float64(stats.ByStatus[appointment.StatusNoShow]) / float64(seen)
	}
	if stats.Total > 0 {
		stats.CancellationRate = float64(stats.ByStatus[appointment.StatusCancelled]) / float64(stats.Total)
	}
	if s.collector != nil {
		s.collector.UtilizationPercent.WithLabelValues(physicianID.String()).Set(stats.Today.Utilization)
	}
	return stats, nil
}

// CleanupOldAppointments drops terminal appointments that ended before the
// cutoff, across all physicians, and reports how many were removed.
func (s *SchedulerService) CleanupOldAppointments(ctx context.Context, olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, sched := range s.schedules {
		removed += sched.CleanupBefore(olderThan)
	}
	if removed > 0 {
		s.audit(ctx, AuditEntry{
			Action:     "cleanup",
			Detail:     fmt.Sprintf("removed %d appointments before %s", removed, olderThan.Format(time.RFC3339)),
			OccurredAt: s.now(),
		})
	}
	return removed
}

// Restore loads the full scheduling state from the attached repository, if
// one was configured.
func (s *SchedulerService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	snapshot, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules = make(map[uuid.UUID]*schedule.Schedule, len(snapshot.Schedules))
	for _, sched := range snapshot.Schedules {
		s.schedules[sched.PhysicianID()] = sched
	}
	s.facility = snapshot.FacilityBlocks
	return nil
}

// Persist hands the full state to the attached repository, if one was
// configured.
func (s *SchedulerService) Persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	s.mu.RLock()
	snapshot := schedule.Snapshot{FacilityBlocks: s.facility}
	for _, sched := range s.schedules {
		snapshot.Schedules = append(snapshot.Schedules, sched)
	}
	s.mu.RUnlock()

	if err := s.repo.SaveAll(ctx, snapshot); err != nil {
		return fmt.Errorf("saving schedules: %w", err)
	}
	return nil
}

func (s *SchedulerService) scheduleForLocked(physicianID uuid.UUID) *schedule.Schedule {
	sched, ok := s.schedules[physicianID]
	if !ok {
		sched = schedule.New(physicianID)
		s.schedules[physicianID] = sched
	}
	return sched
}

func (s *SchedulerService) conflictResultLocked(check conflict.CheckResult, sched *schedule.Schedule) *ScheduleResult {
	detection := s.detector.FindAlternatives(check, sched, s.facility)
	if s.collector != nil {
		for _, c := range detection.Conflicts {
			s.collector.ConflictsTotal.WithLabelValues(string(c.Type)).Inc()
		}
		if n := len(detection.Alternatives); n > 0 {
			s.collector.AlternativesSuggested.Add(float64(n))
		}
	}
	s.log.Info("appointment request conflicts",
		zap.String("physician_id", sched.PhysicianID().String()),
		zap.Int("conflicts", len(detection.Conflicts)),
		zap.Int("alternatives", len(detection.Alternatives)),
	)
	return &ScheduleResult{
		Success:      false,
		Appointment:  check.Proposed.Clone(),
		Conflicts:    detection.Conflicts,
		Alternatives: detection.Alternatives,
		Recommended:  detection.Recommended,
	}
}

func (s *SchedulerService) countAppointment(status appointment.Status) {
	if s.collector != nil {
		s.collector.AppointmentsTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *SchedulerService) countBlock(scope string) {
	if s.collector != nil {
		s.collector.UnavailableBlocksTotal.WithLabelValues(scope).Inc()
	}
}

func (s *SchedulerService) audit(ctx context.Context, entry AuditEntry) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.LogAsync(ctx, entry)
	if s.collector != nil {
		s.collector.AuditEntriesTotal.Inc()
	}
}

func applyMetadata(a *appointment.Appointment, cmd appointment.UpdateAppointmentCommand) {
	if cmd.Reason != nil {
		a.Reason = *cmd.Reason
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	if cmd.RoomNumber != nil {
		v := *cmd.RoomNumber
		a.RoomNumber = &v
	}
}
