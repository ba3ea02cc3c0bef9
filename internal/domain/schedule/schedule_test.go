package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/schedcore/internal/domain/appointment"
	"github.com/clinicdesk/schedcore/internal/domain/interval"
	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
)

var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// 2025-03-10 is a Monday.
func at(day, hour, min int) time.Time {
	return time.Date(2025, time.March, day, hour, min, 0, 0, time.UTC)
}

func mustAppointment(t *testing.T, physicianID uuid.UUID, start, end time.Time) *appointment.Appointment {
	t.Helper()
	a, err := appointment.New(appointment.CreateAppointmentCommand{
		PatientID:   uuid.New(),
		PhysicianID: physicianID,
		Start:       start,
		End:         end,
	}, testNow)
	require.NoError(t, err)
	return a
}

func mustBlock(t *testing.T, physicianID *uuid.UUID, reason unavailable.Reason, start, end time.Time) *unavailable.Block {
	t.Helper()
	b, err := unavailable.New(unavailable.CreateBlockCommand{
		Start:       start,
		End:         end,
		Reason:      reason,
		PhysicianID: physicianID,
	})
	require.NoError(t, err)
	return b
}

func TestTryAddAppointment(t *testing.T) {
	drID := uuid.New()

	t.Run("free slot succeeds", func(t *testing.T) {
		s := New(drID)
		ok := s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil)
		assert.True(t, ok)
		assert.Len(t, s.Appointments(), 1)
	})

	t.Run("overlapping slot rejected", func(t *testing.T) {
		s := New(drID)
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil))

		ok := s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 15), at(10, 9, 45)), nil)
		assert.False(t, ok)
		assert.Len(t, s.Appointments(), 1, "rejected insert must leave the schedule untouched")
	})

	t.Run("adjacent slot accepted", func(t *testing.T) {
		s := New(drID)
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil))

		ok := s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 30), at(10, 10, 0)), nil)
		assert.True(t, ok, "back to back appointments do not conflict")
	})

	t.Run("outside standard availability rejected", func(t *testing.T) {
		s := New(drID)
		assert.False(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 17, 0), at(10, 17, 30)), nil))
		assert.False(t, s.TryAddAppointment(mustAppointment(t, drID, at(8, 9, 0), at(8, 9, 30)), nil), "saturday is closed")
	})

	t.Run("physician block rejected", func(t *testing.T) {
		s := New(drID)
		require.Nil(t, s.AddUnavailableBlock(mustBlock(t, &drID, unavailable.ReasonLunch, at(10, 12, 0), at(10, 13, 0))))

		assert.False(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 12, 30), at(10, 13, 0)), nil))
	})

	t.Run("facility block rejected", func(t *testing.T) {
		s := New(drID)
		facility := []*unavailable.Block{mustBlock(t, nil, unavailable.ReasonHoliday, at(10, 0, 0), at(11, 0, 0))}

		assert.False(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), facility))
	})

	t.Run("cancelled appointment frees its slot", func(t *testing.T) {
		s := New(drID)
		a := mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30))
		require.True(t, s.TryAddAppointment(a, nil))
		require.NoError(t, a.Cancel("patient request", testNow))

		ok := s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil)
		assert.True(t, ok)
	})

	t.Run("insert keeps appointments ordered", func(t *testing.T) {
		s := New(drID)
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 11, 0), at(10, 11, 30)), nil))
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil))
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 10, 0), at(10, 10, 30)), nil))

		appts := s.Appointments()
		require.Len(t, appts, 3)
		assert.True(t, appts[0].Start.Before(appts[1].Start))
		assert.True(t, appts[1].Start.Before(appts[2].Start))
	})
}

func TestRemoveAppointment(t *testing.T) {
	drID := uuid.New()
	s := New(drID)
	a := mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30))
	require.True(t, s.TryAddAppointment(a, nil))

	assert.True(t, s.RemoveAppointment(a.ID))
	assert.False(t, s.RemoveAppointment(a.ID), "second removal finds nothing")
	assert.Empty(t, s.Appointments())
}

func TestAddUnavailableBlock(t *testing.T) {
	drID := uuid.New()

	t.Run("clashes with active appointment", func(t *testing.T) {
		s := New(drID)
		a := mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30))
		require.True(t, s.TryAddAppointment(a, nil))

		clashing := s.AddUnavailableBlock(mustBlock(t, &drID, unavailable.ReasonMeeting, at(10, 9, 0), at(10, 10, 0)))
		require.Len(t, clashing, 1)
		assert.Equal(t, a.ID, clashing[0].ID)
		assert.Empty(t, s.Blocks(), "rejected block must not be inserted")
	})

	t.Run("cancelled appointments do not clash", func(t *testing.T) {
		s := New(drID)
		a := mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30))
		require.True(t, s.TryAddAppointment(a, nil))
		require.NoError(t, a.Cancel("", testNow))

		clashing := s.AddUnavailableBlock(mustBlock(t, &drID, unavailable.ReasonMeeting, at(10, 9, 0), at(10, 10, 0)))
		assert.Nil(t, clashing)
		assert.Len(t, s.Blocks(), 1)
	})
}

func TestIsTimeSlotAvailable(t *testing.T) {
	drID := uuid.New()
	s := New(drID)
	require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil))

	assert.True(t, s.IsTimeSlotAvailable(at(10, 9, 30), at(10, 10, 0), nil))
	assert.False(t, s.IsTimeSlotAvailable(at(10, 9, 15), at(10, 9, 45), nil))
	assert.False(t, s.IsTimeSlotAvailable(at(10, 7, 0), at(10, 7, 30), nil), "before opening")
	assert.False(t, s.IsTimeSlotAvailable(at(10, 10, 0), at(10, 10, 0), nil), "empty interval")
}

func TestFindNextAvailableSlot(t *testing.T) {
	drID := uuid.New()

	t.Run("skips booked time", func(t *testing.T) {
		s := New(drID)
		require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 8, 0), at(10, 9, 0)), nil))

		slot, ok := s.FindNextAvailableSlot(30*time.Minute, at(10, 8, 0), 0, nil)
		require.True(t, ok)
		assert.Equal(t, at(10, 9, 0), slot)
	})

	t.Run("snaps to next opening", func(t *testing.T) {
		s := New(drID)
		slot, ok := s.FindNextAvailableSlot(30*time.Minute, at(8, 10, 0), 0, nil)
		require.True(t, ok)
		assert.Equal(t, at(10, 8, 0), slot, "saturday search lands on monday opening")
	})

	t.Run("horizon exhausted", func(t *testing.T) {
		s := New(drID)
		require.Nil(t, s.AddUnavailableBlock(mustBlock(t, &drID, unavailable.ReasonVacation, at(10, 0, 0), at(12, 0, 0))))

		_, ok := s.FindNextAvailableSlot(30*time.Minute, at(10, 8, 0), 24*time.Hour, nil)
		assert.False(t, ok)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		s := New(drID)
		_, ok := s.FindNextAvailableSlot(0, at(10, 8, 0), 0, nil)
		assert.False(t, ok)
	})
}

func TestSetAvailability(t *testing.T) {
	drID := uuid.New()
	s := New(drID)

	t.Run("rejects invalid window", func(t *testing.T) {
		err := s.SetAvailability(interval.WeeklyHours{
			time.Monday: {Start: 10 * time.Hour, End: 9 * time.Hour},
		})
		assert.ErrorIs(t, err, ErrInvalidAvailability)
	})

	t.Run("custom hours take effect", func(t *testing.T) {
		require.NoError(t, s.SetAvailability(interval.WeeklyHours{
			time.Saturday: {Start: 9 * time.Hour, End: 13 * time.Hour},
		}))

		assert.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(8, 9, 0), at(8, 9, 30)), nil))
		assert.False(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil), "monday now closed")
	})
}

func TestAvailabilitySummary(t *testing.T) {
	drID := uuid.New()
	s := New(drID)
	require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 10, 0)), nil))
	cancelled := mustAppointment(t, drID, at(10, 10, 0), at(10, 11, 0))
	require.True(t, s.TryAddAppointment(cancelled, nil))
	require.NoError(t, cancelled.Cancel("", testNow))
	require.Nil(t, s.AddUnavailableBlock(mustBlock(t, &drID, unavailable.ReasonLunch, at(10, 12, 0), at(10, 13, 0))))

	summary := s.AvailabilitySummary(at(10, 0, 0))
	assert.Equal(t, time.Hour, summary.Booked, "cancelled time is not booked")
	assert.Equal(t, time.Hour, summary.Blocked)
	assert.Equal(t, 7*time.Hour, summary.Available)
	assert.InDelta(t, 100.0/9.0, summary.Utilization, 0.01)

	t.Run("closed day", func(t *testing.T) {
		summary := s.AvailabilitySummary(at(8, 0, 0))
		assert.Zero(t, summary.Booked)
		assert.Zero(t, summary.Available)
	})
}

func TestAppointmentsInRange(t *testing.T) {
	drID := uuid.New()
	s := New(drID)
	require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30)), nil))
	require.True(t, s.TryAddAppointment(mustAppointment(t, drID, at(11, 9, 0), at(11, 9, 30)), nil))

	got := s.AppointmentsInRange(at(10, 0, 0), at(11, 0, 0))
	require.Len(t, got, 1)
	assert.Equal(t, at(10, 9, 0), got[0].Start)
}

func TestCleanupBefore(t *testing.T) {
	drID := uuid.New()
	s := New(drID)

	old := mustAppointment(t, drID, at(3, 9, 0), at(3, 9, 30))
	require.True(t, s.TryAddAppointment(old, nil))
	require.NoError(t, old.Cancel("", testNow))

	activeOld := mustAppointment(t, drID, at(3, 10, 0), at(3, 10, 30))
	require.True(t, s.TryAddAppointment(activeOld, nil))

	recent := mustAppointment(t, drID, at(10, 9, 0), at(10, 9, 30))
	require.True(t, s.TryAddAppointment(recent, nil))

	removed := s.CleanupBefore(at(5, 0, 0))
	assert.Equal(t, 1, removed)
	assert.Len(t, s.Appointments(), 2, "active and recent appointments survive cleanup")
}
