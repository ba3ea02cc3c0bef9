package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicdesk/schedcore/config"
	"github.com/clinicdesk/schedcore/internal/booking"
	"github.com/clinicdesk/schedcore/internal/conflict"
	"github.com/clinicdesk/schedcore/internal/service"
	"github.com/clinicdesk/schedcore/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one.
var testCollector = metrics.NewCollector("schedcore_handler_test")

// 2025-03-10 is a Monday; the service clock is pinned well before it.
var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func at(day, hour, min int) time.Time {
	return time.Date(2025, time.March, day, hour, min, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	detector := conflict.NewDetector(conflict.DefaultConfig(), booking.NewFirstAvailableStrategy())
	svc := service.NewSchedulerService(detector, nil, nil, nil, zap.NewNop(), func() time.Time { return testNow })

	cfg := config.SchedulingConfig{
		MinDuration:     15 * time.Minute,
		MaxDuration:     180 * time.Minute,
		SlotGranularity: 15 * time.Minute,
		SearchHorizon:   30 * 24 * time.Hour,
		MaxAlternatives: 3,
	}
	h := NewSchedulerHandler(svc, cfg, zap.NewNop())
	return NewRouter(h, testCollector, config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         time.Hour,
	}, zap.NewNop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func scheduleBody(physicianID uuid.UUID, start, end time.Time) gin.H {
	return gin.H{
		"patient_id":   uuid.New().String(),
		"physician_id": physicianID.String(),
		"start":        start.Format(time.RFC3339),
		"end":          end.Format(time.RFC3339),
		"reason":       "consultation",
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleAppointmentEndpoint(t *testing.T) {
	drID := uuid.New()

	t.Run("created", func(t *testing.T) {
		r := newTestRouter(t)
		w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 0), at(10, 9, 30)))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Data scheduleResultResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Success)
		require.NotNil(t, resp.Data.Appointment)
		assert.Equal(t, "scheduled", resp.Data.Appointment.Status)
	})

	t.Run("conflict returns 409 with alternatives", func(t *testing.T) {
		r := newTestRouter(t)
		w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 0), at(10, 9, 30)))
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 15), at(10, 9, 45)))
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var resp struct {
			Data scheduleResultResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Success)
		assert.NotEmpty(t, resp.Data.Conflicts)
		assert.NotEmpty(t, resp.Data.Alternatives)
		require.NotNil(t, resp.Data.Recommended)
		assert.Equal(t, at(10, 9, 30), resp.Data.Recommended.Start.UTC())
	})

	t.Run("malformed physician id", func(t *testing.T) {
		r := newTestRouter(t)
		body := scheduleBody(drID, at(10, 9, 0), at(10, 9, 30))
		body["physician_id"] = "not-a-uuid"
		w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing start", func(t *testing.T) {
		r := newTestRouter(t)
		body := scheduleBody(drID, at(10, 9, 0), at(10, 9, 30))
		delete(body, "start")
		w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckConflictsEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/appointments/check", scheduleBody(drID, at(8, 9, 0), at(8, 9, 30)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data scheduleResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Success, "saturday request must report conflicts")
	assert.NotEmpty(t, resp.Data.Conflicts)
}

func TestCancelAppointmentEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 0), at(10, 9, 30)))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data scheduleResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	apptID := created.Data.Appointment.ID

	cancelPath := fmt.Sprintf("/api/v1/physicians/%s/appointments/%s/cancel", drID, apptID)
	w = doJSON(t, r, http.MethodPost, cancelPath, gin.H{"reason": "patient request"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// repeating the cancel is a no-op, flagged via the message
	w = doJSON(t, r, http.MethodPost, cancelPath, gin.H{"reason": "again"})
	require.Equal(t, http.StatusOK, w.Code)
	var repeat struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repeat))
	assert.Equal(t, "appointment was already cancelled", repeat.Message)

	t.Run("unknown appointment", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/physicians/%s/appointments/%s/cancel", drID, uuid.New())
		w := doJSON(t, r, http.MethodPost, path, gin.H{"reason": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransitionStatusEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 0), at(10, 9, 30)))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data scheduleResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/v1/physicians/%s/appointments/%s/status", drID, created.Data.Appointment.ID)

	w = doJSON(t, r, http.MethodPut, path, gin.H{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	t.Run("illegal transition", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{"status": "no_show"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{"status": "paused"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetScheduleEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 9, 0), at(10, 9, 30)))
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/physicians/%s/schedule?date=%s", drID, at(10, 0, 0).Format(time.RFC3339))
	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []appointmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)

	t.Run("range query", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/physicians/%s/schedule?from=%s&to=%s",
			drID, at(9, 0, 0).Format(time.RFC3339), at(11, 0, 0).Format(time.RFC3339))
		w := doJSON(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []appointmentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
	})

	t.Run("inverted range", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/physicians/%s/schedule?from=%s&to=%s",
			drID, at(11, 0, 0).Format(time.RFC3339), at(9, 0, 0).Format(time.RFC3339))
		w := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNextAvailableEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(10, 8, 0), at(10, 9, 0)))
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/physicians/%s/next-available?duration_mins=30&after=%s",
		drID, at(10, 8, 0).Format(time.RFC3339))
	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data slotResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, at(10, 9, 0), resp.Data.Start.UTC())
	assert.Equal(t, at(10, 9, 30), resp.Data.End.UTC())
}

func TestStatisticsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	path := fmt.Sprintf("/api/v1/physicians/%s/statistics", uuid.New())
	w := doJSON(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown physician has no statistics")
}

func TestAvailabilityEndpoint(t *testing.T) {
	drID := uuid.New()
	r := newTestRouter(t)

	path := fmt.Sprintf("/api/v1/physicians/%s/availability", drID)
	w := doJSON(t, r, http.MethodPut, path, gin.H{
		"saturday": gin.H{"start": "09:00", "end": "13:00"},
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(drID, at(8, 9, 0), at(8, 9, 30)))
	assert.Equal(t, http.StatusCreated, w.Code, "saturday is now bookable")

	t.Run("unknown weekday", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{
			"caturday": gin.H{"start": "09:00", "end": "13:00"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed clock", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{
			"monday": gin.H{"start": "9am", "end": "13:00"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFacilityBlockEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/unavailable-blocks", gin.H{
		"start":       at(17, 0, 0).Format(time.RFC3339),
		"end":         at(18, 0, 0).Format(time.RFC3339),
		"description": "st patrick's day",
		"reason":      "holiday",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the blocked day now rejects bookings for any physician
	w = doJSON(t, r, http.MethodPost, "/api/v1/appointments", scheduleBody(uuid.New(), at(17, 9, 0), at(17, 9, 30)))
	assert.Equal(t, http.StatusConflict, w.Code)

	t.Run("invalid reason", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/unavailable-blocks", gin.H{
			"start":  at(18, 0, 0).Format(time.RFC3339),
			"end":    at(19, 0, 0).Format(time.RFC3339),
			"reason": "nap",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	req.Header.Set("Origin", "https://frontdesk.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://frontdesk.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
