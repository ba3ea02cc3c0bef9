package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicdesk/schedcore/config"
	"github.com/clinicdesk/schedcore/pkg/metrics"
)

// NewRouter assembles the full HTTP surface of the scheduling service.
func NewRouter(h *SchedulerHandler, collector *metrics.Collector, corsCfg config.CORSConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(Metrics(collector))
	r.Use(CORS(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	{
		api.POST("/appointments", h.ScheduleAppointment)
		api.POST("/appointments/check", h.CheckConflicts)
		api.POST("/appointments/cleanup", h.Cleanup)

		api.POST("/physicians/:physicianId/appointments/:appointmentId/cancel", h.CancelAppointment)
		api.POST("/physicians/:physicianId/appointments/:appointmentId/reschedule", h.RescheduleAppointment)
		api.PUT("/physicians/:physicianId/appointments/:appointmentId/status", h.TransitionStatus)
		api.PATCH("/physicians/:physicianId/appointments/:appointmentId", h.UpdateAppointment)
		api.DELETE("/physicians/:physicianId/appointments/:appointmentId", h.DeleteAppointment)

		api.GET("/physicians/:physicianId/schedule", h.GetSchedule)
		api.GET("/physicians/:physicianId/next-available", h.NextAvailable)
		api.GET("/physicians/:physicianId/statistics", h.GetStatistics)
		api.PUT("/physicians/:physicianId/availability", h.SetAvailability)
		api.POST("/physicians/:physicianId/unavailable-blocks", h.AddPhysicianBlock)
		api.DELETE("/physicians/:physicianId/unavailable-blocks/:blockId", h.RemovePhysicianBlock)

		api.POST("/unavailable-blocks", h.AddFacilityBlock)
		api.DELETE("/unavailable-blocks/:blockId", h.RemoveFacilityBlock)

		api.GET("/patients/:patientId/appointments", h.GetPatientAppointments)
	}

	return r
}
