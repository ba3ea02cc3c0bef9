package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clinicdesk/schedcore/config"
	"github.com/clinicdesk/schedcore/internal/booking"
	"github.com/clinicdesk/schedcore/internal/conflict"
	handler "github.com/clinicdesk/schedcore/internal/handler/v1"
	"github.com/clinicdesk/schedcore/internal/service"
	"github.com/clinicdesk/schedcore/pkg/logger"
	"github.com/clinicdesk/schedcore/pkg/metrics"
	"github.com/clinicdesk/schedcore/pkg/tracer"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector("schedcore")

	auditSvc := service.NewAuditService(service.NewLogSink(log), log)
	defer auditSvc.Shutdown()

	strategy := &booking.FirstAvailableStrategy{
		Granularity: cfg.Scheduling.SlotGranularity,
		Horizon:     cfg.Scheduling.SearchHorizon,
	}
	detector := conflict.NewDetector(conflict.Config{
		MinDuration:     cfg.Scheduling.MinDuration,
		MaxDuration:     cfg.Scheduling.MaxDuration,
		MaxAlternatives: cfg.Scheduling.MaxAlternatives,
	}, strategy)

	scheduler := service.NewSchedulerService(detector, auditSvc, collector, nil, log, nil)
	if err := scheduler.Restore(ctx); err != nil {
		log.Fatal("failed to restore schedules", zap.Error(err))
	}

	h := handler.NewSchedulerHandler(scheduler, cfg.Scheduling, log)
	router := handler.NewRouter(h, collector, cfg.CORS, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := scheduler.Persist(shutdownCtx); err != nil {
		log.Error("failed to persist schedules", zap.Error(err))
	}
}
