package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntry records one scheduling action for the trail.
type AuditEntry struct {
	Action        string
	PhysicianID   uuid.UUID
	PatientID     uuid.UUID
	AppointmentID uuid.UUID
	BlockID       uuid.UUID
	Detail        string
	OccurredAt    time.Time
}

// AuditSink receives entries; a durable store can implement it, the default
// sink just logs.
type AuditSink interface {
	Record(ctx context.Context, entry *AuditEntry) error
}

type AuditService struct {
	sink    AuditSink
	log     *zap.Logger
	entries chan *AuditEntry
	done    chan struct{}
}

const auditBufferSize = 10_000

func NewAuditService(sink AuditSink, log *zap.Logger) *AuditService {
	svc := &AuditService{
		sink:    sink,
		log:     log,
		entries: make(chan *AuditEntry, auditBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async recording.
// If the buffer is full, the entry is dropped and a warning is emitted.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	e := entry
	select {
	case s.entries <- &e:
	default:
		s.log.Warn("audit buffer full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("appointment_id", entry.AppointmentID.String()),
		)
	}
}

func (s *AuditService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.sink.Record(ctx, entry); err != nil {
			s.log.Error("failed to record audit entry", zap.Error(err))
		}
		cancel()
	}
}

// LogSink writes audit entries to the structured log. It is the default sink
// when no durable store is attached.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(_ context.Context, entry *AuditEntry) error {
	s.log.Info("audit",
		zap.String("action", entry.Action),
		zap.String("physician_id", entry.PhysicianID.String()),
		zap.String("patient_id", entry.PatientID.String()),
		zap.String("appointment_id", entry.AppointmentID.String()),
		zap.String("detail", entry.Detail),
		zap.Time("occurred_at", entry.OccurredAt),
	)
	return nil
}
