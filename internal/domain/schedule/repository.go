package schedule

import (
	"context"

	"github.com/clinicdesk/schedcore/internal/domain/unavailable"
)

// Snapshot carries the full in-memory scheduling state across the persistence
// boundary in one piece.
type Snapshot struct {
	Schedules      []*Schedule
	FacilityBlocks []*unavailable.Block
}

// Repository is the hook a durable store implements. The scheduling core
// works purely in memory and assumes no particular storage technology; it
// only loads everything at startup and hands everything back on demand.
type Repository interface {
	LoadAll(ctx context.Context) (Snapshot, error)
	SaveAll(ctx context.Context, snapshot Snapshot) error
}
