package interfaces

import (
	"context"
	"time"

	"github.com/bjorkit/backupwatch/internal/models"
)

// ObservationRepository is the durable catalogue of report observations.
type ObservationRepository interface {
	// InsertBatch writes all observations from one message atomically.
	// Conflicting rows are resolved by the configured policy; the count
	// of rows actually written is returned.
	InsertBatch(ctx context.Context, observations []*models.Observation) (int64, error)
	// ListSince returns observations at or after the given instant,
	// ordered by timestamp ascending.
	ListSince(ctx context.Context, since time.Time) ([]models.Observation, error)
	// ListAll returns the full history ordered by timestamp ascending.
	ListAll(ctx context.Context) ([]models.Observation, error)
	// Count returns the number of stored observations.
	Count(ctx context.Context) (int64, error)
}
