package interfaces

import (
	"context"

	"github.com/bjorkit/backupwatch/internal/models"
)

// FailureNotifier alerts the operators about failed backups.
type FailureNotifier interface {
	// NotifyFailures sends a single alert enumerating every failing key.
	// Called at most once per poll cycle, and only with a non-empty list.
	NotifyFailures(ctx context.Context, failures []models.Key) error
}
