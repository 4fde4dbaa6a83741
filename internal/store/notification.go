package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
)

// NotificationStore persists the append-only notification history.
type NotificationStore interface {
	// Create records one dispatch attempt.
	// Returns ErrTaskNotFound if the task no longer exists.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByTask returns the history for one task, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Notification, error)
}
