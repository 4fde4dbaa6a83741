package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
)

// Page bounds a list query.
type Page struct {
	Offset int
	Limit  int
}

// TaskFilter narrows a task listing. Nil fields do not filter.
type TaskFilter struct {
	AssignedTo *uuid.UUID
	Completed  *bool
	Type       *domain.TaskType
}

// Completion is the data written when a task is completed.
type Completion struct {
	At      time.Time
	Message *string
	Image   *string
}

// TaskStore defines the interface for task persistence.
// Tasks returned by every read carry assignee and creator summaries.
type TaskStore interface {
	// Create saves a new task. The assignee is re-checked inside the write
	// so a task can never reference a missing or administrator account.
	// Returns ErrUserNotFound if the assignee is missing or an administrator.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching filter ordered by creation time, newest first.
	List(ctx context.Context, filter TaskFilter, page Page) ([]*domain.Task, error)

	// ListCompletedSince returns tasks completed at or after since,
	// most recently completed first.
	ListCompletedSince(ctx context.Context, since time.Time, page Page) ([]*domain.Task, error)

	// Complete marks the task done only if it is assigned to userID and still
	// pending, in a single conditional write.
	// Returns ErrTaskNotFound when no task with that ID is assigned to userID,
	// and domain.ErrAlreadyCompleted when it is already done.
	Complete(ctx context.Context, taskID, userID uuid.UUID, c Completion) (*domain.Task, error)

	// Stats computes system-wide task counts.
	Stats(ctx context.Context) (domain.TaskStats, error)

	// UserStats computes one assignee's task counts relative to now.
	UserStats(ctx context.Context, userID uuid.UUID, now time.Time) (domain.UserTaskStats, error)
}
