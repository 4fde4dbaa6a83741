package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/events"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/redact"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
)

// DefaultCompletedWindowDays is the look-back used when ListCompletedTasks gets zero days.
const DefaultCompletedWindowDays = 7

// TaskService runs the task lifecycle: creation and assignment by
// administrators, completion by assignees, and reporting.
type TaskService interface {
	// CreateTask validates and stores a task, then announces it to the assignee.
	CreateTask(ctx context.Context, creatorID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// ListTasks lists all tasks, newest first.
	ListTasks(ctx context.Context, filter TaskFilter, page store.Page) ([]*domain.Task, error)

	// ListTasksForUser lists the tasks assigned to a standard account, newest first.
	ListTasksForUser(ctx context.Context, userID uuid.UUID, filter TaskFilter, page store.Page) ([]*domain.Task, error)

	// ListCompletedTasks lists tasks completed in the last days days, most recent first.
	ListCompletedTasks(ctx context.Context, days int, page store.Page) ([]*domain.Task, error)

	// CompleteTask marks a task assigned to userID as done.
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID, params CompleteTaskParams) (*domain.Task, error)

	// TaskStatistics returns system-wide counts.
	TaskStatistics(ctx context.Context) (domain.TaskStats, error)

	// UserStatistics returns one standard account's counts.
	UserStatistics(ctx context.Context, userID uuid.UUID) (domain.UserTaskStats, error)

	// ListNotifications returns the notification history of a task.
	ListNotifications(ctx context.Context, taskID uuid.UUID) ([]*domain.Notification, error)
}

// CreateTaskParams are the caller-supplied fields of a new task.
type CreateTaskParams struct {
	Title          string
	Description    string
	AssignedTo     uuid.UUID
	Type           domain.TaskType
	Frequency      domain.Frequency
	DueDate        *time.Time
	ScheduledDate  *time.Time
	RepeatInterval *domain.RepeatUnit
	RepeatCount    *int
	RepeatEndDate  *time.Time
	IsPaymentTask  bool
}

// TaskFilter narrows task listings. Nil fields do not filter.
type TaskFilter struct {
	Completed *bool
	Type      *domain.TaskType
}

// CompleteTaskParams carry the optional completion note and photo.
type CompleteTaskParams struct {
	Message *string
	Image   *upload.File
}

// ImageStore persists completion photos.
type ImageStore interface {
	Save(ctx context.Context, taskID, userID uuid.UUID, f upload.File) (string, error)
	Remove(path string) error
}

type taskService struct {
	tasks         store.TaskStore
	users         store.UserStore
	notifications store.NotificationStore
	images        ImageStore
	emitter       events.EventEmitter
	timeFunc      func() time.Time
	logger        *slog.Logger
}

var _ TaskService = (*taskService)(nil)

// NewTaskService creates a TaskService. The clock is injectable for tests;
// nil means time.Now.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	notifications store.NotificationStore,
	images ImageStore,
	emitter events.EventEmitter,
	timeFunc func() time.Time,
	logger *slog.Logger,
) TaskService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &taskService{
		tasks:         tasks,
		users:         users,
		notifications: notifications,
		images:        images,
		emitter:       emitter,
		timeFunc:      timeFunc,
		logger:        logger.With("component", "task_service"),
	}
}

func (s *taskService) now() time.Time {
	return s.timeFunc().UTC()
}

func (s *taskService) CreateTask(
	ctx context.Context,
	creatorID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, NewServiceError("task", "create", err)
	}
	if !creator.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	if _, err := s.standardUser(ctx, params.AssignedTo); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("task assignee missing or administrator", "assigned_to", params.AssignedTo)
			return nil, ErrAssigneeNotFound
		}
		return nil, NewServiceError("task", "create", err)
	}

	task, err := domain.NewTask(domain.TaskSpec{
		Title:          params.Title,
		Description:    params.Description,
		AssignedTo:     params.AssignedTo,
		CreatedBy:      creator.ID,
		Type:           params.Type,
		Frequency:      params.Frequency,
		DueDate:        params.DueDate,
		ScheduledDate:  params.ScheduledDate,
		RepeatInterval: params.RepeatInterval,
		RepeatCount:    params.RepeatCount,
		RepeatEndDate:  params.RepeatEndDate,
		IsPaymentTask:  params.IsPaymentTask,
	}, s.now())
	if err != nil {
		log.Debug("rejected task specification", "error", err)
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		// The assignee can disappear or be promoted between the check and the write.
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, NewServiceError("task", "create", err)
	}

	s.announce(ctx, task)

	log.Info("task created",
		"task_id", task.ID,
		"assigned_to", task.AssignedTo,
		"task_type", task.Type,
		"frequency", task.Frequency)
	return task, nil
}

// announce emits task.assigned. Failures are logged and never reach the caller.
func (s *taskService) announce(ctx context.Context, task *domain.Task) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskAssignedEvent(task)
	if err != nil {
		log.Error("failed to build task.assigned event", "error", err, "task_id", task.ID)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task.assigned event not handled", "error", err, "task_id", task.ID)
	}
}

// standardUser loads a non-admin account; admins are reported as ErrUserNotFound.
func (s *taskService) standardUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanBeAssigned() {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *taskService) ListTasks(ctx context.Context, filter TaskFilter, page store.Page) ([]*domain.Task, error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.TaskFilter{Completed: filter.Completed, Type: filter.Type}, page)
}

func (s *taskService) ListTasksForUser(
	ctx context.Context,
	userID uuid.UUID,
	filter TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	if _, err := s.standardUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("task", "list for user", err)
	}
	return s.list(ctx, store.TaskFilter{AssignedTo: &userID, Completed: filter.Completed, Type: filter.Type}, page)
}

func (s *taskService) list(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, domain.NewValidationError("task_type", "task type must be immediate or custom")
	}
	tasks, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}

func (s *taskService) ListCompletedTasks(ctx context.Context, days int, page store.Page) ([]*domain.Task, error) {
	if days == 0 {
		days = DefaultCompletedWindowDays
	}
	if days < 1 {
		return nil, domain.NewValidationError("days", "must be at least 1")
	}
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(0, 0, -days)
	tasks, err := s.tasks.ListCompletedSince(ctx, since, page)
	if err != nil {
		return nil, NewServiceError("task", "list completed", err)
	}
	return tasks, nil
}

func (s *taskService) CompleteTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params CompleteTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("task_id", taskID, "user_id", userID)

	if err := domain.ValidateCompletionMessage(params.Message); err != nil {
		return nil, err
	}

	var imagePath *string
	if params.Image != nil {
		path, err := s.images.Save(ctx, taskID, userID, *params.Image)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrTooLarge) ||
				errors.Is(err, upload.ErrEmptyFile) {
				return nil, err
			}
			return nil, NewServiceError("task", "complete", err)
		}
		imagePath = &path
	}

	task, err := s.tasks.Complete(ctx, taskID, userID, store.Completion{
		At:      s.now(),
		Message: params.Message,
		Image:   imagePath,
	})
	if err != nil {
		s.discardImage(log, imagePath)
		switch {
		case errors.Is(err, store.ErrTaskNotFound), errors.Is(err, domain.ErrAlreadyCompleted):
			log.Debug("completion rejected", "error", err)
			return nil, err
		default:
			log.Error("failed to complete task", "error", redact.Error(err))
			return nil, NewServiceError("task", "complete", err)
		}
	}

	log.Info("task completed", "with_image", imagePath != nil)
	return task, nil
}

func (s *taskService) discardImage(log *slog.Logger, path *string) {
	if path == nil {
		return
	}
	if err := s.images.Remove(*path); err != nil {
		log.Warn("failed to remove orphaned completion image", "error", err, "path", *path)
	}
}

func (s *taskService) TaskStatistics(ctx context.Context) (domain.TaskStats, error) {
	stats, err := s.tasks.Stats(ctx)
	if err != nil {
		return domain.TaskStats{}, NewServiceError("task", "statistics", err)
	}
	return stats, nil
}

func (s *taskService) UserStatistics(ctx context.Context, userID uuid.UUID) (domain.UserTaskStats, error) {
	if _, err := s.standardUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.UserTaskStats{}, err
		}
		return domain.UserTaskStats{}, NewServiceError("task", "user statistics", err)
	}

	stats, err := s.tasks.UserStats(ctx, userID, s.now())
	if err != nil {
		return domain.UserTaskStats{}, NewServiceError("task", "user statistics", err)
	}
	return stats, nil
}

func (s *taskService) ListNotifications(ctx context.Context, taskID uuid.UUID) ([]*domain.Notification, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		return nil, NewServiceError("task", "list notifications", err)
	}

	notes, err := s.notifications.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notes, nil
}
