package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// MockTaskService implements service.TaskService for testing.
// Methods without a function field return Err and zero values.
type MockTaskService struct {
	CreateTaskFn         func(ctx context.Context, creatorID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error)
	ListTasksFn          func(ctx context.Context, filter service.TaskFilter, page store.Page) ([]*domain.Task, error)
	ListTasksForUserFn   func(ctx context.Context, userID uuid.UUID, filter service.TaskFilter, page store.Page) ([]*domain.Task, error)
	ListCompletedTasksFn func(ctx context.Context, days int, page store.Page) ([]*domain.Task, error)
	CompleteTaskFn       func(ctx context.Context, userID, taskID uuid.UUID, params service.CompleteTaskParams) (*domain.Task, error)
	TaskStatisticsFn     func(ctx context.Context) (domain.TaskStats, error)
	UserStatisticsFn     func(ctx context.Context, userID uuid.UUID) (domain.UserTaskStats, error)
	ListNotificationsFn  func(ctx context.Context, taskID uuid.UUID) ([]*domain.Notification, error)

	Err error
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements service.TaskService
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	creatorID uuid.UUID,
	params service.CreateTaskParams,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, creatorID, params)
	}
	return nil, m.Err
}

// ListTasks implements service.TaskService
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	filter service.TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, filter, page)
	}
	return nil, m.Err
}

// ListTasksForUser implements service.TaskService
func (m *MockTaskService) ListTasksForUser(
	ctx context.Context,
	userID uuid.UUID,
	filter service.TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	if m.ListTasksForUserFn != nil {
		return m.ListTasksForUserFn(ctx, userID, filter, page)
	}
	return nil, m.Err
}

// ListCompletedTasks implements service.TaskService
func (m *MockTaskService) ListCompletedTasks(ctx context.Context, days int, page store.Page) ([]*domain.Task, error) {
	if m.ListCompletedTasksFn != nil {
		return m.ListCompletedTasksFn(ctx, days, page)
	}
	return nil, m.Err
}

// CompleteTask implements service.TaskService
func (m *MockTaskService) CompleteTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params service.CompleteTaskParams,
) (*domain.Task, error) {
	if m.CompleteTaskFn != nil {
		return m.CompleteTaskFn(ctx, userID, taskID, params)
	}
	return nil, m.Err
}

// TaskStatistics implements service.TaskService
func (m *MockTaskService) TaskStatistics(ctx context.Context) (domain.TaskStats, error) {
	if m.TaskStatisticsFn != nil {
		return m.TaskStatisticsFn(ctx)
	}
	return domain.TaskStats{}, m.Err
}

// UserStatistics implements service.TaskService
func (m *MockTaskService) UserStatistics(ctx context.Context, userID uuid.UUID) (domain.UserTaskStats, error) {
	if m.UserStatisticsFn != nil {
		return m.UserStatisticsFn(ctx, userID)
	}
	return domain.UserTaskStats{}, m.Err
}

// ListNotifications implements service.TaskService
func (m *MockTaskService) ListNotifications(ctx context.Context, taskID uuid.UUID) ([]*domain.Notification, error) {
	if m.ListNotificationsFn != nil {
		return m.ListNotificationsFn(ctx, taskID)
	}
	return nil, m.Err
}
