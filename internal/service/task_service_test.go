package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/events"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type taskFixture struct {
	svc     TaskService
	users   *memUserStore
	tasks   *memTaskStore
	notes   *memNotificationStore
	images  *fakeImageStore
	emitter *recordingEmitter
	now     time.Time
	admin   *domain.User
	bob     *domain.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{
		users:   newMemUserStore(),
		notes:   &memNotificationStore{},
		images:  &fakeImageStore{},
		emitter: &recordingEmitter{},
		now:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.tasks = newMemTaskStore(f.users)
	f.admin = f.users.add("admin", "+10000000000", true)
	f.bob = f.users.add("bob", "+10000000001", false)
	f.svc = NewTaskService(f.tasks, f.users, f.notes, f.images, f.emitter,
		func() time.Time { return f.now }, discardLogger())
	return f
}

func (f *taskFixture) immediate(title string, assignee uuid.UUID) CreateTaskParams {
	return CreateTaskParams{
		Title:      title,
		AssignedTo: assignee,
		Type:       domain.TaskTypeImmediate,
		Frequency:  domain.FrequencyOneTime,
	}
}

func (f *taskFixture) mustCreate(t *testing.T, p CreateTaskParams) *domain.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), f.admin.ID, p)
	require.NoError(t, err)
	return task
}

// TestBobScenario walks an account through assignment and completion.
func TestBobScenario(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "bob", task.Assignee.Username)
	assert.Equal(t, "admin", task.Creator.Username)

	tasks, err := f.svc.ListTasksForUser(ctx, f.bob.ID, TaskFilter{}, store.Page{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].IsCompleted)

	f.now = f.now.Add(time.Hour)
	done, err := f.svc.CompleteTask(ctx, f.bob.ID, task.ID, CompleteTaskParams{Message: ptr("done")})
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, f.now, *done.CompletedAt)
	assert.Equal(t, "done", *done.CompletionMessage)

	f.now = f.now.Add(time.Hour)
	_, err = f.svc.CompleteTask(ctx, f.bob.ID, task.ID, CompleteTaskParams{Message: ptr("again")})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, *done.CompletedAt, *stored.CompletedAt, "second completion leaves fields unchanged")
	assert.Equal(t, "done", *stored.CompletionMessage)
}

func TestCreateTaskEmitsAssignedEvent(t *testing.T) {
	f := newTaskFixture(t)

	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))

	require.Len(t, f.emitter.events, 1)
	event := f.emitter.events[0]
	assert.Equal(t, events.TypeTaskAssigned, event.Type)

	var payload events.TaskAssigned
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, task.ID, payload.Task.ID)
	assert.Equal(t, "+10000000001", payload.Task.Assignee.PhoneNumber)
}

func TestCreateTaskSurvivesEmitterFailure(t *testing.T) {
	f := newTaskFixture(t)
	f.emitter.err = errors.New("queue full")

	task, err := f.svc.CreateTask(context.Background(), f.admin.ID, f.immediate("Collect rent", f.bob.ID))
	require.NoError(t, err)
	assert.NotNil(t, task)
}

func TestCreateTaskRejections(t *testing.T) {
	f := newTaskFixture(t)
	hourAgo := f.now.Add(-time.Hour)
	tomorrow := f.now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		creator func() uuid.UUID
		params  func() CreateTaskParams
		wantErr error
	}{
		{
			name:    "assignee is an administrator",
			params:  func() CreateTaskParams { return f.immediate("t", f.admin.ID) },
			wantErr: ErrAssigneeNotFound,
		},
		{
			name:    "assignee does not exist",
			params:  func() CreateTaskParams { return f.immediate("t", uuid.New()) },
			wantErr: ErrAssigneeNotFound,
		},
		{
			name:    "creator is not an administrator",
			creator: func() uuid.UUID { return f.bob.ID },
			params:  func() CreateTaskParams { return f.immediate("t", f.bob.ID) },
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "creator does not exist",
			creator: uuid.New,
			params:  func() CreateTaskParams { return f.immediate("t", f.bob.ID) },
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "custom task scheduled an hour in the past",
			params: func() CreateTaskParams {
				p := f.immediate("t", f.bob.ID)
				p.Type = domain.TaskTypeCustom
				p.ScheduledDate = &hourAgo
				return p
			},
			wantErr: domain.ErrInvalidTaskSpec,
		},
		{
			name: "custom task without date",
			params: func() CreateTaskParams {
				p := f.immediate("t", f.bob.ID)
				p.Type = domain.TaskTypeCustom
				return p
			},
			wantErr: domain.ErrInvalidTaskSpec,
		},
		{
			name: "repeated without interval",
			params: func() CreateTaskParams {
				p := f.immediate("t", f.bob.ID)
				p.Frequency = domain.FrequencyRepeated
				return p
			},
			wantErr: domain.ErrInvalidTaskSpec,
		},
		{
			name: "repeated in days without count",
			params: func() CreateTaskParams {
				p := f.immediate("t", f.bob.ID)
				p.Frequency = domain.FrequencyRepeated
				p.RepeatInterval = ptr(domain.RepeatDays)
				return p
			},
			wantErr: domain.ErrInvalidTaskSpec,
		},
		{
			name:    "empty title",
			params:  func() CreateTaskParams { return f.immediate("  ", f.bob.ID) },
			wantErr: domain.ErrValidation,
		},
		{
			name: "repeat end before scheduled date",
			params: func() CreateTaskParams {
				p := f.immediate("t", f.bob.ID)
				p.Type = domain.TaskTypeCustom
				p.ScheduledDate = ptr(tomorrow.Add(time.Hour))
				p.RepeatEndDate = &tomorrow
				return p
			},
			wantErr: domain.ErrInvalidTaskSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := f.admin.ID
			if tt.creator != nil {
				creator = tt.creator()
			}
			task, err := f.svc.CreateTask(context.Background(), creator, tt.params())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, task)
		})
	}

	assert.Empty(t, f.emitter.events, "nothing is announced for rejected tasks")
	stats, err := f.svc.TaskStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestCreateTaskPastScheduleReason(t *testing.T) {
	f := newTaskFixture(t)
	hourAgo := f.now.Add(-time.Hour)
	p := f.immediate("t", f.bob.ID)
	p.Type = domain.TaskTypeCustom
	p.ScheduledDate = &hourAgo

	_, err := f.svc.CreateTask(context.Background(), f.admin.ID, p)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scheduled_date", verr.Field)
	assert.NotEmpty(t, verr.Reason)
}

func TestCreateValidRepeatedAndCustomTasks(t *testing.T) {
	f := newTaskFixture(t)
	tomorrow := f.now.Add(24 * time.Hour)

	weekly := f.immediate("Weekly report", f.bob.ID)
	weekly.Frequency = domain.FrequencyRepeated
	weekly.RepeatInterval = ptr(domain.RepeatWeeks)
	f.mustCreate(t, weekly)

	daily := f.immediate("Water plants", f.bob.ID)
	daily.Type = domain.TaskTypeCustom
	daily.ScheduledDate = &tomorrow
	daily.Frequency = domain.FrequencyRepeated
	daily.RepeatInterval = ptr(domain.RepeatDays)
	daily.RepeatCount = ptr(3)
	f.mustCreate(t, daily)

	stats, err := f.svc.TaskStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Repeated)
	assert.Equal(t, 1, stats.Custom)
	assert.Equal(t, 1, stats.Immediate)
}

func TestCompleteTaskScoping(t *testing.T) {
	f := newTaskFixture(t)
	carol := f.users.add("carol", "+10000000003", false)
	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))

	_, err := f.svc.CompleteTask(context.Background(), carol.ID, task.ID, CompleteTaskParams{})
	assert.ErrorIs(t, err, store.ErrTaskNotFound, "tasks of other users look missing")

	_, err = f.svc.CompleteTask(context.Background(), f.bob.ID, uuid.New(), CompleteTaskParams{})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	long := string(bytes.Repeat([]byte("x"), domain.MaxCompletionMessageLength+1))
	_, err = f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{Message: &long})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompleteTaskWithImage(t *testing.T) {
	f := newTaskFixture(t)
	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))
	image := &upload.File{Name: "receipt.png", Reader: bytes.NewReader([]byte("png"))}

	done, err := f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{Image: image})
	require.NoError(t, err)
	require.Len(t, f.images.saved, 1)
	require.NotNil(t, done.CompletionImage)
	assert.Equal(t, f.images.saved[0], *done.CompletionImage)
	assert.Empty(t, f.images.removed)

	_, err = f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{Image: image})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	require.Len(t, f.images.saved, 2)
	assert.Equal(t, []string{f.images.saved[1]}, f.images.removed, "losing image is removed")
}

func TestCompleteTaskRejectedImage(t *testing.T) {
	f := newTaskFixture(t)
	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))
	f.images.saveErr = upload.ErrUnsupportedType

	_, err := f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{
		Image: &upload.File{Name: "notes.txt", Reader: bytes.NewReader([]byte("hi"))},
	})
	assert.ErrorIs(t, err, upload.ErrUnsupportedType)

	stored, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
}

// TestConcurrentCompletionHasOneWinner races completions of one pending task.
func TestConcurrentCompletionHasOneWinner(t *testing.T) {
	f := newTaskFixture(t)
	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))

	const racers = 16
	var wg sync.WaitGroup
	results := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{})
		}(i)
	}
	close(start)
	wg.Wait()

	var wins, already int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyCompleted):
			already++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, already)
}

func TestListTasks(t *testing.T) {
	f := newTaskFixture(t)
	carol := f.users.add("carol", "+10000000003", false)
	for i, assignee := range []uuid.UUID{f.bob.ID, carol.ID, f.bob.ID} {
		f.now = f.now.Add(time.Minute)
		task := f.mustCreate(t, f.immediate("task", assignee))
		if i == 0 {
			_, err := f.svc.CompleteTask(context.Background(), f.bob.ID, task.ID, CompleteTaskParams{})
			require.NoError(t, err)
		}
	}
	ctx := context.Background()

	all, err := f.svc.ListTasks(ctx, TaskFilter{}, store.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt), "newest first")

	pending, err := f.svc.ListTasks(ctx, TaskFilter{Completed: ptr(false)}, store.Page{})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	custom, err := f.svc.ListTasks(ctx, TaskFilter{Type: ptr(domain.TaskTypeCustom)}, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, custom)

	paged, err := f.svc.ListTasks(ctx, TaskFilter{}, store.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, all[1].ID, paged[0].ID)

	bobs, err := f.svc.ListTasksForUser(ctx, f.bob.ID, TaskFilter{}, store.Page{})
	require.NoError(t, err)
	assert.Len(t, bobs, 2)

	_, err = f.svc.ListTasksForUser(ctx, f.admin.ID, TaskFilter{}, store.Page{})
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = f.svc.ListTasksForUser(ctx, uuid.New(), TaskFilter{}, store.Page{})
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	for _, page := range []store.Page{{Limit: -1}, {Limit: 1001}, {Offset: -1}} {
		_, err = f.svc.ListTasks(ctx, TaskFilter{}, page)
		assert.ErrorIs(t, err, domain.ErrValidation, "page %+v", page)
	}

	_, err = f.svc.ListTasks(ctx, TaskFilter{Type: ptr(domain.TaskType("weekly"))}, store.Page{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListCompletedTasks(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	old := f.mustCreate(t, f.immediate("old", f.bob.ID))
	recent := f.mustCreate(t, f.immediate("recent", f.bob.ID))
	f.mustCreate(t, f.immediate("pending", f.bob.ID))

	_, err := f.svc.CompleteTask(ctx, f.bob.ID, old.ID, CompleteTaskParams{})
	require.NoError(t, err)
	f.now = f.now.Add(10 * 24 * time.Hour)
	_, err = f.svc.CompleteTask(ctx, f.bob.ID, recent.ID, CompleteTaskParams{})
	require.NoError(t, err)

	week, err := f.svc.ListCompletedTasks(ctx, 0, store.Page{})
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, recent.ID, week[0].ID)

	month, err := f.svc.ListCompletedTasks(ctx, 30, store.Page{})
	require.NoError(t, err)
	require.Len(t, month, 2)
	assert.Equal(t, recent.ID, month[0].ID, "most recently completed first")

	_, err = f.svc.ListCompletedTasks(ctx, -1, store.Page{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatistics(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	due := f.now.Add(2 * time.Hour)

	onTime := f.immediate("on time", f.bob.ID)
	onTime.DueDate = &due
	a := f.mustCreate(t, onTime)

	late := f.immediate("late", f.bob.ID)
	late.DueDate = &due
	b := f.mustCreate(t, late)

	overdue := f.immediate("overdue", f.bob.ID)
	overdue.DueDate = &due
	f.mustCreate(t, overdue)

	f.mustCreate(t, f.immediate("no due date", f.bob.ID))

	f.now = due.Add(-time.Minute)
	_, err := f.svc.CompleteTask(ctx, f.bob.ID, a.ID, CompleteTaskParams{})
	require.NoError(t, err)
	f.now = due.Add(time.Hour)
	_, err = f.svc.CompleteTask(ctx, f.bob.ID, b.ID, CompleteTaskParams{})
	require.NoError(t, err)

	stats, err := f.svc.TaskStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)

	us, err := f.svc.UserStatistics(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserTaskStats{
		Total:           4,
		Completed:       2,
		Pending:         2,
		Overdue:         1,
		CompletedOnTime: 1,
	}, us)

	_, err = f.svc.UserStatistics(ctx, f.admin.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestListNotifications(t *testing.T) {
	f := newTaskFixture(t)
	task := f.mustCreate(t, f.immediate("Collect rent", f.bob.ID))
	require.NoError(t, f.notes.Create(context.Background(),
		domain.NewNotification(task.ID, "+10000000001", "msg", true, f.now)))

	notes, err := f.svc.ListNotifications(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationSent, notes[0].Status)

	_, err = f.svc.ListNotifications(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	f := newTaskFixture(t)
	boom := errors.New("connection reset")
	f.tasks.err = boom

	_, err := f.svc.CreateTask(context.Background(), f.admin.ID, f.immediate("t", f.bob.ID))
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, boom)

	_, err = f.svc.ListTasks(context.Background(), TaskFilter{}, store.Page{})
	assert.ErrorIs(t, err, boom)
}
