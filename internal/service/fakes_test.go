package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/events"
	"github.com/phrazzld/taskroster-api/internal/service/auth"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUserStore is an in-memory store.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	tasks *memTaskStore
	err   error
}

var _ store.UserStore = (*memUserStore)(nil)

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if u.PhoneNumber == user.PhoneNumber {
			return store.ErrPhoneExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) SetActive(_ context.Context, id uuid.UUID, active bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsAdmin {
		return store.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = at
	return nil
}

func (m *memUserStore) ListStandardWithStats(_ context.Context, page store.Page) ([]domain.UserWithStats, error) {
	m.mu.Lock()
	var out []domain.UserWithStats
	for _, u := range m.users {
		if !u.IsAdmin {
			out = append(out, domain.UserWithStats{User: *u})
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	for i := range out {
		if m.tasks != nil {
			total, done := m.tasks.countFor(out[i].ID)
			out[i].TotalTasks, out[i].CompletedTasks, out[i].PendingTasks = total, done, total-done
		}
	}
	return paginate(out, page), nil
}

func (m *memUserStore) add(username, phone string, admin bool) *domain.User {
	u, err := domain.NewUser(username, phone, "hash-"+username)
	if err != nil {
		panic(err)
	}
	u.IsAdmin = admin
	if err := m.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

// memTaskStore is an in-memory store.TaskStore. Complete holds the lock for
// the whole check-and-set, like the conditional UPDATE it stands in for.
type memTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	users *memUserStore
	err   error
}

var _ store.TaskStore = (*memTaskStore)(nil)

func newMemTaskStore(users *memUserStore) *memTaskStore {
	s := &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task), users: users}
	users.tasks = s
	return s
}

func (m *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.err != nil {
		return m.err
	}
	assignee, err := m.users.GetByID(ctx, task.AssignedTo)
	if err != nil || assignee.IsAdmin {
		return store.ErrUserNotFound
	}
	creator, err := m.users.GetByID(ctx, task.CreatedBy)
	if err != nil {
		return store.ErrInvalidEntity
	}
	task.Assignee = assignee.Summary()
	task.Creator = creator.Summary()

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) List(_ context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if filter.AssignedTo != nil && t.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.Completed != nil && t.IsCompleted != *filter.Completed {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), nil
}

func (m *memTaskStore) ListCompletedSince(_ context.Context, since time.Time, page store.Page) ([]*domain.Task, error) {
	m.mu.Lock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.IsCompleted && !t.CompletedAt.Before(since) {
			cp := *t
			out = append(out, &cp)
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })
	return paginate(out, page), nil
}

func (m *memTaskStore) Complete(_ context.Context, taskID, userID uuid.UUID, c store.Completion) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.tasks[taskID]
	if !ok || t.AssignedTo != userID {
		return nil, store.ErrTaskNotFound
	}
	if err := t.Complete(c.At, c.Message, c.Image); err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) Stats(context.Context) (domain.TaskStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.TaskStats
	for _, t := range m.tasks {
		s.Total++
		if t.IsCompleted {
			s.Completed++
		}
		if t.Type == domain.TaskTypeImmediate {
			s.Immediate++
		} else {
			s.Custom++
		}
		if t.Frequency == domain.FrequencyOneTime {
			s.OneTime++
		} else {
			s.Repeated++
		}
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}

func (m *memTaskStore) UserStats(_ context.Context, userID uuid.UUID, now time.Time) (domain.UserTaskStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.UserTaskStats
	for _, t := range m.tasks {
		if t.AssignedTo != userID {
			continue
		}
		s.Total++
		if t.IsCompleted {
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if t.CompletedOnTime() {
			s.CompletedOnTime++
		}
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}

func (m *memTaskStore) countFor(userID uuid.UUID) (total, done int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.AssignedTo == userID {
			total++
			if t.IsCompleted {
				done++
			}
		}
	}
	return total, done
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

type memNotificationStore struct {
	mu      sync.Mutex
	records []*domain.Notification
}

func (m *memNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, n)
	return nil
}

func (m *memNotificationStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.records {
		if n.TaskID == taskID {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakeImageStore records saved and removed paths.
type fakeImageStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeImageStore) Save(_ context.Context, taskID, userID uuid.UUID, file upload.File) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "uploads/task_" + taskID.String() + "_" + userID.String() + "_" + uuid.NewString() + ".png"
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImageStore) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

// stubTokens issues predictable tokens.
type stubTokens struct {
	expiresAt time.Time
	err       error
}

func (s stubTokens) GenerateToken(_ context.Context, user *domain.User) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-for-" + user.Username, s.expiresAt, nil
}

func (s stubTokens) ValidateToken(context.Context, string) (*auth.Claims, error) {
	return nil, errors.New("not implemented")
}
