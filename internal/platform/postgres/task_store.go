package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// taskSelect reads a task joined with its assignee and creator. The task
// relation must be aliased t.
const taskSelect = `
	SELECT t.id, t.title, t.description, t.assigned_to, t.created_by, t.task_type, t.frequency,
		t.due_date, t.scheduled_date, t.repeat_interval, t.repeat_count, t.repeat_end_date,
		t.is_completed, t.completed_at, t.completion_message, t.completion_image, t.is_payment_task,
		t.created_at, t.updated_at,
		a.username, a.phone_number, c.username, c.phone_number
`

const taskJoins = `
	JOIN users a ON a.id = t.assigned_to
	JOIN users c ON c.id = t.created_by
`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// The assignee row is locked FOR SHARE for the duration of the insert so it
// cannot be removed or promoted to administrator underneath the new task.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.WithinTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var assignee domain.UserSummary
		var isAdmin bool
		err := tx.QueryRowContext(ctx,
			`SELECT id, username, phone_number, is_admin FROM users WHERE id = $1 FOR SHARE`,
			task.AssignedTo,
		).Scan(&assignee.ID, &assignee.Username, &assignee.PhoneNumber, &isAdmin)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && isAdmin) {
			return store.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock assignee: %w", err)
		}

		var creator domain.UserSummary
		err = tx.QueryRowContext(ctx,
			`SELECT id, username, phone_number FROM users WHERE id = $1`,
			task.CreatedBy,
		).Scan(&creator.ID, &creator.Username, &creator.PhoneNumber)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: creator %s", store.ErrInvalidEntity, task.CreatedBy)
		}
		if err != nil {
			return fmt.Errorf("failed to load creator: %w", err)
		}

		query := `
			INSERT INTO tasks (id, title, description, assigned_to, created_by, task_type, frequency,
				due_date, scheduled_date, repeat_interval, repeat_count, repeat_end_date,
				is_completed, completed_at, completion_message, completion_image, is_payment_task,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`
		if _, err := tx.ExecContext(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			task.AssignedTo,
			task.CreatedBy,
			string(task.Type),
			string(task.Frequency),
			task.DueDate,
			task.ScheduledDate,
			nullableUnit(task.RepeatInterval),
			nullableInt(task.RepeatCount),
			task.RepeatEndDate,
			task.IsCompleted,
			task.CompletedAt,
			task.CompletionMessage,
			task.CompletionImage,
			task.IsPaymentTask,
			task.CreatedAt,
			task.UpdatedAt,
		); err != nil {
			return MapError(err)
		}

		task.Assignee = &assignee
		task.Creator = &creator
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("task assignee missing or administrator",
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedTo.String()))
			return err
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "insert failed", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("assigned_to", task.AssignedTo.String()),
		slog.String("task_type", string(task.Type)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := taskSelect + ` FROM tasks t ` + taskJoins + ` WHERE t.id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AssignedTo != nil {
		add("t.assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.Completed != nil {
		add("t.is_completed = $%d", *filter.Completed)
	}
	if filter.Type != nil {
		add("t.task_type = $%d", string(*filter.Type))
	}

	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, page.Offset, page.Limit)
	query := taskSelect + ` FROM tasks t ` + taskJoins + where +
		fmt.Sprintf(` ORDER BY t.created_at DESC, t.id DESC OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	return s.queryTasks(ctx, "list", query, args...)
}

// ListCompletedSince implements store.TaskStore.ListCompletedSince
func (s *PostgresTaskStore) ListCompletedSince(ctx context.Context, since time.Time, page store.Page) ([]*domain.Task, error) {
	query := taskSelect + ` FROM tasks t ` + taskJoins + `
		WHERE t.is_completed = TRUE AND t.completed_at >= $1
		ORDER BY t.completed_at DESC, t.id DESC
		OFFSET $2 LIMIT $3`

	return s.queryTasks(ctx, "list_completed", query, since.UTC(), page.Offset, page.Limit)
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, store.NewStoreError("task", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	log.Debug("tasks retrieved",
		slog.String("operation", op),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Complete implements store.TaskStore.Complete.
// The pending check and the write are one statement, so of two concurrent
// completions exactly one matches a row.
func (s *PostgresTaskStore) Complete(
	ctx context.Context,
	taskID, userID uuid.UUID,
	c store.Completion,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		WITH t AS (
			UPDATE tasks
			SET is_completed = TRUE,
				completed_at = $3,
				completion_message = $4,
				completion_image = $5,
				updated_at = $3
			WHERE id = $1 AND assigned_to = $2 AND is_completed = FALSE
			RETURNING *
		)
	` + taskSelect + ` FROM t ` + taskJoins

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, userID, c.At.UTC(), c.Message, c.Image))
	if err == nil {
		log.Info("task completed",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return task, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to complete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("task", "complete", "update failed", MapError(err))
	}

	// No row matched: tell a foreign or missing task apart from a finished one.
	var completed bool
	err = s.db.QueryRowContext(ctx,
		`SELECT is_completed FROM tasks WHERE id = $1 AND assigned_to = $2`,
		taskID, userID,
	).Scan(&completed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, store.ErrTaskNotFound
	case err != nil:
		return nil, store.NewStoreError("task", "complete", "lookup failed", MapError(err))
	case completed:
		log.Debug("task already completed", slog.String("task_id", taskID.String()))
		return nil, domain.ErrAlreadyCompleted
	default:
		return nil, store.NewStoreError("task", "complete", "no row updated", store.ErrUpdateFailed)
	}
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(ctx context.Context) (domain.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COUNT(*) FILTER (WHERE task_type = 'immediate'),
			COUNT(*) FILTER (WHERE task_type = 'custom'),
			COUNT(*) FILTER (WHERE frequency = 'one_time'),
			COUNT(*) FILTER (WHERE frequency = 'repeated')
		FROM tasks
	`
	var st domain.TaskStats
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&st.Total, &st.Completed, &st.Immediate, &st.Custom, &st.OneTime, &st.Repeated,
	); err != nil {
		log.Error("failed to compute task stats", slog.String("error", err.Error()))
		return domain.TaskStats{}, store.NewStoreError("task", "stats", "query failed", MapError(err))
	}
	st.Pending = st.Total - st.Completed
	return st, nil
}

// UserStats implements store.TaskStore.UserStats
func (s *PostgresTaskStore) UserStats(ctx context.Context, userID uuid.UUID, now time.Time) (domain.UserTaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COUNT(*) FILTER (WHERE NOT is_completed AND due_date < $2),
			COUNT(*) FILTER (WHERE is_completed AND completed_at <= due_date)
		FROM tasks
		WHERE assigned_to = $1
	`
	var st domain.UserTaskStats
	if err := s.db.QueryRowContext(ctx, query, userID, now.UTC()).Scan(
		&st.Total, &st.Completed, &st.Overdue, &st.CompletedOnTime,
	); err != nil {
		log.Error("failed to compute user task stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return domain.UserTaskStats{}, store.NewStoreError("task", "user_stats", "query failed", MapError(err))
	}
	st.Pending = st.Total - st.Completed
	return st, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var taskType, frequency string
	var dueDate, scheduledDate, repeatEnd, doneAt sql.NullTime
	var repeatInterval, doneMessage, doneImage sql.NullString
	var repeatCount sql.NullInt32
	var assignee, creator domain.UserSummary

	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.CreatedBy, &taskType, &frequency,
		&dueDate, &scheduledDate, &repeatInterval, &repeatCount, &repeatEnd,
		&t.IsCompleted, &doneAt, &doneMessage, &doneImage, &t.IsPaymentTask,
		&t.CreatedAt, &t.UpdatedAt,
		&assignee.Username, &assignee.PhoneNumber, &creator.Username, &creator.PhoneNumber,
	); err != nil {
		return nil, err
	}

	t.Type = domain.TaskType(taskType)
	t.Frequency = domain.Frequency(frequency)
	t.DueDate = timePtr(dueDate)
	t.ScheduledDate = timePtr(scheduledDate)
	t.RepeatEndDate = timePtr(repeatEnd)
	t.CompletedAt = timePtr(doneAt)
	t.CompletionMessage = stringPtr(doneMessage)
	t.CompletionImage = stringPtr(doneImage)
	if repeatInterval.Valid {
		unit := domain.RepeatUnit(repeatInterval.String)
		t.RepeatInterval = &unit
	}
	if repeatCount.Valid {
		n := int(repeatCount.Int32)
		t.RepeatCount = &n
	}

	assignee.ID = t.AssignedTo
	creator.ID = t.CreatedBy
	t.Assignee = &assignee
	t.Creator = &creator
	return &t, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullableUnit(u *domain.RepeatUnit) any {
	if u == nil {
		return nil
	}
	return string(*u)
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return int64(*n)
}
