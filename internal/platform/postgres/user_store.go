package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/store"
)

const userColumns = `id, username, hashed_password, phone_number, is_active, is_admin,
	is_payment_collector, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.HashedPassword,
		user.PhoneNumber,
		user.IsActive,
		user.IsAdmin,
		user.IsPaymentCollector,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("duplicate account rejected",
				slog.String("error", mapped.Error()),
				slog.String("username", user.Username))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", mapped)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.Bool("is_admin", user.IsAdmin))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, query, id, slog.String("user_id", id.String()))
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.getOne(ctx, query, username, slog.String("username", username))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any, attr slog.Attr) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", attr)
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()), attr)
		return nil, store.NewStoreError("user", "get", "query failed", MapError(err))
	}
	return user, nil
}

// SetActive implements store.UserStore.SetActive
func (s *PostgresUserStore) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET is_active = $2, updated_at = $3
		WHERE id = $1 AND is_admin = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, id, active, at.UTC())
	if err != nil {
		log.Error("failed to update user status",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "set_active", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user status updated",
		slog.String("user_id", id.String()),
		slog.Bool("is_active", active))
	return nil
}

// ListStandardWithStats implements store.UserStore.ListStandardWithStats
func (s *PostgresUserStore) ListStandardWithStats(ctx context.Context, page store.Page) ([]domain.UserWithStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT u.id, u.username, u.hashed_password, u.phone_number, u.is_active, u.is_admin,
			u.is_payment_collector, u.created_at, u.updated_at,
			COUNT(t.id) AS total_tasks,
			COUNT(t.id) FILTER (WHERE t.is_completed) AS completed_tasks
		FROM users u
		LEFT JOIN tasks t ON t.assigned_to = u.id
		WHERE u.is_admin = FALSE
		GROUP BY u.id
		ORDER BY u.created_at ASC, u.id ASC
		OFFSET $1 LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, page.Offset, page.Limit)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := make([]domain.UserWithStats, 0)
	for rows.Next() {
		var u domain.UserWithStats
		if err := rows.Scan(
			&u.ID, &u.Username, &u.HashedPassword, &u.PhoneNumber, &u.IsActive, &u.IsAdmin,
			&u.IsPaymentCollector, &u.CreatedAt, &u.UpdatedAt,
			&u.TotalTasks, &u.CompletedTasks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.PendingTasks = u.TotalTasks - u.CompletedTasks
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.HashedPassword,
		&u.PhoneNumber,
		&u.IsActive,
		&u.IsAdmin,
		&u.IsPaymentCollector,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
