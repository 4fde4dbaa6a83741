package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/redact"
	"github.com/phrazzld/taskroster-api/internal/service/auth"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// AccountService provides authentication and account administration.
type AccountService interface {
	// Authenticate checks credentials and issues an access token.
	// Returns ErrInvalidCredentials or ErrInactiveAccount.
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)

	// GetUser loads an account by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// CreateAccount provisions a standard (non-admin) account.
	CreateAccount(ctx context.Context, params NewAccountParams) (*domain.User, error)

	// SetActive activates or deactivates a standard account and returns it.
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error)

	// EnsureBootstrapAdmin creates the configured administrator unless an
	// account with that username already exists. Reports whether it created one.
	EnsureBootstrapAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error)

	// ListUsers returns standard accounts with their task counts.
	ListUsers(ctx context.Context, page store.Page) ([]domain.UserWithStats, error)
}

// AuthResult is a successful login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAccountParams are the fields an administrator supplies for a new account.
type NewAccountParams struct {
	Username           string
	Password           string
	PhoneNumber        string
	IsPaymentCollector bool
}

// BootstrapAdmin describes the administrator created at first start.
type BootstrapAdmin struct {
	Username    string
	Password    string
	PhoneNumber string
}

type accountService struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	tokens   auth.JWTService
	timeFunc func() time.Time
	logger   *slog.Logger
}

var _ AccountService = (*accountService)(nil)

// NewAccountService creates an AccountService.
func NewAccountService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.JWTService,
	logger *slog.Logger,
) AccountService {
	return &accountService{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		tokens:   tokens,
		timeFunc: time.Now,
		logger:   logger.With("component", "account_service"),
	}
}

func (s *accountService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load account for login", "error", redact.Error(err))
		return nil, NewServiceError("account", "authenticate", err)
	}

	// The password is checked first so an inactive account looks like any
	// other to a caller without the right password.
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("stored password hash unusable", "error", err, "user_id", user.ID)
		}
		log.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Info("login attempt for inactive account", "user_id", user.ID)
		return nil, ErrInactiveAccount
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		log.Error("failed to issue token", "error", err, "user_id", user.ID)
		return nil, NewServiceError("account", "authenticate", err)
	}

	log.Info("user authenticated", "user_id", user.ID, "is_admin", user.HasRole(domain.RoleAdmin))
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *accountService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *accountService) CreateAccount(ctx context.Context, params NewAccountParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.newAccount(params.Username, params.Password, params.PhoneNumber)
	if err != nil {
		return nil, err
	}
	user.IsPaymentCollector = params.IsPaymentCollector

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("account already exists", "username", user.Username, "error", err)
			return nil, err
		}
		log.Error("failed to save account", "error", redact.Error(err), "username", user.Username)
		return nil, NewServiceError("account", "create", err)
	}

	log.Info("account created",
		"user_id", user.ID,
		"username", user.Username,
		"phone", redact.Phone(user.PhoneNumber))
	return user, nil
}

// newAccount validates the password and builds a standard account around its hash.
func (s *accountService) newAccount(username, password, phone string) (*domain.User, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, NewServiceError("account", "hash password", err)
	}
	return domain.NewUser(username, phone, hashed)
}

func (s *accountService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.SetActive(ctx, userID, active, s.timeFunc().UTC()); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		log.Error("failed to change account status", "error", redact.Error(err), "user_id", userID)
		return nil, NewServiceError("account", "set active", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	log.Info("account status changed", "user_id", userID, "is_active", active)
	return user, nil
}

func (s *accountService) EnsureBootstrapAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.users.GetByUsername(ctx, admin.Username)
	switch {
	case err == nil:
		if !existing.HasRole(domain.RoleAdmin) {
			log.Warn("bootstrap username belongs to a standard account", "user_id", existing.ID)
		}
		return false, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return false, NewServiceError("account", "bootstrap", err)
	}

	user, err := s.newAccount(admin.Username, admin.Password, admin.PhoneNumber)
	if err != nil {
		return false, fmt.Errorf("invalid bootstrap administrator: %w", err)
	}
	user.IsAdmin = true

	if err := s.users.Create(ctx, user); err != nil {
		// Another instance may have won the race.
		if errors.Is(err, store.ErrUsernameExists) {
			return false, nil
		}
		return false, NewServiceError("account", "bootstrap", err)
	}

	log.Info("bootstrap administrator created", "user_id", user.ID, "username", user.Username)
	return true, nil
}

func (s *accountService) ListUsers(ctx context.Context, page store.Page) ([]domain.UserWithStats, error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListStandardWithStats(ctx, page)
	if err != nil {
		return nil, NewServiceError("account", "list users", err)
	}
	return users, nil
}
