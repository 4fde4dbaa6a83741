package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role is a capability an account may hold.
type Role string

const (
	// RoleAdmin may create tasks and manage accounts.
	RoleAdmin Role = "admin"
	// RoleUser is held by every standard account.
	RoleUser Role = "user"
	// RolePaymentCollector marks accounts that collect payments.
	RolePaymentCollector Role = "payment_collector"
)

// Password length bounds. bcrypt ignores bytes past 72.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// User is an account. Administrators create and assign tasks; standard users
// receive and complete them. The phone number doubles as the notification address.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	HashedPassword     string    `json:"-"`
	PhoneNumber        string    `json:"phone_number"`
	IsActive           bool      `json:"is_active"`
	IsAdmin            bool      `json:"is_admin"`
	IsPaymentCollector bool      `json:"is_payment_collector"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUser creates an active standard account. The caller hashes the password.
func NewUser(username, phoneNumber, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		PhoneNumber:    strings.TrimSpace(phoneNumber),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "user ID cannot be empty")
	}

	n := utf8.RuneCountInString(u.Username)
	if n < 3 || n > 50 {
		return NewValidationError("username", "must be between 3 and 50 characters")
	}
	if strings.ContainsAny(u.Username, " \t\r\n") {
		return NewValidationError("username", "must not contain whitespace")
	}

	if !phonePattern.MatchString(u.PhoneNumber) {
		return NewValidationError("phone_number", "must be 7 to 15 digits with an optional leading +")
	}

	if u.HashedPassword == "" {
		return NewValidationError("password", "hashed password cannot be empty")
	}

	return nil
}

// HasRole reports whether the account holds role. Authorization decisions go
// through this method rather than reading the flags directly.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	switch role {
	case RoleAdmin:
		return u.IsAdmin
	case RoleUser:
		return !u.IsAdmin
	case RolePaymentCollector:
		return u.IsPaymentCollector
	default:
		return false
	}
}

// CanBeAssigned reports whether tasks may be delegated to this account.
// Administrators are never assignees.
func (u *User) CanBeAssigned() bool {
	return u != nil && !u.HasRole(RoleAdmin)
}

// Summary returns the public projection embedded in task responses.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, PhoneNumber: u.PhoneNumber}
}

// UserSummary is the denormalized account view attached to tasks.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
}

// ValidatePassword checks a plaintext password against the length bounds.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return NewValidationError("password", "password cannot be empty")
	case len(password) < MinPasswordLength:
		return NewValidationError("password", "password must be at least 8 characters long")
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", "password must be at most 72 characters long")
	}
	return nil
}
