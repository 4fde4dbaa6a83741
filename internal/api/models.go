package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
)

// LoginRequest defines the payload for the login endpoint. It is accepted
// as JSON or as an OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserType    string    `json:"user_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateUserRequest defines the payload an administrator sends to provision an account.
type CreateUserRequest struct {
	Username           string `json:"username"             validate:"required,min=3,max=50"`
	Password           string `json:"password"             validate:"required,min=8,max=72"`
	PhoneNumber        string `json:"phone_number"         validate:"required"`
	IsPaymentCollector bool   `json:"is_payment_collector"`
}

// SetUserStatusRequest activates or deactivates an account.
type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CreateTaskRequest defines the payload for creating a task. Type and
// frequency default to immediate and one_time.
type CreateTaskRequest struct {
	Title          string     `json:"title"           validate:"required,max=255"`
	Description    string     `json:"description"     validate:"max=2000"`
	AssignedTo     uuid.UUID  `json:"assigned_to"     validate:"required"`
	TaskType       string     `json:"task_type"       validate:"omitempty,oneof=immediate custom"`
	Frequency      string     `json:"frequency"       validate:"omitempty,oneof=one_time repeated"`
	DueDate        *time.Time `json:"due_date"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	RepeatInterval *string    `json:"repeat_interval" validate:"omitempty,oneof=days weeks months"`
	RepeatCount    *int       `json:"repeat_count"    validate:"omitempty,min=1"`
	RepeatEndDate  *time.Time `json:"repeat_end_date"`
	IsPaymentTask  bool       `json:"is_payment_task"`
}

// CompleteTaskRequest carries the optional completion note.
type CompleteTaskRequest struct {
	CompletionMessage *string `json:"completion_message" validate:"omitempty,max=1000"`
}

// userType is the role label returned at login.
func userType(u *domain.User) string {
	if u.HasRole(domain.RoleAdmin) {
		return string(domain.RoleAdmin)
	}
	return string(domain.RoleUser)
}
