package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	// The two cases are deliberately indistinguishable.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInactiveAccount indicates correct credentials for a deactivated account.
	// API layer should map this to HTTP 403 Forbidden.
	ErrInactiveAccount = errors.New("account is inactive")

	// ErrAssigneeNotFound indicates the requested assignee does not exist or is
	// an administrator.
	// API layer should map this to HTTP 404 Not Found.
	ErrAssigneeNotFound = errors.New("assignee not found")
)

// ServiceError wraps an unexpected failure with the service and operation it
// occurred in. It unwraps to the underlying error.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}
