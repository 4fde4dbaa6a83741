package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/service/auth"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrInactiveAccount),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, service.ErrAssigneeNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrAlreadyCompleted),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Upload errors
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrEmptyFile):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err. Validation
// errors carry their reason; everything unexpected gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Incorrect username or password"
	case errors.Is(err, service.ErrInactiveAccount):
		return "Inactive user"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "Not enough permissions"

	case errors.Is(err, service.ErrAssigneeNotFound):
		return "Assigned user not found or is an admin"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found or not assigned to you"

	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "Task already completed"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already registered"
	case errors.Is(err, store.ErrPhoneExists):
		return "Phone number already registered"

	case errors.Is(err, upload.ErrTooLarge):
		return "Image is too large"
	case errors.Is(err, upload.ErrUnsupportedType):
		return "File must be an image"
	case errors.Is(err, upload.ErrEmptyFile):
		return "Image file is empty"

	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// A non-empty message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns request validation failures into a
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", toSnake(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "e164", "phone":
		return "invalid phone number"
	default:
		return "validation failed"
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
