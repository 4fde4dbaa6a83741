package whatsapp

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by NewClient when required settings are missing.
var ErrInvalidConfig = errors.New("invalid whatsapp configuration")

// ErrInvalidRecipient is returned when the recipient is not a phone number.
var ErrInvalidRecipient = errors.New("invalid recipient phone number")

// APIError is a non-2xx response from the Cloud API.
type APIError struct {
	StatusCode int
	Code       int
	Type       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("whatsapp api returned status %d: %s (code %d)", e.StatusCode, e.Message, e.Code)
}
