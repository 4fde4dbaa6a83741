package auth

import "errors"

// Token and password errors. Callers map every token error to 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrPasswordMismatch is returned by Compare when the password is wrong.
	// Any other Compare error means the stored hash is unusable.
	ErrPasswordMismatch = errors.New("password does not match")
)
