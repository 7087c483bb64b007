package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Credential errors
	ErrNoCredentials = errors.New("no stored credentials")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshRejected     = errors.New("refresh rejected")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrSessionChanged = errors.New("session changed while refreshing")

	// Request errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
