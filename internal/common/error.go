// Package common defines shared constants and sentinel errors used across
// accountd components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// ErrOperationFailed is the only storage-fault signal that crosses the
	// service boundary. The underlying cause is logged, not returned.
	ErrOperationFailed = errors.New("operation failed")

	// Registration errors. Uniqueness is checked against active accounts
	// only, so values held by a deactivated account stay reusable.
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
