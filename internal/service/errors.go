package service

import "errors"

// Centralized service layer errors.
// Handlers map these to HTTP responses; token decode failures keep the
// sentinels from pkg/jwt.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// ===== Token Errors =====
var (
	ErrTokenRevoked        = errors.New("token revoked")
	ErrDenylistUnavailable = errors.New("revocation store unavailable")
)
