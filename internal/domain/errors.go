package domain

import "errors"

// User directory errors
var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// Refresh token registry errors
var (
	ErrUnknownToken = errors.New("unknown refresh token")
)
