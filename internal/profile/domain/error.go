package domain

import "errors"

var (
	// ErrNoSession means no user is logged in; callers must not hit the
	// store before checking this.
	ErrNoSession = errors.New("no user logged in")
	ErrNotFound  = errors.New("profile not found")
	ErrTimeout   = errors.New("profile lookup timed out")
	ErrInvalid   = errors.New("invalid profile data")
)
