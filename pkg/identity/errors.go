package identity

import "errors"

// Account creation errors
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrWeakPassword   = errors.New("password does not meet minimum length policy")
	ErrInvalidEmail   = errors.New("email address could not be validated")
	ErrSignupDisabled = errors.New("signups are disabled")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailUnconfirmed   = errors.New("email not confirmed")
	ErrRateLimited        = errors.New("too many requests")
)

// Lookup and token errors
var (
	ErrNotFound     = errors.New("identity not found")
	ErrInvalidToken = errors.New("token is invalid or expired")
)

// ErrUnexpected is the fallback bucket for provider failures that match no
// known classification rule. Callers treat it as a transient provider error.
var ErrUnexpected = errors.New("unexpected identity provider error")
