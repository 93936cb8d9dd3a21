package session

import "errors"

var (
	// ErrSessionNotFound indicates no session was found for the request.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session or its backing account is gone.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidToken indicates a malformed or tampered session cookie.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session token generation failed")
)
