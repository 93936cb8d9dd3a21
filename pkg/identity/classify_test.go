package identity_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sonatahq/sonata-api/pkg/identity"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"duplicate email", http.StatusBadRequest, "User already registered", identity.ErrDuplicateEmail},
		{"duplicate email alt", http.StatusUnprocessableEntity, "A user with this email address has already been registered", identity.ErrDuplicateEmail},
		{"weak password", http.StatusUnprocessableEntity, "Password should be at least 8 characters", identity.ErrWeakPassword},
		{"invalid email", http.StatusBadRequest, "Unable to validate email address: invalid format", identity.ErrInvalidEmail},
		{"signup disabled", http.StatusBadRequest, "Email signup is disabled", identity.ErrSignupDisabled},
		{"invalid credentials", http.StatusBadRequest, "Invalid login credentials", identity.ErrInvalidCredentials},
		{"email unconfirmed", http.StatusBadRequest, "Email not confirmed", identity.ErrEmailUnconfirmed},
		{"rate limited by text", http.StatusBadRequest, "Too many requests", identity.ErrRateLimited},
		{"rate limited by status", http.StatusTooManyRequests, "", identity.ErrRateLimited},
		{"expired token", http.StatusUnauthorized, "Token has expired or is invalid", identity.ErrInvalidToken},
		{"not found by status", http.StatusNotFound, "", identity.ErrNotFound},
		{"case insensitive", http.StatusBadRequest, "INVALID LOGIN CREDENTIALS", identity.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, identity.Classify(tt.status, tt.message), tt.want)
		})
	}
}

func TestClassify_UnknownFallsBack(t *testing.T) {
	t.Parallel()

	err := identity.Classify(http.StatusInternalServerError, "something novel happened")
	assert.ErrorIs(t, err, identity.ErrUnexpected)
	assert.Contains(t, err.Error(), "something novel happened")

	err = identity.Classify(http.StatusBadGateway, "")
	assert.ErrorIs(t, err, identity.ErrUnexpected)
}
