package reconcile

import (
	"errors"
	"fmt"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/validator"
)

// ErrorKind is the stable machine-readable failure class exposed to callers.
// Raw provider errors never cross the engine boundary unclassified.
type ErrorKind string

const (
	KindDuplicateEmail      ErrorKind = "duplicate_email"
	KindWeakPassword        ErrorKind = "weak_password"
	KindInvalidEmail        ErrorKind = "invalid_email"
	KindSignupDisabled      ErrorKind = "signup_disabled"
	KindInvalidCredentials  ErrorKind = "invalid_credentials"
	KindEmailUnconfirmed    ErrorKind = "email_unconfirmed"
	KindRateLimited         ErrorKind = "rate_limited"
	KindIncompleteAccount   ErrorKind = "incomplete_account"
	KindUserNotFound        ErrorKind = "user_not_found"
	KindValidationFailed    ErrorKind = "validation_failed"
	KindStorageUploadFailed ErrorKind = "storage_upload_failed"
	KindPersistenceFailed   ErrorKind = "persistence_failed"
	KindUnknown             ErrorKind = "unknown"
)

// Error is the engine's failure type. AccountDeleted distinguishes an
// incomplete OAuth login whose backing account was cleaned up, so the caller
// can show a message other than a generic auth failure.
type Error struct {
	Kind           ErrorKind
	Message        string
	AccountDeleted bool

	cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from any error, defaulting to KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// fromProviderError translates identity sentinel errors into engine kinds.
func fromProviderError(err error) *Error {
	kind := KindUnknown
	switch {
	case errors.Is(err, identity.ErrDuplicateEmail):
		kind = KindDuplicateEmail
	case errors.Is(err, identity.ErrWeakPassword):
		kind = KindWeakPassword
	case errors.Is(err, identity.ErrInvalidEmail):
		kind = KindInvalidEmail
	case errors.Is(err, identity.ErrSignupDisabled):
		kind = KindSignupDisabled
	case errors.Is(err, identity.ErrInvalidCredentials):
		kind = KindInvalidCredentials
	case errors.Is(err, identity.ErrEmailUnconfirmed):
		kind = KindEmailUnconfirmed
	case errors.Is(err, identity.ErrRateLimited):
		kind = KindRateLimited
	case errors.Is(err, identity.ErrNotFound):
		kind = KindUserNotFound
	}
	return newError(kind, err.Error(), err)
}

// fromValidationError wraps accumulated field errors so handlers can render
// per-field messages while the engine keeps a single failure kind.
func fromValidationError(err error) *Error {
	return newError(KindValidationFailed, err.Error(), err)
}

// ValidationFields returns the per-field messages behind a KindValidationFailed
// error, or nil for any other error.
func ValidationFields(err error) validator.ValidationErrors {
	return validator.ExtractValidationErrors(err)
}
