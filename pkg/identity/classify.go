package identity

import (
	"fmt"
	"net/http"
	"strings"
)

// classifyRule maps a known fragment of provider error text to a sentinel.
// The provider exposes no stable machine-readable error codes for these
// cases, so matching its message text is the only available discriminator.
// Order matters: first match wins.
type classifyRule struct {
	fragment string
	err      error
}

var classifyRules = []classifyRule{
	{"user already registered", ErrDuplicateEmail},
	{"already been registered", ErrDuplicateEmail},
	{"password should be at least", ErrWeakPassword},
	{"unable to validate email address", ErrInvalidEmail},
	{"signup is disabled", ErrSignupDisabled},
	{"signups not allowed", ErrSignupDisabled},
	{"invalid login credentials", ErrInvalidCredentials},
	{"email not confirmed", ErrEmailUnconfirmed},
	{"too many requests", ErrRateLimited},
	{"rate limit", ErrRateLimited},
	{"token has expired or is invalid", ErrInvalidToken},
	{"otp has expired", ErrInvalidToken},
	{"user not found", ErrNotFound},
}

// Classify translates a provider error response into a package sentinel.
// Unmatched messages fall into the ErrUnexpected bucket with the original
// text preserved for logs.
func Classify(status int, message string) error {
	if status == http.StatusNotFound {
		return ErrNotFound
	}
	if status == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	lower := strings.ToLower(message)
	for _, rule := range classifyRules {
		if strings.Contains(lower, rule.fragment) {
			return rule.err
		}
	}

	if message == "" {
		return fmt.Errorf("%w: status %d", ErrUnexpected, status)
	}
	return fmt.Errorf("%w: %s", ErrUnexpected, message)
}
