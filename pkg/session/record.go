package session

import (
	"time"

	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// Record is the server-side session state: the subset of identity fields
// needed for authorization checks, plus lifecycle timestamps.
type Record struct {
	Token            string    `json:"token"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	AccountType      string    `json:"account_type"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	ProfileCompleted bool      `json:"profile_completed"`
	VerifiedAt       time.Time `json:"verified_at"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// IsAuthenticated reports whether the record is bound to a user.
func (r Record) IsAuthenticated() bool {
	return r.UserID != ""
}

// IsExpired reports whether the record's lifetime has passed.
func (r Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Stale reports whether the copied identity fields are due for
// re-verification against the canonical user view.
func (r Record) Stale(window time.Duration) bool {
	return time.Since(r.VerifiedAt) >= window
}

// applyUser copies the authorization fields from the canonical view and
// stamps the verification time.
func (r *Record) applyUser(u reconcile.User, now time.Time) {
	r.UserID = u.ID
	r.Email = u.Email
	r.AccountType = string(u.AccountType)
	r.FirstName = u.FirstName
	r.LastName = u.LastName
	r.ProfileCompleted = u.ProfileCompleted
	r.VerifiedAt = now
}
