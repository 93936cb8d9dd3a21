package identity

import (
	"context"
	"encoding/json"
	"time"
)

// Metadata keys the application stores on identity records. The provider
// merges metadata maps shallowly, so partial updates never clobber sibling
// keys.
const (
	MetaAccountType      = "account_type"
	MetaFirstName        = "first_name"
	MetaLastName         = "last_name"
	MetaFullName         = "full_name"
	MetaPicture          = "picture"
	MetaProfileCompleted = "profile_completed"
	MetaUserDeleted      = "user_deleted"
)

// Claims are the application-owned metadata carried on an identity record.
type Claims struct {
	AccountType      string `json:"account_type,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	Picture          string `json:"picture,omitempty"`
	ProfileCompleted bool   `json:"profile_completed,omitempty"`
	Deleted          bool   `json:"user_deleted,omitempty"`
}

// claimsFromMetadata tolerates unknown keys and missing metadata; a record
// with no metadata yields zero-valued claims.
func claimsFromMetadata(raw json.RawMessage) Claims {
	var c Claims
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &c)
	}
	return c
}

// Record is one identity-provider account as seen by the application.
type Record struct {
	ID               string
	Email            string
	EmailConfirmedAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Claims           Claims
}

// OAuthClaims are the normalized claims produced by a third-party OAuth
// exchange. AccountType is not a provider claim; it rides along from the
// signup flow's state parameter when the user picked one before redirecting.
type OAuthClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	FullName      string
	GivenName     string
	FamilyName    string
	Picture       string
	AccountType   string
}

// Provider is the narrow surface the rest of the application depends on.
// Implementations must translate provider failures into the package sentinel
// errors; raw transport errors never cross this boundary unclassified.
type Provider interface {
	// CreateAccount registers a credential-based account carrying the given
	// metadata claims at creation time.
	CreateAccount(ctx context.Context, email, password string, meta map[string]any) (Record, error)

	// CreateOAuthAccount registers an account for a third-party login with a
	// pre-confirmed email and no local credential.
	CreateOAuthAccount(ctx context.Context, email string, meta map[string]any) (Record, error)

	// Authenticate verifies an email/password credential.
	Authenticate(ctx context.Context, email, password string) (Record, error)

	// GetByID returns ErrNotFound when no record exists for the id.
	GetByID(ctx context.Context, id string) (Record, error)

	// FindByEmail returns ErrNotFound when no record matches the email.
	FindByEmail(ctx context.Context, email string) (Record, error)

	// UpdateMetadata shallow-merges the given keys into the record's metadata.
	UpdateMetadata(ctx context.Context, id string, meta map[string]any) error

	// UpdatePassword replaces the record's credential.
	UpdatePassword(ctx context.Context, id, password string) error

	// DeleteByID is idempotent: deleting an absent record succeeds.
	DeleteByID(ctx context.Context, id string) error

	// SendPasswordReset emails a recovery token to the address if it exists.
	SendPasswordReset(ctx context.Context, email string) error

	// VerifyResetToken resolves a recovery token to the record it was issued
	// for, returning ErrInvalidToken for unknown or expired tokens.
	VerifyResetToken(ctx context.Context, token string) (Record, error)
}
