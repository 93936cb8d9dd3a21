package profilestore

import (
	"context"
	"time"
)

// BaseProfile is the account-type-agnostic profile row, keyed by the identity
// provider's user id.
type BaseProfile struct {
	UserID       string
	Email        string
	AccountType  string
	FirstName    string
	LastName     string
	ProfileImage string
	Location     string
}

// TeacherExtension holds teacher-only fields.
type TeacherExtension struct {
	Bio         string
	Instruments []string
}

// ParentExtension holds parent-only fields.
type ParentExtension struct {
	ChildFirstName string
	ChildLastName  string
}

// Profile is the joined view of a base profile and its extension row. Only
// the extension matching AccountType is populated.
type Profile struct {
	BaseProfile
	Teacher   *TeacherExtension
	Parent    *ParentExtension
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeacherSummary is the safe field subset exposed by the public directory.
type TeacherSummary struct {
	UserID       string
	FirstName    string
	LastName     string
	Location     string
	ProfileImage string
	Bio          string
	Instruments  []string
}

// Store is the profile persistence surface the reconciliation engine depends
// on. Implementations return ErrProfileNotFound for missing rows and wrap
// everything else in ErrPersistFailed.
type Store interface {
	// UpsertBaseProfile inserts or updates the base row.
	UpsertBaseProfile(ctx context.Context, p BaseProfile) error

	// UpsertTeacherExtension inserts or updates a teacher extension row.
	UpsertTeacherExtension(ctx context.Context, userID string, ext TeacherExtension) error

	// UpsertParentExtension inserts or updates a parent extension row.
	UpsertParentExtension(ctx context.Context, userID string, ext ParentExtension) error

	// GetProfile loads the joined profile view for one user.
	GetProfile(ctx context.Context, userID string) (Profile, error)

	// DeleteProfile removes the base row and extension rows. Deleting an
	// absent profile succeeds so compensating cleanup stays idempotent.
	DeleteProfile(ctx context.Context, userID string) error

	// SearchTeachers lists teacher profiles ordered by first name. A
	// non-empty query filters case-insensitively over names, location and
	// instruments.
	SearchTeachers(ctx context.Context, query string) ([]TeacherSummary, error)
}
