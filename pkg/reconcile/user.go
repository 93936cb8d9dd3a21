package reconcile

import (
	"strings"
	"time"
)

// AccountType classifies an account. Set exactly once on the identity record
// and never overwritten by later OAuth merges.
type AccountType string

const (
	AccountTypeStudent AccountType = "student"
	AccountTypeTeacher AccountType = "teacher"
	AccountTypeParent  AccountType = "parent"
)

// AccountTypes lists the valid account type values.
var AccountTypes = []string{
	string(AccountTypeStudent),
	string(AccountTypeTeacher),
	string(AccountTypeParent),
}

// Valid reports whether the account type is one of the known values.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeStudent, AccountTypeTeacher, AccountTypeParent:
		return true
	}
	return false
}

// DefaultImage marks "no custom image; use the client-side default asset".
// Distinct from an empty value, which means no image information at all.
const DefaultImage = "__default__"

// imageKind classifies a stored profile image value.
type imageKind int

const (
	imageAbsent imageKind = iota
	imageSentinel
	imageExternal
	imageStorageRef
)

func classifyImage(v string) imageKind {
	switch {
	case v == "":
		return imageAbsent
	case v == DefaultImage:
		return imageSentinel
	case strings.HasPrefix(v, "http://"),
		strings.HasPrefix(v, "https://"),
		strings.HasPrefix(v, "data:"):
		return imageExternal
	default:
		return imageStorageRef
	}
}

// User is the canonical merged view of one account across the identity
// provider and the profile store. It is recomputed per request, never stored.
type User struct {
	ID          string
	Email       string
	AccountType AccountType
	FirstName   string
	LastName    string

	// ProfileImage is the raw stored value: a storage reference, an external
	// URL or data URI, the DefaultImage sentinel, or empty when absent.
	ProfileImage string

	// ProfileImageURL is the client-facing resolution of ProfileImage:
	// storage references become signed URLs, everything else passes through.
	ProfileImageURL string

	ProfileCompleted bool
	Location         string

	// Teacher-only fields.
	Bio         string
	Instruments []string

	// Parent-only fields.
	ChildFirstName string
	ChildLastName  string

	CreatedAt        time.Time
	UpdatedAt        time.Time
	EmailConfirmedAt time.Time
}

// Incomplete reports whether the account lacks an account type. Incomplete
// accounts are never persisted past the request that discovers them.
func (u User) Incomplete() bool {
	return u.AccountType == ""
}

// splitName derives first and last name from a full-name claim by splitting
// on the first space. A single-token name yields an empty last name.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}
