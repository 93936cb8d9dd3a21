package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/objectstore"
	"github.com/sonatahq/sonata-api/pkg/profilestore"
	"github.com/sonatahq/sonata-api/pkg/sanitizer"
	"github.com/sonatahq/sonata-api/pkg/validator"
)

// Mode tells the OAuth reconciliation which flow the user came through, so
// an incomplete account discovered during login can be reported distinctly.
type Mode string

const (
	ModeSignup Mode = "signup"
	ModeLogin  Mode = "login"
)

// Engine drives the account lifecycle across the identity provider, the
// profile store and the object store.
type Engine struct {
	provider identity.Provider
	profiles profilestore.Store
	objects  objectstore.Storage

	log          *slog.Logger
	signedURLTTL time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for swallowed best-effort failures.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSignedURLTTL sets the lifetime of signed profile-image URLs.
func WithSignedURLTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.signedURLTTL = ttl
		}
	}
}

// New creates an Engine.
func New(provider identity.Provider, profiles profilestore.Store, objects objectstore.Storage, opts ...Option) *Engine {
	e := &Engine{
		provider:     provider,
		profiles:     profiles,
		objects:      objects,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		signedURLTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateAccountInput carries the credential signup fields.
type CreateAccountInput struct {
	Email       string
	Password    string
	AccountType AccountType
	FirstName   string
	LastName    string
}

// CreateAccount registers a credential account. The account type and names
// become identity claims at creation time; no profile row exists yet, so the
// returned user is profile-pending.
func (e *Engine) CreateAccount(ctx context.Context, in CreateAccountInput) (User, error) {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = sanitizer.TrimName(in.FirstName)
	in.LastName = sanitizer.TrimName(in.LastName)

	if err := validator.Apply(
		validator.RequiredString("email", in.Email),
		validator.ValidEmail("email", in.Email),
		validator.MinLenString("password", in.Password, 8),
		validator.InListString("account_type", string(in.AccountType), AccountTypes),
		validator.RequiredString("first_name", in.FirstName),
		validator.RequiredString("last_name", in.LastName),
	); err != nil {
		return User{}, fromValidationError(err)
	}

	rec, err := e.provider.CreateAccount(ctx, in.Email, in.Password, map[string]any{
		identity.MetaAccountType:      string(in.AccountType),
		identity.MetaFirstName:        in.FirstName,
		identity.MetaLastName:         in.LastName,
		identity.MetaFullName:         in.FirstName + " " + in.LastName,
		identity.MetaProfileCompleted: false,
	})
	if err != nil {
		return User{}, fromProviderError(err)
	}

	return userFromRecord(rec), nil
}

// Authenticate verifies a credential and returns the full canonical user,
// profile rows included. This join is what distinguishes it from a raw
// provider call.
func (e *Engine) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = sanitizer.NormalizeEmail(email)

	if err := validator.Apply(
		validator.RequiredString("email", email),
		validator.RequiredString("password", password),
	); err != nil {
		return User{}, fromValidationError(err)
	}

	rec, err := e.provider.Authenticate(ctx, email, password)
	if err != nil {
		return User{}, fromProviderError(err)
	}
	if rec.Claims.Deleted {
		return User{}, newError(KindUserNotFound, "account no longer exists", nil)
	}

	return e.buildUser(ctx, rec)
}

// GetUser recomputes the canonical view for one account.
func (e *Engine) GetUser(ctx context.Context, id string) (User, error) {
	rec, err := e.provider.GetByID(ctx, id)
	if err != nil {
		return User{}, fromProviderError(err)
	}
	if rec.Claims.Deleted {
		return User{}, newError(KindUserNotFound, "account no longer exists", nil)
	}
	return e.buildUser(ctx, rec)
}

// GetUserByEmail resolves an email to the canonical view.
func (e *Engine) GetUserByEmail(ctx context.Context, email string) (User, error) {
	rec, err := e.provider.FindByEmail(ctx, sanitizer.NormalizeEmail(email))
	if err != nil {
		return User{}, fromProviderError(err)
	}
	if rec.Claims.Deleted {
		return User{}, newError(KindUserNotFound, "account no longer exists", nil)
	}
	return e.buildUser(ctx, rec)
}

// ReconcileOAuth matches a third-party login event to an existing or new
// canonical user.
//
// A returning user (existing account type) gets OAuth names merged in only
// where the claim is non-empty; the stored account type is never replaced.
// An account with no resolvable account type is deleted on the spot rather
// than left incomplete. A new user completing signup via OAuth gets names
// derived from the claims, splitting a full-name claim on the first space.
//
// On success the merged claims are not yet persisted to the identity
// provider; the caller follows up with PersistClaims.
func (e *Engine) ReconcileOAuth(ctx context.Context, identityID string, claims identity.OAuthClaims, mode Mode) (User, error) {
	rec, err := e.provider.GetByID(ctx, identityID)
	exists := true
	switch {
	case errors.Is(err, identity.ErrNotFound):
		exists = false
	case err != nil:
		return User{}, fromProviderError(err)
	case rec.Claims.Deleted:
		exists = false
	}

	oauthFirst, oauthLast := claims.GivenName, claims.FamilyName
	if oauthFirst == "" && oauthLast == "" {
		oauthFirst, oauthLast = splitName(claims.FullName)
	}

	// Returning user: merge claims without ever replacing the account type.
	if exists && rec.Claims.AccountType != "" {
		if oauthFirst != "" {
			rec.Claims.FirstName = oauthFirst
		}
		if oauthLast != "" {
			rec.Claims.LastName = oauthLast
		}
		if claims.Picture != "" && claims.Picture != rec.Claims.Picture {
			rec.Claims.Picture = claims.Picture
		}
		return e.buildUser(ctx, rec)
	}

	// No resolvable account type: compensating deletion. The identity record
	// must not survive in an incomplete state.
	if claims.AccountType == "" {
		if exists {
			if err := e.provider.DeleteByID(ctx, identityID); err != nil {
				e.log.WarnContext(ctx, "failed to delete incomplete account",
					slog.String("user_id", identityID), slog.Any("error", err))
			}
			if err := e.profiles.DeleteProfile(ctx, identityID); err != nil {
				e.log.WarnContext(ctx, "failed to delete profile of incomplete account",
					slog.String("user_id", identityID), slog.Any("error", err))
			}
		}
		return User{}, &Error{
			Kind:           KindIncompleteAccount,
			Message:        "account has no account type",
			AccountDeleted: mode == ModeLogin,
		}
	}

	if !AccountType(claims.AccountType).Valid() {
		return User{}, newError(KindValidationFailed, "unknown account type: "+claims.AccountType, nil)
	}

	// New user completing signup via OAuth.
	return User{
		ID:               identityID,
		Email:            claims.Email,
		AccountType:      AccountType(claims.AccountType),
		FirstName:        oauthFirst,
		LastName:         oauthLast,
		ProfileImage:     claims.Picture,
		ProfileImageURL:  claims.Picture,
		ProfileCompleted: false,
	}, nil
}

// PersistClaims writes reconciled account type and name claims back to the
// identity provider. Kept separate from ReconcileOAuth so the reconciliation
// itself stays side-effect free for returning users.
func (e *Engine) PersistClaims(ctx context.Context, u User) error {
	meta := map[string]any{
		identity.MetaAccountType:      string(u.AccountType),
		identity.MetaFirstName:        u.FirstName,
		identity.MetaLastName:         u.LastName,
		identity.MetaProfileCompleted: u.ProfileCompleted,
	}
	if classifyImage(u.ProfileImage) == imageExternal {
		meta[identity.MetaPicture] = u.ProfileImage
	}

	if err := e.provider.UpdateMetadata(ctx, u.ID, meta); err != nil {
		return fromProviderError(err)
	}
	return nil
}

// ImageDecisionKind enumerates what to do with the profile image.
type ImageDecisionKind int

const (
	ImageKeep ImageDecisionKind = iota
	ImageUpload
	ImageRemove
	ImageExternalURL
)

// ImageDecision carries the profile-image change requested alongside a
// profile update.
type ImageDecision struct {
	Kind        ImageDecisionKind
	Data        []byte
	ContentType string
	URL         string
}

// ProfileInput carries the profile completion or update fields. Only the
// fields matching the account type on record are consulted.
type ProfileInput struct {
	Email     string
	FirstName string
	LastName  string
	Location  string

	// Teacher-only.
	Bio         string
	Instruments []string

	// Parent-only.
	ChildFirstName string
	ChildLastName  string

	Image ImageDecision
}

// CompleteProfile upserts the base profile and the extension row matching
// the account type on record, resolves the image decision, and flips the
// profile-completed claim. Update-profile after first completion is the same
// operation; the flip is idempotent.
//
// The profile upsert and the claim flip are two non-transactional steps;
// concurrent calls for the same user may interleave. Callers needing strict
// serialization must add per-user mutual exclusion.
func (e *Engine) CompleteProfile(ctx context.Context, userID string, in ProfileInput) (User, error) {
	rec, err := e.provider.GetByID(ctx, userID)
	if err != nil {
		return User{}, fromProviderError(err)
	}
	if rec.Claims.Deleted {
		return User{}, newError(KindUserNotFound, "account no longer exists", nil)
	}

	accountType := AccountType(rec.Claims.AccountType)
	if in.Email == "" {
		in.Email = rec.Email
	}
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = sanitizer.TrimName(in.FirstName)
	in.LastName = sanitizer.TrimName(in.LastName)
	in.Instruments = sanitizer.TrimStrings(in.Instruments)

	rules := []validator.Rule{
		validator.RequiredString("first_name", in.FirstName),
		validator.RequiredString("last_name", in.LastName),
		validator.ValidEmail("email", in.Email),
	}
	switch accountType {
	case AccountTypeTeacher:
		rules = append(rules, validator.Rule{
			Check: func() bool { return len(in.Instruments) > 0 },
			Error: validator.ValidationError{Field: "instruments", Message: "at least one instrument is required"},
		})
	case AccountTypeParent:
		rules = append(rules, validator.RequiredString("child_first_name", in.ChildFirstName))
	}
	if err := validator.Apply(rules...); err != nil {
		return User{}, fromValidationError(err)
	}

	// Previous stored image decides whether anything needs garbage collection
	// after the update lands.
	var previousImage string
	if prev, err := e.profiles.GetProfile(ctx, userID); err == nil {
		previousImage = prev.ProfileImage
	} else if !errors.Is(err, profilestore.ErrProfileNotFound) {
		return User{}, newError(KindPersistenceFailed, "failed to load existing profile", err)
	}

	newImage := previousImage
	var staleImage string
	switch in.Image.Kind {
	case ImageUpload:
		ref, err := e.objects.Upload(ctx, userID, in.Image.Data, in.Image.ContentType)
		if err != nil {
			if errors.Is(err, objectstore.ErrUnsupportedType) {
				return User{}, newError(KindValidationFailed, err.Error(), err)
			}
			return User{}, newError(KindStorageUploadFailed, "failed to upload profile image", err)
		}
		newImage = ref
		staleImage = previousImage
	case ImageRemove:
		newImage = DefaultImage
		staleImage = previousImage
	case ImageExternalURL:
		newImage = in.Image.URL
	case ImageKeep:
		// No change.
	}

	if err := e.profiles.UpsertBaseProfile(ctx, profilestore.BaseProfile{
		UserID:       userID,
		Email:        in.Email,
		AccountType:  string(accountType),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ProfileImage: newImage,
		Location:     in.Location,
	}); err != nil {
		return User{}, newError(KindPersistenceFailed, "failed to save profile", err)
	}

	switch accountType {
	case AccountTypeTeacher:
		if err := e.profiles.UpsertTeacherExtension(ctx, userID, profilestore.TeacherExtension{
			Bio:         in.Bio,
			Instruments: in.Instruments,
		}); err != nil {
			return User{}, newError(KindPersistenceFailed, "failed to save teacher profile", err)
		}
	case AccountTypeParent:
		if err := e.profiles.UpsertParentExtension(ctx, userID, profilestore.ParentExtension{
			ChildFirstName: in.ChildFirstName,
			ChildLastName:  in.ChildLastName,
		}); err != nil {
			return User{}, newError(KindPersistenceFailed, "failed to save parent profile", err)
		}
	}

	// Superseded uploads are garbage, but only actual storage references are
	// ours to delete. External URLs and the sentinel are never deleted.
	if staleImage != "" && staleImage != newImage && classifyImage(staleImage) == imageStorageRef {
		if err := e.objects.Delete(ctx, staleImage); err != nil {
			e.log.WarnContext(ctx, "failed to delete superseded profile image",
				slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	if err := e.provider.UpdateMetadata(ctx, userID, map[string]any{
		identity.MetaFirstName:        in.FirstName,
		identity.MetaLastName:         in.LastName,
		identity.MetaProfileCompleted: true,
	}); err != nil {
		return User{}, fromProviderError(err)
	}

	rec.Claims.FirstName = in.FirstName
	rec.Claims.LastName = in.LastName
	rec.Claims.ProfileCompleted = true
	rec.Email = in.Email
	return e.buildUser(ctx, rec)
}

// DeleteAccount removes the identity record and best-effort cleans up the
// profile row and stored images. Deleting an absent account succeeds.
func (e *Engine) DeleteAccount(ctx context.Context, userID string) error {
	if err := e.provider.DeleteByID(ctx, userID); err != nil && !errors.Is(err, identity.ErrNotFound) {
		return fromProviderError(err)
	}

	if err := e.profiles.DeleteProfile(ctx, userID); err != nil {
		e.log.WarnContext(ctx, "failed to delete profile rows",
			slog.String("user_id", userID), slog.Any("error", err))
	}
	if err := e.objects.DeleteAllExcept(ctx, userID, ""); err != nil {
		e.log.WarnContext(ctx, "failed to delete profile images",
			slog.String("user_id", userID), slog.Any("error", err))
	}

	return nil
}

// SearchTeachers lists the public teacher directory.
func (e *Engine) SearchTeachers(ctx context.Context, query string) ([]profilestore.TeacherSummary, error) {
	teachers, err := e.profiles.SearchTeachers(ctx, query)
	if err != nil {
		return nil, newError(KindPersistenceFailed, "failed to search teachers", err)
	}

	// Directory entries expose image URLs, never raw storage keys.
	for i := range teachers {
		teachers[i].ProfileImage = e.resolveImageURL(ctx, teachers[i].ProfileImage, "")
	}
	return teachers, nil
}

// userFromRecord builds the view available before any profile row exists.
func userFromRecord(rec identity.Record) User {
	return User{
		ID:               rec.ID,
		Email:            rec.Email,
		AccountType:      AccountType(rec.Claims.AccountType),
		FirstName:        rec.Claims.FirstName,
		LastName:         rec.Claims.LastName,
		ProfileImage:     rec.Claims.Picture,
		ProfileImageURL:  rec.Claims.Picture,
		ProfileCompleted: rec.Claims.ProfileCompleted,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
		EmailConfirmedAt: rec.EmailConfirmedAt,
	}
}

// buildUser joins the identity record with the profile row and resolves the
// image by precedence.
func (e *Engine) buildUser(ctx context.Context, rec identity.Record) (User, error) {
	user := userFromRecord(rec)

	profile, err := e.profiles.GetProfile(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, profilestore.ErrProfileNotFound) {
			return user, nil
		}
		return User{}, newError(KindPersistenceFailed, "failed to load profile", err)
	}

	if profile.FirstName != "" {
		user.FirstName = profile.FirstName
	}
	if profile.LastName != "" {
		user.LastName = profile.LastName
	}
	user.Location = profile.Location
	if profile.Teacher != nil {
		user.Bio = profile.Teacher.Bio
		user.Instruments = profile.Teacher.Instruments
	}
	if profile.Parent != nil {
		user.ChildFirstName = profile.Parent.ChildFirstName
		user.ChildLastName = profile.Parent.ChildLastName
	}

	// Stored image wins over the OAuth picture claim; only an absent stored
	// value falls back to the claim.
	if classifyImage(profile.ProfileImage) != imageAbsent {
		user.ProfileImage = profile.ProfileImage
	}
	user.ProfileImageURL = e.resolveImageURL(ctx, user.ProfileImage, rec.ID)

	return user, nil
}

// resolveImageURL maps a raw stored image value to what clients receive.
func (e *Engine) resolveImageURL(ctx context.Context, stored, userID string) string {
	switch classifyImage(stored) {
	case imageStorageRef:
		url, err := e.objects.SignedURL(ctx, stored, e.signedURLTTL)
		if err != nil {
			e.log.WarnContext(ctx, "failed to sign profile image url",
				slog.String("user_id", userID), slog.Any("error", err))
			return ""
		}
		return url
	default:
		return stored
	}
}
