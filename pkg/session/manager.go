package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// UserSource re-verifies session fields against the canonical user view.
// Implemented by the reconciliation engine.
type UserSource interface {
	GetUser(ctx context.Context, id string) (reconcile.User, error)
}

// Manager owns the session lifecycle policy.
type Manager struct {
	store     Store
	transport Transport
	source    UserSource

	lifetime  time.Duration
	freshness time.Duration
	log       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLifetime sets the sliding session lifetime.
func WithLifetime(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

// WithFreshnessWindow sets how long copied identity fields are trusted
// before re-verification.
func WithFreshnessWindow(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.freshness = d
		}
	}
}

// WithLogger sets the logger for swallowed refresh failures.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a session manager with a 7-day sliding lifetime and a
// 5-minute freshness window by default.
func NewManager(store Store, transport Transport, source UserSource, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		transport: transport,
		source:    source,
		lifetime:  7 * 24 * time.Hour,
		freshness: 5 * time.Minute,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bind creates a session for a canonical user and sets the cookie.
func (m *Manager) Bind(ctx context.Context, w http.ResponseWriter, user reconcile.User) (Record, error) {
	token, err := generateToken()
	if err != nil {
		return Record{}, err
	}

	now := time.Now()
	rec := Record{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime),
	}
	rec.applyUser(user, now)

	if err := m.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	if err := m.transport.SetToken(w, token, m.lifetime); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Current resolves the request's session record.
func (m *Manager) Current(ctx context.Context, r *http.Request) (Record, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return Record{}, err
	}
	return m.store.Get(ctx, token)
}

// RefreshIfStale re-verifies the record against the canonical user view once
// the freshness window has passed. A gone backing account expires the
// session; a transient lookup failure keeps serving the stale copy.
func (m *Manager) RefreshIfStale(ctx context.Context, rec Record) (Record, error) {
	if !rec.Stale(m.freshness) {
		return rec, nil
	}

	user, err := m.source.GetUser(ctx, rec.UserID)
	if err != nil {
		if reconcile.KindOf(err) == reconcile.KindUserNotFound {
			if derr := m.store.Delete(ctx, rec.Token); derr != nil {
				m.log.WarnContext(ctx, "failed to delete session of gone user",
					slog.String("user_id", rec.UserID), slog.Any("error", derr))
			}
			return Record{}, ErrSessionExpired
		}

		m.log.WarnContext(ctx, "session re-verification failed, serving stale record",
			slog.String("user_id", rec.UserID), slog.Any("error", err))
		return rec, nil
	}

	rec.applyUser(user, time.Now())
	if err := m.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update overwrites the record's identity fields from a freshly computed
// canonical user, restarting the freshness window. Used after operations that
// change the user mid-session, so clients see the change immediately.
func (m *Manager) Update(ctx context.Context, rec Record, user reconcile.User) (Record, error) {
	rec.applyUser(user, time.Now())
	if err := m.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Touch slides the expiry forward and refreshes the cookie lifetime. Called
// on authenticated activity, never on logout.
func (m *Manager) Touch(ctx context.Context, w http.ResponseWriter, rec Record) (Record, error) {
	rec.ExpiresAt = time.Now().Add(m.lifetime)
	if err := m.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	if err := m.transport.SetToken(w, rec.Token, m.lifetime); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Invalidate destroys the session and clears the cookie.
func (m *Manager) Invalidate(ctx context.Context, w http.ResponseWriter, rec Record) error {
	if err := m.store.Delete(ctx, rec.Token); err != nil {
		return err
	}
	return m.transport.ClearToken(w)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
