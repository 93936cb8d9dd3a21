package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sonatahq/sonata-api/pkg/reconcile"
	"github.com/sonatahq/sonata-api/pkg/session"
)

// MockUserSource is a mock implementation of session.UserSource
type MockUserSource struct {
	mock.Mock
}

func (m *MockUserSource) GetUser(ctx context.Context, id string) (reconcile.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func testUser() reconcile.User {
	return reconcile.User{
		ID:               "user-1",
		Email:            "a@b.com",
		AccountType:      reconcile.AccountTypeTeacher,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		ProfileCompleted: true,
	}
}

func newManager(source session.UserSource, opts ...session.ManagerOption) (*session.Manager, *session.MemoryStore) {
	store := session.NewMemoryStore(0)
	transport := session.NewCookieTransport("sid", "test-secret", false)
	return session.NewManager(store, transport, source, opts...), store
}

func TestManager_BindAndCurrent(t *testing.T) {
	t.Parallel()

	mgr, _ := newManager(new(MockUserSource))

	w := httptest.NewRecorder()
	rec, err := mgr.Bind(context.Background(), w, testUser())
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, "teacher", rec.AccountType)
	assert.True(t, rec.IsAuthenticated())
	assert.False(t, rec.Stale(time.Minute))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	current, err := mgr.Current(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, rec.Token, current.Token)
	assert.Equal(t, "a@b.com", current.Email)
}

func TestManager_Current_NoCookie(t *testing.T) {
	t.Parallel()

	mgr, _ := newManager(new(MockUserSource))
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := mgr.Current(context.Background(), r)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_RefreshIfStale(t *testing.T) {
	t.Parallel()

	t.Run("fresh record is untouched", func(t *testing.T) {
		t.Parallel()

		source := new(MockUserSource)
		mgr, _ := newManager(source)

		w := httptest.NewRecorder()
		rec, err := mgr.Bind(context.Background(), w, testUser())
		require.NoError(t, err)

		got, err := mgr.RefreshIfStale(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, rec.VerifiedAt, got.VerifiedAt)
		source.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("stale record is re-verified and updated", func(t *testing.T) {
		t.Parallel()

		source := new(MockUserSource)
		updated := testUser()
		updated.FirstName = "Augusta"
		source.On("GetUser", mock.Anything, "user-1").Return(updated, nil)

		mgr, _ := newManager(source, session.WithFreshnessWindow(time.Nanosecond))

		w := httptest.NewRecorder()
		rec, err := mgr.Bind(context.Background(), w, testUser())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		got, err := mgr.RefreshIfStale(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", got.FirstName)
		assert.True(t, got.VerifiedAt.After(rec.VerifiedAt))
	})

	t.Run("gone backing account expires the session", func(t *testing.T) {
		t.Parallel()

		source := new(MockUserSource)
		source.On("GetUser", mock.Anything, "user-1").
			Return(reconcile.User{}, &reconcile.Error{Kind: reconcile.KindUserNotFound})

		mgr, store := newManager(source, session.WithFreshnessWindow(time.Nanosecond))

		w := httptest.NewRecorder()
		rec, err := mgr.Bind(context.Background(), w, testUser())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		_, err = mgr.RefreshIfStale(context.Background(), rec)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		_, err = store.Get(context.Background(), rec.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("transient lookup failure keeps stale record", func(t *testing.T) {
		t.Parallel()

		source := new(MockUserSource)
		source.On("GetUser", mock.Anything, "user-1").
			Return(reconcile.User{}, &reconcile.Error{Kind: reconcile.KindUnknown})

		mgr, _ := newManager(source, session.WithFreshnessWindow(time.Nanosecond))

		w := httptest.NewRecorder()
		rec, err := mgr.Bind(context.Background(), w, testUser())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		got, err := mgr.RefreshIfStale(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, rec.UserID, got.UserID)
	})
}

func TestManager_Touch_SlidesExpiry(t *testing.T) {
	t.Parallel()

	mgr, _ := newManager(new(MockUserSource), session.WithLifetime(time.Hour))

	w := httptest.NewRecorder()
	rec, err := mgr.Bind(context.Background(), w, testUser())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	touched, err := mgr.Touch(context.Background(), httptest.NewRecorder(), rec)
	require.NoError(t, err)
	assert.True(t, touched.ExpiresAt.After(rec.ExpiresAt))
}

func TestManager_Invalidate(t *testing.T) {
	t.Parallel()

	mgr, store := newManager(new(MockUserSource))

	w := httptest.NewRecorder()
	rec, err := mgr.Bind(context.Background(), w, testUser())
	require.NoError(t, err)

	clearW := httptest.NewRecorder()
	require.NoError(t, mgr.Invalidate(context.Background(), clearW, rec))

	_, err = store.Get(context.Background(), rec.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	cookies := clearW.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMemoryStore_ExpiredRecord(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	rec := session.Record{
		Token:     "tok1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	_, err := store.Get(context.Background(), "tok1")
	assert.ErrorIs(t, err, session.ErrSessionExpired)
}
