package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatahq/sonata-api/pkg/session"
)

func TestCookieTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	transport := session.NewCookieTransport("sid", "test-secret", false)

	w := httptest.NewRecorder()
	require.NoError(t, transport.SetToken(w, "tok123", time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	token, err := transport.GetToken(r)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestCookieTransport_RejectsTamperedToken(t *testing.T) {
	t.Parallel()

	transport := session.NewCookieTransport("sid", "test-secret", false)

	w := httptest.NewRecorder()
	require.NoError(t, transport.SetToken(w, "tok123", time.Hour))
	cookie := w.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "evil" + cookie.Value[4:]})

	_, err := transport.GetToken(r)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestCookieTransport_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := session.NewCookieTransport("sid", "secret-a", false)
	verifier := session.NewCookieTransport("sid", "secret-b", false)

	w := httptest.NewRecorder()
	require.NoError(t, signer.SetToken(w, "tok123", time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])

	_, err := verifier.GetToken(r)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestCookieTransport_MissingCookie(t *testing.T) {
	t.Parallel()

	transport := session.NewCookieTransport("sid", "test-secret", false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := transport.GetToken(r)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestCookieTransport_ClearToken(t *testing.T) {
	t.Parallel()

	transport := session.NewCookieTransport("sid", "test-secret", false)

	w := httptest.NewRecorder()
	require.NoError(t, transport.ClearToken(w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
