package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonatahq/sonata-api/modules/api"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
	"github.com/sonatahq/sonata-api/pkg/session"
)

func testConfig() api.Config {
	return api.Config{
		CORSAllowedOrigins:   []string{"http://localhost:3000"},
		FrontendURL:          "http://front.test",
		OAuthStateSecret:     "state-secret",
		OAuthStateTTL:        10 * time.Minute,
		AuthRatePerMinute:    6000,
		AuthRateBurst:        1000,
		MaxProfileImageBytes: 5 << 20,
	}
}

func newTestAPI(t *testing.T, engine *MockEngine, opts ...api.Option) (http.Handler, *session.Manager) {
	t.Helper()

	store := session.NewMemoryStore(0)
	t.Cleanup(store.Close)
	transport := session.NewCookieTransport("sid", "test-secret", false)
	mgr := session.NewManager(store, transport, engine)

	rt := api.New(testConfig(), engine, mgr, opts...)
	return rt.Handler(), mgr
}

func testUser() reconcile.User {
	return reconcile.User{
		ID:               "user-1",
		Email:            "ada@example.com",
		AccountType:      reconcile.AccountTypeTeacher,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		ProfileCompleted: true,
	}
}

// loginCookies binds a session for the user and returns the cookies a client
// would hold afterwards.
func loginCookies(t *testing.T, mgr *session.Manager, user reconcile.User) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	_, err := mgr.Bind(context.Background(), w, user)
	require.NoError(t, err)
	return w.Result().Cookies()
}

func doRequest(t *testing.T, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}
