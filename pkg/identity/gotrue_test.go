package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatahq/sonata-api/pkg/identity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *identity.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return identity.NewClient(identity.Config{
		BaseURL:    srv.URL,
		PublicKey:  "public-key",
		ServiceKey: "service-key",
	})
}

func TestClient_CreateAccount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/signup", r.URL.Path)
		assert.Equal(t, "public-key", r.Header.Get("apikey"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "user-1",
			"email": "a@b.com",
			"user_metadata": map[string]any{
				"account_type": "teacher",
				"first_name":   "Ada",
				"last_name":    "Lovelace",
			},
		})
	})

	rec, err := client.CreateAccount(context.Background(), "a@b.com", "longenough1", map[string]any{
		"account_type": "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.ID)
	assert.Equal(t, "teacher", rec.Claims.AccountType)
	assert.Equal(t, "Ada", rec.Claims.FirstName)
	assert.False(t, rec.Claims.ProfileCompleted)
}

func TestClient_CreateAccount_SessionShapedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt",
			"user": map[string]any{
				"id":    "user-2",
				"email": "b@c.com",
			},
		})
	})

	rec, err := client.CreateAccount(context.Background(), "b@c.com", "longenough1", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-2", rec.ID)
}

func TestClient_CreateAccount_DuplicateEmail(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"msg": "User already registered"})
	})

	_, err := client.CreateAccount(context.Background(), "a@b.com", "longenough1", nil)
	assert.ErrorIs(t, err, identity.ErrDuplicateEmail)
}

func TestClient_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("success unwraps session user", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "jwt",
				"user": map[string]any{
					"id":            "user-1",
					"email":         "a@b.com",
					"user_metadata": map[string]any{"account_type": "student"},
				},
			})
		})

		rec, err := client.Authenticate(context.Background(), "a@b.com", "longenough1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", rec.ID)
		assert.Equal(t, "student", rec.Claims.AccountType)
	})

	t.Run("bad credential", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error_description": "Invalid login credentials"})
		})

		_, err := client.Authenticate(context.Background(), "a@b.com", "wrong")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestClient_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("uses service key on admin route", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/users/user-1", r.URL.Path)
			assert.Equal(t, "service-key", r.Header.Get("apikey"))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "user-1", "email": "a@b.com"})
		})

		rec, err := client.GetByID(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", rec.Email)
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.GetByID(context.Background(), "ghost")
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})
}

func TestClient_FindByEmail_PagesUntilMatch(t *testing.T) {
	t.Parallel()

	page1 := make([]map[string]any, 0, 100)
	for i := 0; i < 100; i++ {
		page1 = append(page1, map[string]any{"id": "filler", "email": "filler@example.com"})
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_ = json.NewEncoder(w).Encode(map[string]any{"users": page1})
		case "2":
			_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{
				{"id": "user-9", "email": "target@example.com"},
			}})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	rec, err := client.FindByEmail(context.Background(), "target@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-9", rec.ID)
}

func TestClient_FindByEmail_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{
			{"id": "user-1", "email": "other@example.com"},
		}})
	})

	_, err := client.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestClient_DeleteByID_IdempotentOnMissing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, client.DeleteByID(context.Background(), "ghost"))
}

func TestClient_UpdateMetadata(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/users/user-1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		meta, ok := body["user_metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, meta["profile_completed"])

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "user-1"})
	})

	err := client.UpdateMetadata(context.Background(), "user-1", map[string]any{
		identity.MetaProfileCompleted: true,
	})
	assert.NoError(t, err)
}

func TestClient_VerifyResetToken(t *testing.T) {
	t.Parallel()

	t.Run("valid token resolves user", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/verify", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "recovery", body["type"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "jwt",
				"user":         map[string]any{"id": "user-1", "email": "a@b.com"},
			})
		})

		rec, err := client.VerifyResetToken(context.Background(), "tok123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", rec.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"msg": "Token has expired or is invalid"})
		})

		_, err := client.VerifyResetToken(context.Background(), "stale")
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})
}
