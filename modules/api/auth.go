package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sonatahq/sonata-api/pkg/passreset"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

func (rt *Router) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	user, err := rt.engine.CreateAccount(r.Context(), reconcile.CreateAccountInput{
		Email:       req.Email,
		Password:    req.Password,
		AccountType: reconcile.AccountType(req.AccountType),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if _, err := rt.sessions.Bind(r.Context(), w, user); err != nil {
		rt.log.ErrorContext(r.Context(), "failed to create session after signup",
			slog.String("user_id", user.ID), slog.Any("error", err))
		respondErrorCode(w, http.StatusInternalServerError, "session_failed", "account created but login failed")
		return
	}

	respondData(w, http.StatusCreated, toUserPayload(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	user, err := rt.engine.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if _, err := rt.sessions.Bind(r.Context(), w, user); err != nil {
		rt.log.ErrorContext(r.Context(), "failed to create session after login",
			slog.String("user_id", user.ID), slog.Any("error", err))
		respondErrorCode(w, http.StatusInternalServerError, "session_failed", "login failed")
		return
	}

	respondData(w, http.StatusOK, toUserPayload(user))
}

// logout destroys the session if one exists. Logging out without a session is
// not an error.
func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())
	if info.record != nil {
		if err := rt.sessions.Invalidate(r.Context(), w, *info.record); err != nil {
			rt.log.WarnContext(r.Context(), "failed to invalidate session on logout", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// check reports the session state without requiring one. session_cleared
// tells clients a previously valid cookie was just retired.
func (rt *Router) check(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())

	if info.record == nil || !info.record.IsAuthenticated() {
		body := JSONResponse{Code: "ok", Data: map[string]any{"authenticated": false}}
		if info.cleared {
			body.Meta = map[string]any{"session_cleared": true}
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	rec := info.record
	respondData(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":                rec.UserID,
			"email":             rec.Email,
			"account_type":      rec.AccountType,
			"first_name":        rec.FirstName,
			"last_name":         rec.LastName,
			"profile_completed": rec.ProfileCompleted,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// forgotPassword always reports success so the endpoint cannot be used to
// probe which emails are registered.
func (rt *Router) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	rt.passwords.Forgot(r.Context(), req.Email)
	respondData(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (rt *Router) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	if err := rt.passwords.Reset(r.Context(), req.Token, req.Password); err != nil {
		respondPasswordError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (rt *Router) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	info := sessionFrom(r.Context())
	if err := rt.passwords.Change(r.Context(), info.record.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondPasswordError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func respondPasswordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, passreset.ErrInvalidToken):
		respondErrorCode(w, http.StatusBadRequest, "invalid_token", "reset token is invalid or expired")
	case errors.Is(err, passreset.ErrTokenReused):
		respondErrorCode(w, http.StatusConflict, "token_already_used", "reset token was already used")
	case errors.Is(err, passreset.ErrWeakPassword):
		respondErrorCode(w, http.StatusUnprocessableEntity, "weak_password", "password must be at least 8 characters")
	case errors.Is(err, passreset.ErrSamePassword):
		respondErrorCode(w, http.StatusUnprocessableEntity, "same_password", "new password must differ from the current one")
	case errors.Is(err, passreset.ErrInvalidCredentials):
		respondErrorCode(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect")
	default:
		respondErrorCode(w, http.StatusInternalServerError, "unknown", "password update failed")
	}
}
