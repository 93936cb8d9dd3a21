package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// googleAuthURL hands the client a provider authorization URL with a signed
// state token pinning the flow mode and, for signup, the account type.
func (rt *Router) googleAuthURL(w http.ResponseWriter, r *http.Request) {
	mode := reconcile.Mode(r.URL.Query().Get("mode"))
	if mode != reconcile.ModeSignup && mode != reconcile.ModeLogin {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "mode must be signup or login")
		return
	}

	accountType := r.URL.Query().Get("account_type")
	if mode == reconcile.ModeSignup && !reconcile.AccountType(accountType).Valid() {
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "account_type must be student, teacher or parent")
		return
	}
	if mode == reconcile.ModeLogin {
		accountType = ""
	}

	state, err := signState(rt.cfg.OAuthStateSecret, oauthState{
		Mode:        string(mode),
		AccountType: accountType,
	})
	if err != nil {
		respondErrorCode(w, http.StatusInternalServerError, "unknown", "failed to create state token")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"url": rt.oauth.AuthURL(state)})
}

// googleCallback completes the provider redirect: verify state, exchange the
// code, resolve or create the identity record, reconcile, persist the merged
// claims and bind a session. All outcomes redirect back to the frontend.
func (rt *Router) googleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if provErr := r.URL.Query().Get("error"); provErr != "" {
		rt.redirectCallbackError(w, r, "oauth_denied", false)
		return
	}

	st, err := verifyState(rt.cfg.OAuthStateSecret, r.URL.Query().Get("state"), rt.cfg.OAuthStateTTL)
	if err != nil {
		rt.redirectCallbackError(w, r, "invalid_state", false)
		return
	}
	mode := reconcile.Mode(st.Mode)

	claims, err := rt.oauth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		rt.log.WarnContext(ctx, "oauth code exchange failed", slog.Any("error", err))
		rt.redirectCallbackError(w, r, "oauth_exchange_failed", false)
		return
	}
	claims.AccountType = st.AccountType

	rec, err := rt.directory.FindByEmail(ctx, claims.Email)
	if errors.Is(err, identity.ErrNotFound) {
		rec, err = rt.directory.CreateOAuthAccount(ctx, claims.Email, map[string]any{
			identity.MetaFullName: claims.FullName,
			identity.MetaPicture:  claims.Picture,
		})
	}
	if err != nil {
		rt.log.ErrorContext(ctx, "failed to resolve oauth identity",
			slog.String("email", claims.Email), slog.Any("error", err))
		rt.redirectCallbackError(w, r, "oauth_failed", false)
		return
	}

	user, err := rt.engine.ReconcileOAuth(ctx, rec.ID, claims, mode)
	if err != nil {
		var engineErr *reconcile.Error
		if errors.As(err, &engineErr) && engineErr.Kind == reconcile.KindIncompleteAccount {
			rt.redirectCallbackError(w, r, "incomplete_account", engineErr.AccountDeleted)
			return
		}
		rt.log.ErrorContext(ctx, "oauth reconciliation failed",
			slog.String("user_id", rec.ID), slog.Any("error", err))
		rt.redirectCallbackError(w, r, string(reconcile.KindOf(err)), false)
		return
	}

	// Claim persistence is best-effort; the merge recomputes identically on
	// the next login.
	if err := rt.engine.PersistClaims(ctx, user); err != nil {
		rt.log.WarnContext(ctx, "failed to persist reconciled claims",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}

	if _, err := rt.sessions.Bind(ctx, w, user); err != nil {
		rt.log.ErrorContext(ctx, "failed to create session after oauth login",
			slog.String("user_id", user.ID), slog.Any("error", err))
		rt.redirectCallbackError(w, r, "session_failed", false)
		return
	}

	http.Redirect(w, r, rt.cfg.FrontendURL+"/auth/callback?status=success", http.StatusFound)
}

func (rt *Router) redirectCallbackError(w http.ResponseWriter, r *http.Request, code string, accountDeleted bool) {
	q := url.Values{"error": {code}}
	if code == "incomplete_account" {
		q.Set("account_deleted", strconv.FormatBool(accountDeleted))
	}
	http.Redirect(w, r, rt.cfg.FrontendURL+"/auth/callback?"+q.Encode(), http.StatusFound)
}
