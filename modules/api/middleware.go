package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sonatahq/sonata-api/pkg/clientip"
	"github.com/sonatahq/sonata-api/pkg/session"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// sessionInfo is what the session middleware leaves in the request context.
// Cleared reports that a cookie pointed at a session that no longer holds: the
// middleware destroyed it and clients should treat themselves as logged out.
type sessionInfo struct {
	record  *session.Record
	cleared bool
}

func sessionFrom(ctx context.Context) sessionInfo {
	info, _ := ctx.Value(sessionCtxKey).(sessionInfo)
	return info
}

// withSession resolves the request's session, re-verifies it against the
// canonical user once stale, and slides the expiry on activity. The logout
// path is exempt from refresh and touch so logging out never resurrects or
// extends a session.
func (rt *Router) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rec, err := rt.sessions.Current(ctx, r)
		if err != nil {
			info := sessionInfo{cleared: errors.Is(err, session.ErrSessionExpired)}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey, info)))
			return
		}

		if r.URL.Path != "/auth/logout" {
			refreshed, err := rt.sessions.RefreshIfStale(ctx, rec)
			if err != nil {
				if err := rt.sessions.Invalidate(ctx, w, rec); err != nil {
					rt.log.WarnContext(ctx, "failed to invalidate expired session", slog.Any("error", err))
				}
				info := sessionInfo{cleared: true}
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey, info)))
				return
			}
			rec = refreshed

			if touched, err := rt.sessions.Touch(ctx, w, rec); err != nil {
				rt.log.WarnContext(ctx, "failed to slide session expiry", slog.Any("error", err))
			} else {
				rec = touched
			}
		}

		info := sessionInfo{record: &rec}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey, info)))
	})
}

// requireAuth rejects requests without an authenticated session.
func (rt *Router) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := sessionFrom(r.Context())
		if info.record == nil || !info.record.IsAuthenticated() {
			respondErrorCode(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitByIP throttles per client IP with a token bucket.
func (rt *Router) limitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.FromRequest(r)
		if ip == "" {
			ip = "unknown"
		}

		if retryAfter, ok := rt.authLimiter.allow(ip); !ok {
			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			respondErrorCode(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
