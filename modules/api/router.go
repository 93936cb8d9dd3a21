package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/profilestore"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
	"github.com/sonatahq/sonata-api/pkg/session"
)

// Engine is the reconciliation surface the handlers depend on.
type Engine interface {
	CreateAccount(ctx context.Context, in reconcile.CreateAccountInput) (reconcile.User, error)
	Authenticate(ctx context.Context, email, password string) (reconcile.User, error)
	GetUser(ctx context.Context, id string) (reconcile.User, error)
	ReconcileOAuth(ctx context.Context, identityID string, claims identity.OAuthClaims, mode reconcile.Mode) (reconcile.User, error)
	PersistClaims(ctx context.Context, u reconcile.User) error
	CompleteProfile(ctx context.Context, userID string, in reconcile.ProfileInput) (reconcile.User, error)
	DeleteAccount(ctx context.Context, userID string) error
	SearchTeachers(ctx context.Context, query string) ([]profilestore.TeacherSummary, error)
}

// PasswordService drives the forgot/reset/change password flows.
type PasswordService interface {
	Forgot(ctx context.Context, email string)
	Reset(ctx context.Context, token, newPassword string) error
	Change(ctx context.Context, userID, currentPassword, newPassword string) error
}

// OAuthExchanger turns authorization codes into normalized claims.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (identity.OAuthClaims, error)
}

// IdentityDirectory resolves or creates identity records for OAuth logins.
type IdentityDirectory interface {
	FindByEmail(ctx context.Context, email string) (identity.Record, error)
	CreateOAuthAccount(ctx context.Context, email string, meta map[string]any) (identity.Record, error)
}

// Router wires the HTTP handlers to their dependencies.
type Router struct {
	cfg       Config
	engine    Engine
	sessions  *session.Manager
	passwords PasswordService
	oauth     OAuthExchanger
	directory IdentityDirectory

	log         *slog.Logger
	registry    *prometheus.Registry
	metrics     *httpMetrics
	authLimiter *ipLimiter
}

// Option configures a Router.
type Option func(*Router)

// WithPasswordService mounts the password recovery endpoints.
func WithPasswordService(svc PasswordService) Option {
	return func(rt *Router) { rt.passwords = svc }
}

// WithGoogleOAuth mounts the Google OAuth endpoints.
func WithGoogleOAuth(exchanger OAuthExchanger, directory IdentityDirectory) Option {
	return func(rt *Router) {
		rt.oauth = exchanger
		rt.directory = directory
	}
}

// WithLogger sets the request-scope logger.
func WithLogger(log *slog.Logger) Option {
	return func(rt *Router) {
		if log != nil {
			rt.log = log
		}
	}
}

// WithMetrics registers request metrics on the registry and mounts /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(rt *Router) {
		if reg != nil {
			rt.registry = reg
			rt.metrics = newHTTPMetrics(reg)
		}
	}
}

// New creates the HTTP router. Password and OAuth endpoints are mounted only
// when their services are provided.
func New(cfg Config, engine Engine, sessions *session.Manager, opts ...Option) *Router {
	rt := &Router{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.authLimiter = newIPLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	return rt
}

// Handler builds the chi router with the full middleware chain.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if rt.metrics != nil {
		r.Use(rt.observeRequests)
	}

	r.Get("/health", rt.health)
	if rt.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.withSession)

		r.Route("/auth", func(r chi.Router) {
			r.Use(rt.limitByIP)

			r.Post("/signup", rt.signup)
			r.Post("/login", rt.login)
			r.Post("/logout", rt.logout)
			r.Get("/check", rt.check)

			if rt.passwords != nil {
				r.Post("/forgot-password", rt.forgotPassword)
				r.Post("/reset-password", rt.resetPassword)
				r.With(rt.requireAuth).Post("/change-password", rt.changePassword)
			}

			if rt.oauth != nil {
				r.Get("/oauth/google/url", rt.googleAuthURL)
				r.Get("/oauth/google/callback", rt.googleCallback)
			}
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(rt.requireAuth)

			r.Get("/", rt.me)
			r.Delete("/", rt.deleteMe)
			r.Post("/profile", rt.updateProfile)
			r.Put("/profile", rt.updateProfile)
			r.Get("/profile-image", rt.profileImage)
		})

		r.Get("/teachers", rt.searchTeachers)
	})

	return r
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}
