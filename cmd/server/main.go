package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sonatahq/sonata-api/modules/api"
	"github.com/sonatahq/sonata-api/pkg/config"
	"github.com/sonatahq/sonata-api/pkg/httpserver"
	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/logger"
	"github.com/sonatahq/sonata-api/pkg/mailer"
	"github.com/sonatahq/sonata-api/pkg/objectstore"
	"github.com/sonatahq/sonata-api/pkg/passreset"
	"github.com/sonatahq/sonata-api/pkg/profilestore"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
	"github.com/sonatahq/sonata-api/pkg/redis"
	"github.com/sonatahq/sonata-api/pkg/session"
)

type appConfig struct {
	AppName string `env:"APP_NAME" envDefault:"sonata-api"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	PasswordResetTokenTTL time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		appCfg     appConfig
		httpCfg    httpserver.Config
		identCfg   identity.Config
		pgCfg      profilestore.Config
		s3Cfg      objectstore.Config
		redisCfg   redis.Config
		sessionCfg session.Config
		mailCfg    mailer.Config
		apiCfg     api.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&identCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&s3Cfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&mailCfg)
	config.MustLoad(&apiCfg)

	log := logger.New(logger.WithEnvironment(appCfg.AppEnv, appCfg.AppName))
	logger.SetAsDefault(log)

	pool, err := profilestore.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := profilestore.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	profiles := profilestore.NewPostgresStore(pool)

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	objects, err := objectstore.NewS3Storage(ctx, s3Cfg)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	provider := identity.NewClient(identCfg)
	engine := reconcile.New(provider, profiles, objects, reconcile.WithLogger(log))

	sessions := session.NewManager(
		session.NewRedisStore(redisClient),
		session.NewCookieTransport(sessionCfg.CookieName, sessionCfg.Secret, sessionCfg.SecureCookies),
		engine,
		session.WithLifetime(sessionCfg.Lifetime),
		session.WithFreshnessWindow(sessionCfg.FreshnessWindow),
		session.WithLogger(log),
	)

	var sender mailer.EmailSender
	if mailCfg.PostmarkServerToken != "" {
		sender, err = mailer.NewPostmarkSender(mailCfg)
		if err != nil {
			return fmt.Errorf("init mailer: %w", err)
		}
	} else {
		log.InfoContext(ctx, "postmark token not set, using log-only email sender")
		sender = mailer.NewLogSender(log)
	}

	passwords := passreset.NewService(provider,
		passreset.NewRedisTokenSet(redisClient, appCfg.PasswordResetTokenTTL),
		passreset.WithMailer(sender),
		passreset.WithLogger(log),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []api.Option{
		api.WithPasswordService(passwords),
		api.WithLogger(log),
		api.WithMetrics(registry),
	}

	// Google OAuth is optional; without client credentials the endpoints are
	// simply not mounted.
	if os.Getenv("GOOGLE_OAUTH_CLIENT_ID") != "" {
		var googleCfg identity.GoogleConfig
		config.MustLoad(&googleCfg)
		opts = append(opts, api.WithGoogleOAuth(identity.NewGoogleAdapter(googleCfg), provider))
	} else {
		log.InfoContext(ctx, "google oauth credentials not set, oauth endpoints disabled")
	}

	router := api.New(apiCfg, engine, sessions, opts...)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router.Handler())
}
