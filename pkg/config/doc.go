// Package config loads application configuration from environment variables
// into typed structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: .env
// files are loaded into the process environment, then struct fields annotated
// with `env` tags are populated from it. Each configuration type is parsed at
// most once per process and cached by its fully-qualified type name.
//
//	type SessionConfig struct {
//	    CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
//	    Freshness  time.Duration `env:"SESSION_FRESHNESS_WINDOW" envDefault:"5m"`
//	}
//
//	var cfg SessionConfig
//	config.MustLoad(&cfg)
//
// Use ResetCache in tests that mutate the environment between loads.
package config
