package session

import "time"

// Config holds session policy settings. The freshness window bounds how long
// copied identity fields may be served without re-verification.
type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"sonata_session"`
	Secret          string        `env:"SESSION_SECRET,required"`
	SecureCookies   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	Lifetime        time.Duration `env:"SESSION_LIFETIME" envDefault:"168h"`
	FreshnessWindow time.Duration `env:"SESSION_FRESHNESS_WINDOW" envDefault:"5m"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}
