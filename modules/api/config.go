package api

import "time"

// Config holds HTTP-surface settings.
type Config struct {
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// FrontendURL is where OAuth callbacks redirect after setting the
	// session cookie.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	OAuthStateSecret string        `env:"OAUTH_STATE_SECRET,required"`
	OAuthStateTTL    time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`

	AuthRatePerMinute int `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	AuthRateBurst     int `env:"AUTH_RATE_BURST" envDefault:"10"`

	MaxProfileImageBytes int64 `env:"MAX_PROFILE_IMAGE_BYTES" envDefault:"5242880"`
}
