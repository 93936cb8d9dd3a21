package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig holds Google OAuth application credentials.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
}

// GoogleAdapter exchanges Google authorization codes for normalized
// OAuthClaims consumed by the reconciliation flow.
type GoogleAdapter struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// GoogleOption configures a GoogleAdapter.
type GoogleOption func(*GoogleAdapter)

// WithGoogleHTTPClient replaces the HTTP client used for userinfo calls.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(a *GoogleAdapter) {
		if hc != nil {
			a.httpClient = hc
		}
	}
}

// WithGoogleEndpoints overrides the token and userinfo endpoints for tests.
func WithGoogleEndpoints(tokenURL, userInfoURL string) GoogleOption {
	return func(a *GoogleAdapter) {
		a.conf.Endpoint = oauth2.Endpoint{TokenURL: tokenURL}
		a.userInfoURL = userInfoURL
	}
}

// NewGoogleAdapter creates a Google OAuth adapter.
func NewGoogleAdapter(cfg GoogleConfig, opts ...GoogleOption) *GoogleAdapter {
	a := &GoogleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AuthURL builds the Google authorization URL with the given state token.
func (a *GoogleAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for the user's normalized claims.
func (a *GoogleAdapter) Exchange(ctx context.Context, code string) (OAuthClaims, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return OAuthClaims{}, fmt.Errorf("%w: code exchange failed", ErrInvalidToken)
	}

	u, err := a.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return OAuthClaims{}, err
	}
	if u.Email == "" {
		return OAuthClaims{}, fmt.Errorf("%w: no email claim from provider", ErrUnexpected)
	}

	return OAuthClaims{
		Subject:       u.ID,
		Email:         u.Email,
		EmailVerified: u.VerifiedEmail,
		FullName:      u.Name,
		GivenName:     u.GivenName,
		FamilyName:    u.FamilyName,
		Picture:       u.Picture,
	}, nil
}

func (a *GoogleAdapter) fetchUserInfo(ctx context.Context, accessToken string) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrUnexpected, resp.StatusCode)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrUnexpected, err)
	}
	return &u, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}
