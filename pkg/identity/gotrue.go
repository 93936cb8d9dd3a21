package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds identity provider connection settings.
type Config struct {
	BaseURL    string        `env:"IDENTITY_API_URL,required"`
	PublicKey  string        `env:"IDENTITY_PUBLIC_KEY,required"`
	ServiceKey string        `env:"IDENTITY_SERVICE_KEY,required"`
	Timeout    time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
}

// Client is a GoTrue-compatible REST implementation of Provider.
type Client struct {
	baseURL    string
	publicKey  string
	serviceKey string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client. Useful for tests and for
// injecting instrumented transports.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Provider talking to a GoTrue-compatible endpoint.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		publicKey:  cfg.PublicKey,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gtUser struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	EmailConfirmedAt *time.Time      `json:"email_confirmed_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	UserMetadata     json.RawMessage `json:"user_metadata"`
}

func (u gtUser) toRecord() Record {
	rec := Record{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Claims:    claimsFromMetadata(u.UserMetadata),
	}
	if u.EmailConfirmedAt != nil {
		rec.EmailConfirmedAt = *u.EmailConfirmedAt
	}
	return rec
}

// gtError covers the error body shapes the provider emits across endpoints.
type gtError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gtError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.ErrorField} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CreateAccount registers a credential account via POST /signup.
func (c *Client) CreateAccount(ctx context.Context, email, password string, meta map[string]any) (Record, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	}

	// Depending on autoconfirm settings the endpoint returns either the bare
	// user object or a session wrapping it.
	var out struct {
		gtUser
		User *gtUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", c.publicKey, body, &out); err != nil {
		return Record{}, err
	}
	if out.User != nil {
		return out.User.toRecord(), nil
	}
	return out.gtUser.toRecord(), nil
}

// CreateOAuthAccount registers a pre-confirmed account via the admin API.
func (c *Client) CreateOAuthAccount(ctx context.Context, email string, meta map[string]any) (Record, error) {
	body := map[string]any{
		"email":         email,
		"email_confirm": true,
		"user_metadata": meta,
	}

	var out gtUser
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, body, &out); err != nil {
		return Record{}, err
	}
	return out.toRecord(), nil
}

// Authenticate verifies a credential via the password grant.
func (c *Client) Authenticate(ctx context.Context, email, password string) (Record, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var out struct {
		User gtUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.publicKey, body, &out); err != nil {
		return Record{}, err
	}
	return out.User.toRecord(), nil
}

// GetByID fetches a record through the admin API.
func (c *Client) GetByID(ctx context.Context, id string) (Record, error) {
	var out gtUser
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), c.serviceKey, nil, &out); err != nil {
		return Record{}, err
	}
	return out.toRecord(), nil
}

// FindByEmail scans the admin user listing for an exact email match. The
// admin API offers no email filter, so this pages through the listing until
// a match or the final page.
func (c *Client) FindByEmail(ctx context.Context, email string) (Record, error) {
	const perPage = 100

	for page := 1; ; page++ {
		var out struct {
			Users []gtUser `json:"users"`
		}
		path := "/admin/users?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)
		if err := c.do(ctx, http.MethodGet, path, c.serviceKey, nil, &out); err != nil {
			return Record{}, err
		}

		for _, u := range out.Users {
			if u.Email == email {
				return u.toRecord(), nil
			}
		}
		if len(out.Users) < perPage {
			return Record{}, ErrNotFound
		}
	}
}

// UpdateMetadata merges metadata keys via the admin API.
func (c *Client) UpdateMetadata(ctx context.Context, id string, meta map[string]any) error {
	body := map[string]any{"user_metadata": meta}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), c.serviceKey, body, nil)
}

// UpdatePassword replaces the credential via the admin API.
func (c *Client) UpdatePassword(ctx context.Context, id, password string) error {
	body := map[string]any{"password": password}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), c.serviceKey, body, nil)
}

// DeleteByID removes a record. A missing record is treated as success so the
// operation stays idempotent for compensating cleanup paths.
func (c *Client) DeleteByID(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), c.serviceKey, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// SendPasswordReset triggers a recovery email via POST /recover.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/recover", c.publicKey, map[string]any{"email": email}, nil)
}

// VerifyResetToken exchanges a recovery token for the record it belongs to.
func (c *Client) VerifyResetToken(ctx context.Context, token string) (Record, error) {
	body := map[string]any{
		"type":  "recovery",
		"token": token,
	}

	var out struct {
		User gtUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/verify", c.publicKey, body, &out); err != nil {
		if errors.Is(err, ErrUnexpected) || errors.Is(err, ErrNotFound) {
			return Record{}, ErrInvalidToken
		}
		return Record{}, err
	}
	if out.User.ID == "" {
		return Record{}, ErrInvalidToken
	}
	return out.User.toRecord(), nil
}

func (c *Client) do(ctx context.Context, method, path, key string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrUnexpected, err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnexpected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var ge gtError
		_ = json.NewDecoder(resp.Body).Decode(&ge)
		return Classify(resp.StatusCode, ge.text())
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnexpected, err)
		}
	}
	return nil
}

// Compile-time interface assertion
var _ Provider = (*Client)(nil)
