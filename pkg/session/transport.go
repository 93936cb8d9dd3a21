package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// Transport moves the session token between the record store and the client.
type Transport interface {
	GetToken(r *http.Request) (string, error)
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error
	ClearToken(w http.ResponseWriter) error
}

// CookieTransport carries the token in an HMAC-signed cookie. The signature
// rejects tampered tokens before any store lookup happens.
type CookieTransport struct {
	name   string
	secret []byte
	secure bool
}

// NewCookieTransport creates a cookie-based transport.
func NewCookieTransport(name, secret string, secure bool) *CookieTransport {
	return &CookieTransport{
		name:   name,
		secret: []byte(secret),
		secure: secure,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(t.name)
	if err != nil {
		return "", ErrSessionNotFound
	}

	token, sig, found := strings.Cut(cookie.Value, ".")
	if !found || token == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(t.sign(token))) {
		return "", ErrInvalidToken
	}

	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token + "." + t.sign(token),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (t *CookieTransport) sign(token string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

var _ Transport = (*CookieTransport)(nil)
