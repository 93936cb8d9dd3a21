package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidState marks a missing, tampered or expired OAuth state token.
var ErrInvalidState = errors.New("invalid oauth state")

// oauthState is the signed round-trip payload carried through the provider
// redirect. It pins the flow mode and, for signup, the chosen account type.
type oauthState struct {
	Mode        string `json:"mode"`
	AccountType string `json:"account_type,omitempty"`
	Nonce       string `json:"nonce"`
	IssuedAt    int64  `json:"iat"`
}

func signState(secret string, st oauthState) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	st.Nonce = base64.RawURLEncoding.EncodeToString(nonce)
	st.IssuedAt = time.Now().Unix()

	payload, err := json.Marshal(st)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + stateSignature(secret, encoded), nil
}

func verifyState(secret, token string, ttl time.Duration) (oauthState, error) {
	encoded, sig, found := strings.Cut(token, ".")
	if !found {
		return oauthState{}, ErrInvalidState
	}
	if !hmac.Equal([]byte(sig), []byte(stateSignature(secret, encoded))) {
		return oauthState{}, ErrInvalidState
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return oauthState{}, ErrInvalidState
	}

	var st oauthState
	if err := json.Unmarshal(payload, &st); err != nil {
		return oauthState{}, ErrInvalidState
	}
	if time.Since(time.Unix(st.IssuedAt, 0)) > ttl {
		return oauthState{}, ErrInvalidState
	}
	return st, nil
}

func stateSignature(secret, encoded string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
