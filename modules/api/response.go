package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// JSONResponse is the standard response envelope.
type JSONResponse struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries machine-readable failure information.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, JSONResponse{Code: "ok", Data: data})
}

func respondErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, JSONResponse{
		Code:  code,
		Error: &ErrorDetail{Code: code, Message: message},
	})
}

// respondEngineError maps a reconciliation engine failure to a JSON error.
// An incomplete OAuth account carries an account_deleted flag in meta so
// clients can tell a cleaned-up login from a plain signup-required state.
func respondEngineError(w http.ResponseWriter, err error) {
	kind := reconcile.KindOf(err)
	detail := &ErrorDetail{Code: string(kind), Message: err.Error()}

	if fields := reconcile.ValidationFields(err); len(fields) > 0 {
		detail.Details = make(map[string][]string, len(fields))
		for _, f := range fields {
			detail.Details[f.Field] = append(detail.Details[f.Field], f.Message)
		}
	}

	body := JSONResponse{Code: string(kind), Error: detail}

	var engineErr *reconcile.Error
	if kind == reconcile.KindIncompleteAccount && errors.As(err, &engineErr) {
		body.Meta = map[string]any{"account_deleted": engineErr.AccountDeleted}
	}

	writeJSON(w, statusForKind(kind), body)
}

func statusForKind(kind reconcile.ErrorKind) int {
	switch kind {
	case reconcile.KindValidationFailed, reconcile.KindWeakPassword, reconcile.KindInvalidEmail:
		return http.StatusUnprocessableEntity
	case reconcile.KindDuplicateEmail, reconcile.KindIncompleteAccount:
		return http.StatusConflict
	case reconcile.KindInvalidCredentials, reconcile.KindEmailUnconfirmed:
		return http.StatusUnauthorized
	case reconcile.KindSignupDisabled:
		return http.StatusForbidden
	case reconcile.KindUserNotFound:
		return http.StatusNotFound
	case reconcile.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON binds a JSON request body. Unknown fields are ignored; only
// malformed JSON fails.
func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
