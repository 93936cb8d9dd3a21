// Package api exposes the HTTP surface of the service: session-cookie
// authentication, Google OAuth, password recovery, profile management and the
// public teacher directory. Handlers translate reconciliation engine errors
// into stable JSON error codes; no provider error reaches a client raw.
package api
