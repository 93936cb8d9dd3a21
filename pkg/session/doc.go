// Package session binds a canonical user to a server-side session record and
// owns the refresh, expiry and invalidation policy.
//
// The record carries only the identity fields needed for fast authorization
// checks. It is re-verified against the canonical user view once it is older
// than the freshness window; if the backing account is gone the session
// expires and the caller clears it. Expiry slides on authenticated activity.
// A logout must never resurrect its own session, so invalidation deletes the
// record and the caller suppresses the per-request sliding refresh for that
// request.
//
// Tokens travel in an HMAC-signed cookie. Stores: process-local memory with
// a cleanup loop, and Redis with TTL-based eviction for multi-replica
// deployments.
package session
