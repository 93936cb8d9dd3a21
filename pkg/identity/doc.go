// Package identity wraps the hosted identity provider behind the Provider
// interface.
//
// The provider is the system of record for credentials and primary account
// claims (account type, names, profile-completed flag). Everything else in the
// application consumes it through Provider so the reconciliation engine and
// tests never touch the wire protocol directly.
//
// Client speaks a GoTrue-compatible REST API. Admin operations (lookup by id,
// metadata updates, deletion) use the service-role key; credential operations
// use the public key. Provider error text is translated into stable sentinel
// errors by the classification table in classify.go.
package identity
