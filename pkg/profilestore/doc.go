// Package profilestore holds the relational side of a user: the base profile
// row plus the account-type-specific extension row (teacher or parent).
//
// The identity provider remains the system of record for credentials and
// primary claims; this package owns everything the directory and profile
// screens need. Access goes through the Store interface so the reconciliation
// engine can be tested against mocks, with a pgx/v5 implementation for
// production. Connect and Migrate bootstrap the pool and goose schema
// migrations.
package profilestore
