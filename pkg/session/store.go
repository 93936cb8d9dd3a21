package session

import "context"

// Store defines the interface for session persistence.
type Store interface {
	// Save inserts or replaces a record keyed by its token.
	Save(ctx context.Context, rec Record) error

	// Get retrieves a record by token, returning ErrSessionNotFound for
	// unknown tokens and ErrSessionExpired for lapsed ones.
	Get(ctx context.Context, token string) (Record, error)

	// Delete removes a record. Deleting an absent record succeeds.
	Delete(ctx context.Context, token string) error
}
