package objectstore

import (
	"context"
	"time"
)

// Storage is the object persistence surface consumed by the profile flows.
type Storage interface {
	// Upload stores the bytes under a fresh key owned by ownerID and returns
	// the storage reference.
	Upload(ctx context.Context, ownerID string, data []byte, contentType string) (string, error)

	// Delete removes one object. Deleting an absent object succeeds.
	Delete(ctx context.Context, storageRef string) error

	// SignedURL returns a time-limited GET URL for a private object.
	SignedURL(ctx context.Context, storageRef string, ttl time.Duration) (string, error)

	// DeleteAllExcept removes every object owned by ownerID except keepRef.
	// Used to garbage-collect superseded profile images.
	DeleteAllExcept(ctx context.Context, ownerID, keepRef string) error
}
