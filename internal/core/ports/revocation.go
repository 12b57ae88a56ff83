package ports

import (
	"context"
	"time"
)

// RevocationStore is the durable set of revoked token digests.
type RevocationStore interface {
	// Add records digest; adding an existing digest is a no-op.
	Add(ctx context.Context, digest string, revokedAt, expiresAt time.Time) error
	Exists(ctx context.Context, digest string) (bool, error)
	// DeleteExpired removes entries whose token expiry is at or before now.
	// Entries stored without an expiry are kept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RevocationCache is an optional fast path in front of the RevocationStore.
type RevocationCache interface {
	Mark(ctx context.Context, digest string, ttl time.Duration) error
	Contains(ctx context.Context, digest string) (bool, error)
}
