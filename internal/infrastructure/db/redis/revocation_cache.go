package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationCache remembers revoked token digests until the token would have
// expired anyway. Key format: revoked:<sha256 hex>
type RevocationCache struct {
	client *redis.Client
}

// NewRevocationCache creates a RevocationCache wrapping the given Redis client.
func NewRevocationCache(client *redis.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

// Mark caches digest for ttl.
func (c *RevocationCache) Mark(ctx context.Context, digest string, ttl time.Duration) error {
	if err := c.client.Set(ctx, revokedKey(digest), "1", ttl).Err(); err != nil {
		return fmt.Errorf("cache revoked token: %w", err)
	}
	return nil
}

// Contains reports whether digest is cached. A miss says nothing; callers
// must fall back to the durable store.
func (c *RevocationCache) Contains(ctx context.Context, digest string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKey(digest)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation cache lookup: %w", err)
	}
	return n > 0, nil
}

func revokedKey(digest string) string {
	return revokedKeyPrefix + digest
}
