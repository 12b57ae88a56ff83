package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamtask/tasktracker/internal/core/ports"
)

// RevocationRegistry records tokens that must no longer authenticate.
// The store is authoritative; the optional cache only short-circuits hits.
type RevocationRegistry struct {
	store ports.RevocationStore
	cache ports.RevocationCache
	now   func() time.Time
	log   zerolog.Logger
}

// NewRevocationRegistry returns a registry backed by store. cache may be nil.
func NewRevocationRegistry(store ports.RevocationStore, cache ports.RevocationCache, log zerolog.Logger) *RevocationRegistry {
	return &RevocationRegistry{store: store, cache: cache, now: time.Now, log: log}
}

// WithClock replaces the time source.
func (r *RevocationRegistry) WithClock(now func() time.Time) *RevocationRegistry {
	r.now = now
	return r
}

// TokenDigest is the key a token is stored under.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Revoke marks token as unusable. expiresAt is the token's own expiry and is
// only used to decide when the entry may be pruned; pass the zero time if it
// is unknown. Revoking twice is a no-op.
func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	digest := TokenDigest(token)
	now := r.now().UTC()

	if err := r.store.Add(ctx, digest, now, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	if r.cache != nil && !expiresAt.IsZero() {
		if ttl := expiresAt.Sub(now); ttl > 0 {
			if err := r.cache.Mark(ctx, digest, ttl); err != nil {
				r.log.Warn().Err(err).Msg("failed to cache revoked token")
			}
		}
	}
	return nil
}

// IsRevoked reports whether token has been revoked.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	digest := TokenDigest(token)

	if r.cache != nil {
		hit, err := r.cache.Contains(ctx, digest)
		if err != nil {
			r.log.Warn().Err(err).Msg("revocation cache lookup failed, falling back to store")
		} else if hit {
			return true, nil
		}
	}

	revoked, err := r.store.Exists(ctx, digest)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// Prune forgets revoked tokens whose expiry has passed; such tokens already
// fail verification.
func (r *RevocationRegistry) Prune(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpired(ctx, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("prune revoked tokens: %w", err)
	}
	return n, nil
}
