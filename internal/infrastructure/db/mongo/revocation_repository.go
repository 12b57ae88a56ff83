package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RevocationRepository is the durable set of revoked token digests.
type RevocationRepository struct {
	col *mongo.Collection
}

func NewRevocationRepository(db *mongo.Database) *RevocationRepository {
	return &RevocationRepository{col: db.Collection(collectionRevoked)}
}

type revokedDoc struct {
	Digest    string     `bson:"_id"`
	RevokedAt time.Time  `bson:"revoked_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

func newRevokedDoc(digest string, revokedAt, expiresAt time.Time) revokedDoc {
	doc := revokedDoc{Digest: digest, RevokedAt: revokedAt}
	if !expiresAt.IsZero() {
		doc.ExpiresAt = &expiresAt
	}
	return doc
}

// Add inserts the digest. A duplicate key means it was already revoked and
// the first revocation time is kept.
func (r *RevocationRepository) Add(ctx context.Context, digest string, revokedAt, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, newRevokedDoc(digest, revokedAt, expiresAt))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert revoked token: %w", err)
	}
	return nil
}

func (r *RevocationRepository) Exists(ctx context.Context, digest string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": digest}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("find revoked token: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired removes entries whose expiry is at or before now. Entries
// without an expiry never match.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	return res.DeletedCount, nil
}
