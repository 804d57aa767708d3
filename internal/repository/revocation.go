package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "sso:revoked:"

// RevocationRepository keeps revoked token IDs in Redis. Entries expire with
// the token they refer to, so the set never outgrows the live token window.
type RevocationRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRevocationRepository creates a new revocation repository
func NewRevocationRepository(rdb redis.UniversalClient) *RevocationRepository {
	return &RevocationRepository{rdb: rdb, prefix: revokedKeyPrefix}
}

// Revoke marks tokenID as revoked for ttl
func (r *RevocationRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID has been revoked
func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity to Redis
func (r *RevocationRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RevocationRepository) key(tokenID string) string {
	return r.prefix + tokenID
}
