package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/campusjobs/campusjobs/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified identities.
	identityCachePrefix = "auth:identity:"
	// MaxIdentityTTL caps how long a verified token is trusted without re-verification.
	MaxIdentityTTL = 5 * time.Minute
)

// cachedIdentity represents an identity stored in Redis.
type cachedIdentity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

// GetIdentity retrieves the identity previously verified for token.
// Returns ErrCacheMiss if not found or if the entry is unreadable.
func (c *Cache) GetIdentity(ctx context.Context, token string) (*model.Identity, error) {
	data, err := c.client.Get(ctx, identityKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, ErrCacheMiss
	}

	identity := &model.Identity{
		ID:        cached.ID,
		Email:     cached.Email,
		ExpiresAt: time.Unix(cached.ExpiresAt, 0).UTC(),
	}
	if !identity.ExpiresAt.After(time.Now()) {
		return nil, ErrCacheMiss
	}

	return identity, nil
}

// SetIdentity caches a verified identity until the token expires or MaxIdentityTTL passes.
func (c *Cache) SetIdentity(ctx context.Context, token string, identity *model.Identity) error {
	ttl := identityTTL(identity.ExpiresAt, time.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedIdentity{
		ID:        identity.ID,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, identityKey(token), data, ttl).Err()
}

// identityKey derives the cache key from a BLAKE2b-256 digest so raw tokens never reach Redis.
func identityKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return identityCachePrefix + hex.EncodeToString(sum[:])
}

// identityTTL returns min(expiresAt-now, MaxIdentityTTL).
func identityTTL(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl > MaxIdentityTTL {
		return MaxIdentityTTL
	}
	return ttl
}
