package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusjobs/campusjobs/internal/model"
)

const (
	roleKeyPrefix = "user:role:"
	// roleTTL bounds memory use only; roles never change after registration.
	roleTTL = time.Hour
)

// GetUserRole retrieves a registered user's role.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetUserRole(ctx context.Context, userID string) (model.Role, error) {
	value, err := c.client.Get(ctx, roleKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	role := model.Role(value)
	if !role.IsValid() {
		return "", ErrCacheMiss
	}
	return role, nil
}

// SetUserRole stores a registered user's role.
func (c *Cache) SetUserRole(ctx context.Context, userID string, role model.Role) error {
	if err := c.client.Set(ctx, roleKeyPrefix+userID, string(role), roleTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}
	return nil
}
