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
	jobKeyPrefix    = "job:"
	jobGenKeyPrefix = "job:gen:"

	// DefaultJobTTL is the TTL for cached job detail.
	DefaultJobTTL = 5 * time.Minute

	// jobGenTTL must outlive any single database load.
	jobGenTTL = time.Hour
)

// ErrStaleJob is returned by SetJob when the job was invalidated after the
// caller read its generation. Nothing is written.
var ErrStaleJob = errors.New("job invalidated during load")

// GetJob retrieves a job's detail from cache.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetJob(ctx context.Context, id string) (*model.CachedJob, error) {
	cmd := c.client.HGetAll(ctx, jobKeyPrefix+id)
	result, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	var cached model.CachedJob
	if err := cmd.Scan(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached job: %w", err)
	}

	return &cached, nil
}

// JobGeneration returns the number of times a job has been invalidated.
// Read it before loading the job and hand it to SetJob.
func (c *Cache) JobGeneration(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, jobGenKeyPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

// SetJob stores a fully loaded job detail, unless DeleteJob ran for the job
// since generation was read. In that case it returns ErrStaleJob.
func (c *Cache) SetJob(ctx context.Context, job *model.Job, ttl time.Duration, generation int64) error {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	key := jobKeyPrefix + job.ID
	genKey := jobGenKeyPrefix + job.ID

	// WATCH aborts the MULTI if an invalidation bumps the generation between
	// the check and EXEC.
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStaleJob
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, job.ToCachedJob())
			pipe.Expire(ctx, key, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleJob), errors.Is(err, redis.TxFailedErr):
		return ErrStaleJob
	default:
		return fmt.Errorf("failed to cache job: %w", err)
	}
}

// DeleteJob removes a job from cache and bumps its generation so that an
// in-flight fill started before the call is discarded.
func (c *Cache) DeleteJob(ctx context.Context, id string) error {
	genKey := jobGenKeyPrefix + id

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, jobKeyPrefix+id)
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, jobGenTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete job from cache: %w", err)
	}
	return nil
}
