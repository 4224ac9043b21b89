package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitUserPrefix = "ratelimit:user:"
	rateLimitIPPrefix   = "ratelimit:ip:"
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	// ResetAt is when the bucket will be full again.
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes one token atomically.
// Times are in milliseconds; rate is tokens per millisecond.
// Returns {allowed, retry_after_ms, remaining, ms_until_full}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(data[1]) or burst
	local ts = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('PEXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens), math.ceil((burst - tokens) / rate)}
`)

// CheckUserRateLimit consumes one token from an authenticated user's bucket.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst), nil
	}
	return c.takeToken(ctx, rateLimitUserPrefix+userID, float64(ratePerMinute)/60, burst)
}

// CheckIPRateLimit consumes one token from a client address's bucket.
// Addresses are stored hashed.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 {
		return unlimited(burst), nil
	}
	return c.takeToken(ctx, rateLimitIPPrefix+hashIP(ip), float64(ratePerSecond), burst)
}

// takeToken runs the bucket script. Callers decide whether an error fails open.
func (c *Cache) takeToken(ctx context.Context, key string, perSecond float64, burst int) (*RateLimitResult, error) {
	if burst < 1 {
		burst = 1
	}
	now := time.Now()

	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		perSecond/1000, burst, now.UnixMilli(), bucketTTL(perSecond, burst).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(res[3]) * time.Millisecond),
	}, nil
}

// bucketTTL is how long an idle bucket must live: the time to refill from
// empty, plus a second so a just-full bucket is not dropped early.
func bucketTTL(perSecond float64, burst int) time.Duration {
	refill := math.Ceil(float64(burst) / perSecond * 1000)
	return time.Duration(refill)*time.Millisecond + time.Second
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now()}
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
