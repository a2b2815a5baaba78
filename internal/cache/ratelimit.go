package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix is the Redis key prefix for per-client rate limit windows.
const rateLimitPrefix = "ratelimit:ip:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// fixedWindowScript counts requests in a fixed window. The first request in
// a window sets the key TTL; the window resets when the key expires.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])  -- window length in seconds

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if count > limit then
		return {0, 0, ttl}
	end

	return {1, limit - count, ttl}
`)

// CheckRateLimit checks and updates the fixed-window rate limit for a
// client identifier. The identifier is hashed so raw IP addresses are never
// stored in Redis.
func (c *Cache) CheckRateLimit(ctx context.Context, clientID string, limit int, window time.Duration) (*RateLimitResult, error) {
	key := rateLimitPrefix + hashClientID(clientID)

	result, err := fixedWindowScript.Run(ctx, c.client,
		[]string{key},
		limit, int(window.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, err
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[1],
		RetryAfter: time.Duration(result[2]) * time.Second,
	}, nil
}

// hashClientID creates a truncated SHA256 hash of a client identifier.
// This provides privacy while maintaining uniqueness.
func hashClientID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
