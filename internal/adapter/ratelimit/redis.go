// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter and returns {count, ttl_ms}
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// RedisLimiter counts requests per scope and subject in fixed windows shared by all replicas
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window
func NewRedisLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "workledger:rate_limit"
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Key returns the redis key holding the counter for scope and subject
func (r *RedisLimiter) Key(scope, subject string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, scope, subject)
}

// Allow consumes one request for subject in scope. A disabled limiter always allows.
func (r *RedisLimiter) Allow(ctx context.Context, scope, subject string) (Decision, error) {
	scope = strings.TrimSpace(scope)
	subject = strings.TrimSpace(subject)
	if r == nil || r.client == nil || r.limit <= 0 || r.window <= 0 || scope == "" || subject == "" {
		return Decision{Allowed: true}, nil
	}

	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	raw, err := fixedWindowScript.Run(ctx, r.client, []string{r.Key(scope, subject)}, windowMs).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok || ttlMs < 0 {
		ttlMs = windowMs
	}

	retrySeconds := int64(math.Ceil(float64(ttlMs) / 1000.0))
	if retrySeconds < 1 {
		retrySeconds = 1
	}

	return Decision{
		Allowed:    int(count) <= r.limit,
		Count:      int(count),
		RetryAfter: time.Duration(retrySeconds) * time.Second,
	}, nil
}

// Close closes the redis client
func (r *RedisLimiter) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
