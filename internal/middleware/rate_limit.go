package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/pkg/logger"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	KeyPrefix string
	Message   string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:  60,
		Window:    time.Minute,
		KeyPrefix: "blog:ratelimit:admin:",
		Message:   "Too many requests; try again later",
	}
}

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

// limiter decides whether one more request fits in the window of key.
// resetAt is in unix milliseconds.
type limiter interface {
	allow(ctx context.Context, key string, now time.Time) (allowed bool, remaining, resetAt int64, err error)
}

type redisLimiter struct {
	client *redis.Client
	cfg    RateLimitConfig
}

func (l *redisLimiter) allow(ctx context.Context, key string, now time.Time) (bool, int64, int64, error) {
	result, err := rateLimitScript.Run(ctx, l.client, []string{key},
		l.cfg.Requests, l.cfg.Window.Milliseconds(), now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	return result[0] == 1, result[1], result[2], nil
}

// memoryLimiter is a per-process sliding window used when Redis is not configured
type memoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	cfg  RateLimitConfig
}

func newMemoryLimiter(cfg RateLimitConfig) *memoryLimiter {
	return &memoryLimiter{hits: make(map[string][]time.Time), cfg: cfg}
}

func (l *memoryLimiter) allow(_ context.Context, key string, now time.Time) (bool, int64, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := now.Add(-l.cfg.Window)
	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(start) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.cfg.Requests {
		l.hits[key] = kept
		return false, 0, kept[0].Add(l.cfg.Window).UnixMilli(), nil
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true, int64(l.cfg.Requests - len(kept)), 0, nil
}

// RateLimit returns a gin middleware that rate limits by client IP. A nil
// client keeps the counters in process memory.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	var l limiter = newMemoryLimiter(cfg)
	if redisClient != nil {
		l = &redisLimiter{client: redisClient, cfg: cfg}
	}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + c.ClientIP()
		now := time.Now()

		allowed, remaining, resetAt, err := l.allow(c.Request.Context(), key, now)
		if err != nil {
			// Fail open
			logger.GetLogger().Warn().Err(err).Str("key", key).Msg("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			retryAfter := (resetAt - now.UnixMilli()) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt/1000))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			common.AbortWithError(c, http.StatusTooManyRequests, cfg.Message)
			return
		}

		c.Next()
	}
}
