// Package cache is a read-through cache with tag-based invalidation. Values
// are stored as JSON so the same callers work against Redis and the
// in-process store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TTL defaults
const (
	TTLDefault = 5 * time.Minute
	TTLShort   = 30 * time.Second
)

// Store is a tagged key-value cache
type Store interface {
	// Get returns the raw value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl and associates it with tags
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error
	// Invalidate drops every key associated with any of the tags
	Invalidate(ctx context.Context, tags ...string) error
}

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_cache_requests_total",
		Help: "Cache lookups by result (hit, miss, error)",
	},
	[]string{"result"},
)

// Fetch returns the cached value for key, or calls loader and caches its
// result under ttl and tags. A nil store always calls loader. Store failures
// are logged and treated as a miss; loader errors are returned and never cached.
func Fetch[T any](ctx context.Context, s Store, key string, ttl time.Duration, tags []string, loader func(context.Context) (T, error)) (T, error) {
	if s == nil {
		return loader(ctx)
	}

	raw, ok, err := s.Get(ctx, key)
	switch {
	case err != nil:
		cacheRequests.WithLabelValues("error").Inc()
		pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("cache get failed")
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			cacheRequests.WithLabelValues("hit").Inc()
			return v, nil
		}
		cacheRequests.WithLabelValues("error").Inc()
		pkglogger.GetLogger().Warn().Str("key", key).Msg("cache value undecodable, reloading")
	default:
		cacheRequests.WithLabelValues("miss").Inc()
	}

	v, err := loader(ctx)
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return v, nil
	}
	if err := s.Set(ctx, key, data, ttl, tags); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return v, nil
}

// Invalidate drops tags from s, ignoring a nil store
func Invalidate(ctx context.Context, s Store, tags ...string) error {
	if s == nil || len(tags) == 0 {
		return nil
	}
	return s.Invalidate(ctx, tags...)
}
