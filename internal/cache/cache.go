// Package cache provides the namespaced TTL caches used for geocoding results
// and search responses.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	NamespaceGeocode = "geo"
	NamespaceSearch  = "search_results"
)

// ErrUnavailable is returned by backends that cannot reach their store.
var ErrUnavailable = errors.New("cache backend unavailable")

// 캐시 연산 횟수 (cache: 네임스페이스, op: get/set/purge, result: hit/miss/ok/error)
var cacheOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storelocator_cache_operations_total",
		Help: "Total number of cache operations by namespace and result",
	},
	[]string{"cache", "op", "result"},
)

// Backend is a key/value store with per-entry expiry. Get must report an
// entry as absent once it has expired.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Stats is a snapshot of a cache's counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Errors int64 `json:"errors"`
}

// Degraded reports whether the backend has failed at least once.
func (s Stats) Degraded() bool {
	return s.Errors > 0
}

// Cache is a namespaced view over a Backend with a fixed TTL. Backend errors
// are swallowed: Get degrades to a miss and Set to a no-op, and both are
// counted in Stats and Prometheus.
type Cache struct {
	backend   Backend
	namespace string
	ttl       time.Duration
	log       *zap.SugaredLogger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	errors atomic.Int64
}

// New creates a Cache that stores keys as "<namespace>:<key>".
func New(backend Backend, namespace string, ttl time.Duration) *Cache {
	return &Cache{
		backend:   backend,
		namespace: namespace,
		ttl:       ttl,
		log:       logger.GetLogger("cache." + namespace),
	}
}

// Namespace returns the key prefix of the cache.
func (c *Cache) Namespace() string {
	return c.namespace
}

// TTL returns the lifetime given to new entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key prefixes key with the cache namespace.
func (c *Cache) Key(key string) string {
	return c.namespace + ":" + key
}

// Get returns the value stored under key. Backend failures count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.backend.Get(ctx, c.Key(key))
	if err != nil {
		c.errors.Add(1)
		c.misses.Add(1)
		cacheOperationsTotal.WithLabelValues(c.namespace, "get", "error").Inc()
		c.log.Warnf("cache get failed, treating as miss (key=%s): %v", key, err)
		return nil, false
	}
	if !ok {
		c.misses.Add(1)
		cacheOperationsTotal.WithLabelValues(c.namespace, "get", "miss").Inc()
		return nil, false
	}
	c.hits.Add(1)
	cacheOperationsTotal.WithLabelValues(c.namespace, "get", "hit").Inc()
	return value, true
}

// Set stores value under key for the cache TTL. Backend failures are logged
// and counted but not returned.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if err := c.backend.Set(ctx, c.Key(key), value, c.ttl); err != nil {
		c.errors.Add(1)
		cacheOperationsTotal.WithLabelValues(c.namespace, "set", "error").Inc()
		c.log.Warnf("cache set failed, skipping (key=%s): %v", key, err)
		return
	}
	c.sets.Add(1)
	cacheOperationsTotal.WithLabelValues(c.namespace, "set", "ok").Inc()
}

// Purge removes every entry in the namespace.
func (c *Cache) Purge(ctx context.Context) error {
	if err := c.backend.DeletePrefix(ctx, c.namespace+":"); err != nil {
		c.errors.Add(1)
		cacheOperationsTotal.WithLabelValues(c.namespace, "purge", "error").Inc()
		return err
	}
	cacheOperationsTotal.WithLabelValues(c.namespace, "purge", "ok").Inc()
	return nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Errors: c.errors.Load(),
	}
}

// NormalizeKey lower-cases and trims a free-text lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
