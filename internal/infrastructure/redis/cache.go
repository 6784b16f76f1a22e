package redis

import (
	"context"
	"errors"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	rosterKey     = "txviewer:roster:v1"
	rosterLockKey = "txviewer:roster:refresh"
)

// Roster cache results, as exported in metrics.
const (
	cacheHit      = "hit"
	cacheMiss     = "miss"
	cacheError    = "error"
	cacheAwaited  = "awaited"
	cacheBypassed = "bypassed"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the key/value store behind CachedRoster. Get returns ErrCacheMiss
// for an absent key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Locker is implemented by caches shared between instances, so only one of
// them refreshes an expired entry.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// ClientCache is a Cache and Locker over a Redis client.
type ClientCache struct {
	client *redis.Client
}

func NewClientCache(client *redis.Client) *ClientCache {
	return &ClientCache{client: client}
}

func (c *ClientCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *ClientCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *ClientCache) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lock := NewDistributedLock(c.client, key, ttl)
	ok, err := lock.Acquire(ctx)
	return lock.Release, ok, err
}

type CacheOption func(*CachedRoster)

func WithCacheLogger(l zerolog.Logger) CacheOption {
	return func(c *CachedRoster) { c.logger = l }
}

func WithCacheMetrics(m *observability.Metrics) CacheOption {
	return func(c *CachedRoster) { c.metrics = m }
}

// WithRefreshWait sets how long to wait for another instance's roster refresh
// before fetching it directly.
func WithRefreshWait(d time.Duration) CacheOption {
	return func(c *CachedRoster) { c.refreshWait = d }
}

// CachedRoster serves the roster from a shared cache for a bounded TTL.
// Transaction endpoints pass straight through to the wrapped API: pages are
// always read fresh.
//
// Any cache failure degrades to a direct upstream call.
type CachedRoster struct {
	gateway.API
	cache       Cache
	ttl         time.Duration
	refreshWait time.Duration
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

func NewCachedRoster(api gateway.API, cache Cache, ttl time.Duration, opts ...CacheOption) *CachedRoster {
	c := &CachedRoster{
		API:         api,
		cache:       cache,
		ttl:         ttl,
		refreshWait: 250 * time.Millisecond,
		logger:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = observability.Component(c.logger, "roster_cache")
	return c
}

func (c *CachedRoster) Employees(ctx context.Context) ([]employee.Employee, error) {
	if roster, ok := c.load(ctx); ok {
		c.record(cacheHit)
		return roster, nil
	}

	if locker, ok := c.cache.(Locker); ok {
		release, acquired, err := locker.TryLock(ctx, rosterLockKey, c.ttl)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Msg("Roster refresh lock unavailable, fetching directly")
		case acquired:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to release roster refresh lock")
				}
			}()
		default:
			if roster, ok := c.await(ctx); ok {
				c.record(cacheAwaited)
				return roster, nil
			}
		}
	}

	roster, err := c.API.Employees(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, roster)
	return roster, nil
}

// load reads the cached roster. A decode failure counts as a miss.
func (c *CachedRoster) load(ctx context.Context) ([]employee.Employee, bool) {
	b, err := c.cache.Get(ctx, rosterKey)
	if errors.Is(err, ErrCacheMiss) {
		c.record(cacheMiss)
		return nil, false
	}
	if err != nil {
		c.record(cacheError)
		c.logger.Warn().Err(err).Msg("Roster cache read failed")
		return nil, false
	}

	var wire []gateway.EmployeeJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		c.record(cacheError)
		c.logger.Warn().Err(err).Msg("Discarding undecodable cached roster")
		return nil, false
	}
	return gateway.EmployeesFromJSON(wire), true
}

// await gives the instance holding the refresh lock a chance to fill the cache.
func (c *CachedRoster) await(ctx context.Context) ([]employee.Employee, bool) {
	timer := time.NewTimer(c.refreshWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, false
	case <-timer.C:
	}
	roster, ok := c.load(ctx)
	if !ok {
		c.record(cacheBypassed)
	}
	return roster, ok
}

func (c *CachedRoster) save(ctx context.Context, roster []employee.Employee) {
	b, err := json.Marshal(gateway.EmployeesToJSON(roster))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to encode roster for cache")
		return
	}
	if err := c.cache.Set(ctx, rosterKey, b, c.ttl); err != nil {
		c.record(cacheError)
		c.logger.Warn().Err(err).Msg("Roster cache write failed")
		return
	}
	c.logger.Debug().Int("employees", len(roster)).Dur("ttl", c.ttl).Msg("Roster cached")
}

func (c *CachedRoster) record(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RosterCacheRequests.WithLabelValues(result).Inc()
}
