package leap

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leadcapture_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	lookupKeyPrefix  = "leap:lookup:"
	defaultLookupTTL = 10 * time.Minute
	lookupTrades     = "trades"
	lookupDivisions  = "divisions"
	lookupSalesReps  = "sales_reps"
)

// Lookups is the read-only reference data the intake form selects from.
type Lookups interface {
	Trades(ctx context.Context) ([]Trade, error)
	Divisions(ctx context.Context) ([]Division, error)
	SalesReps(ctx context.Context) ([]SalesRep, error)
}

// CachedLookups serves lookups from Redis and coalesces concurrent misses so
// the CRM sees one request per key per TTL.
type CachedLookups struct {
	source Lookups
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	log    *logger.Logger
}

// NewCachedLookups wraps source. A nil rdb disables the Redis layer; calls are
// still coalesced.
func NewCachedLookups(source Lookups, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedLookups {
	if ttl <= 0 {
		ttl = defaultLookupTTL
	}
	return &CachedLookups{source: source, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedLookups) Trades(ctx context.Context) ([]Trade, error) {
	return cached(ctx, c, lookupTrades, c.source.Trades)
}

func (c *CachedLookups) Divisions(ctx context.Context) ([]Division, error) {
	return cached(ctx, c, lookupDivisions, c.source.Divisions)
}

func (c *CachedLookups) SalesReps(ctx context.Context) ([]SalesRep, error) {
	return cached(ctx, c, lookupSalesReps, c.source.SalesReps)
}

// Invalidate drops every cached lookup.
func (c *CachedLookups) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx,
		lookupKeyPrefix+lookupTrades,
		lookupKeyPrefix+lookupDivisions,
		lookupKeyPrefix+lookupSalesReps,
	).Err()
}

func cached[T any](ctx context.Context, c *CachedLookups, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := lookupKeyPrefix + name

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var items []T
			if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
				return items, nil
			}
			c.log.Warn("discarding unreadable cached lookup", "key", key)
		case !errors.Is(err, redis.Nil):
			c.log.Warn("lookup cache read failed", "key", key, "error", err)
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		bg := context.WithoutCancel(ctx)
		items, err := fetch(bg)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if raw, err := json.Marshal(items); err == nil {
				if err := c.rdb.Set(bg, key, raw, c.ttl).Err(); err != nil {
					c.log.Warn("lookup cache write failed", "key", key, "error", err)
				}
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

var _ Lookups = (*Client)(nil)
var _ Lookups = (*CachedLookups)(nil)
