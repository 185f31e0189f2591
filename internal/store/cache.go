package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
)

const (
	defaultCacheTTL    = 30 * time.Second
	defaultCachePrefix = "matchfeed:"
)

// cachingGateway is a read-through Redis cache of query results keyed by descriptor.
// Only successful results are cached; Redis failures fall through to the store.
type cachingGateway struct {
	next    Gateway
	client  redis.Cmdable
	ttl     time.Duration
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewRedisClient opens a client for addr. It does not dial until first use.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewCachingGateway wraps next with a Redis read-through cache.
func NewCachingGateway(next Gateway, client redis.Cmdable, ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder) Gateway {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &cachingGateway{
		next:    next,
		client:  client,
		ttl:     ttl,
		prefix:  defaultCachePrefix,
		logger:  logger,
		metrics: recorder,
	}
}

func (c *cachingGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	key := c.key(q)
	if set, ok := c.lookup(ctx, key); ok {
		return set, nil
	}

	set, err := c.next.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, set)
	return set, nil
}

// Get bypasses the cache so single-match reads are always current.
func (c *cachingGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	return c.next.Get(ctx, userID, matchID)
}

func (c *cachingGateway) key(q matches.QueryDescriptor) string {
	return c.prefix + q.Key()
}

func (c *cachingGateway) lookup(ctx context.Context, key string) (matches.FeedSet, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn(logging.FromContext(ctx, c.logger), "feed cache read failed", "key", key, logging.FieldError, err)
		}
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}
	var set matches.FeedSet
	if err := json.Unmarshal(raw, &set); err != nil {
		logging.Warn(logging.FromContext(ctx, c.logger), "feed cache entry corrupt", "key", key, logging.FieldError, err)
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}
	c.metrics.RecordCacheLookup(true)
	return set, true
}

func (c *cachingGateway) store(ctx context.Context, key string, set matches.FeedSet) {
	raw, err := json.Marshal(set)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, c.logger), "feed cache encode failed", "key", key, logging.FieldError, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logging.Warn(logging.FromContext(ctx, c.logger), "feed cache write failed", "key", key, logging.FieldError, err)
	}
}
