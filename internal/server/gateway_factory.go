package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/match-feed-service/internal/config"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
	"github.com/preston-bernstein/match-feed-service/internal/store"
)

// dynamoClientFactory remains a var for tests to avoid AWS credential lookups.
var dynamoClientFactory = func(ctx context.Context, region, endpoint string) (store.DynamoAPI, error) {
	return store.NewDynamoClient(ctx, region, endpoint)
}

// gatewayFactory assembles the store gateway with shared wrappers:
// metrics, rate limit, retry and the optional Redis cache, innermost first.
type gatewayFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newGatewayFactory(logger *slog.Logger, metrics *metrics.Recorder) gatewayFactory {
	return gatewayFactory{logger: logger, metrics: metrics}
}

// build returns the decorated gateway and a cleanup that releases client connections.
func (f gatewayFactory) build(ctx context.Context, cfg config.Config) (store.Gateway, func() error, error) {
	base, err := f.selectGateway(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	gw := store.NewInstrumentedGateway(base, f.metrics)
	gw = store.NewRateLimitedGateway(gw, cfg.Store.RateLimit, cfg.Store.RateBurst, f.logger, f.metrics)
	gw = store.NewRetryingGateway(gw, f.logger, cfg.Store.Retry.Attempts, cfg.Store.Retry.Backoff)

	cleanup := func() error { return nil }
	if cfg.Cache.Enabled() {
		client := store.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		gw = store.NewCachingGateway(gw, client, cfg.Cache.TTL, f.logger, f.metrics)
		cleanup = client.Close
		f.pingCache(ctx, client, cfg.Cache.Addr)
	}
	return gw, cleanup, nil
}

func (f gatewayFactory) selectGateway(ctx context.Context, cfg config.StoreConfig) (store.Gateway, error) {
	switch backend := normalizeBackendName(cfg.Backend); backend {
	case config.BackendFixture:
		if cfg.FixturePath != "" {
			gw, err := store.LoadFixtureFile(cfg.FixturePath)
			if err != nil {
				return nil, fmt.Errorf("load fixture: %w", err)
			}
			return gw, nil
		}
		return store.NewMemoryGateway(store.FixtureItems(time.Now())...), nil
	case config.BackendDynamo:
		client, err := dynamoClientFactory(ctx, cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		return store.NewDynamoGateway(client, store.DynamoConfig{
			Table:      cfg.Dynamo.Table,
			GroupIndex: cfg.Dynamo.GroupIndex,
			FullFetch:  cfg.Dynamo.PageSize,
		}, f.logger), nil
	default:
		if f.logger != nil {
			f.logger.Warn("unknown store backend, falling back to fixture", slog.String("backend", backend))
		}
		return store.NewMemoryGateway(store.FixtureItems(time.Now())...), nil
	}
}

// pingCache only logs; an unreachable Redis degrades to uncached reads.
func (f gatewayFactory) pingCache(ctx context.Context, client *redis.Client, addr string) {
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil && f.logger != nil {
		f.logger.Warn("redis unreachable, serving uncached", slog.String("addr", addr), "error", err)
	}
}
