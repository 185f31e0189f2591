package testutil

import (
	"github.com/preston-bernstein/match-feed-service/internal/app/feeds"
	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/feed"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
	"github.com/preston-bernstein/match-feed-service/internal/store"
)

// NewFeedService builds a feeds service over the gateway with grouped fetching and no caps.
func NewFeedService(gw store.Gateway) *feeds.Service {
	engine := feed.NewEngine(gw, settings.NewStatic(settings.Settings{ParallelFetch: true}), nil, nil)
	legacy := feed.NewEngine(gw, settings.NewStatic(settings.Settings{ParallelFetch: false}), nil, nil)
	return feeds.NewService(engine, legacy, gw)
}

// NewFeedServiceWithItems builds a feeds service over an in-memory gateway holding items.
func NewFeedServiceWithItems(items ...matches.FeedItem) *feeds.Service {
	return NewFeedService(store.NewMemoryGateway(items...))
}
