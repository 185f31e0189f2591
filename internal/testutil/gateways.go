package testutil

import (
	"context"
	"sync"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/store"
)

// StubGateway serves items from memory, optionally failing selected groups, and records queries.
type StubGateway struct {
	Items  []matches.FeedItem
	FailOn map[matches.StatusGroup]error
	GetErr error

	mu      sync.Mutex
	queries []matches.QueryDescriptor
	mem     *store.MemoryGateway
	once    sync.Once
}

func (g *StubGateway) init() {
	g.once.Do(func() { g.mem = store.NewMemoryGateway(g.Items...) })
}

func (g *StubGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	g.init()
	g.mu.Lock()
	g.queries = append(g.queries, q)
	g.mu.Unlock()
	if err, ok := g.FailOn[q.Group]; ok {
		return nil, err
	}
	return g.mem.Query(ctx, q)
}

func (g *StubGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	g.init()
	if g.GetErr != nil {
		return matches.FeedItem{}, false, g.GetErr
	}
	return g.mem.Get(ctx, userID, matchID)
}

// Queries returns a copy of every descriptor received.
func (g *StubGateway) Queries() []matches.QueryDescriptor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]matches.QueryDescriptor(nil), g.queries...)
}

// ErrGateway fails every call with Err.
type ErrGateway struct {
	Err error
}

func (g ErrGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	return nil, g.Err
}

func (g ErrGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	return matches.FeedItem{}, false, g.Err
}
