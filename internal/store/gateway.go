package store

import (
	"context"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
)

// Gateway is the read side of the match feed table.
type Gateway interface {
	// Query returns the items matching one descriptor. A 0/0 page/size descriptor reads the
	// gateway's default full fetch.
	Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error)
	// Get looks up one match for a user. The bool is false when the match does not exist.
	Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error)
}

// DefaultFullFetch is the number of items an unbounded query reads.
const DefaultFullFetch = 1000

// groupLabel names the descriptor's group for logs and metrics.
func groupLabel(q matches.QueryDescriptor) string {
	if q.Group == "" {
		return "legacy"
	}
	return string(q.Group)
}

// window returns how many matching items to skip and then keep for a descriptor.
func window(q matches.QueryDescriptor, fullFetch int) (skip, keep int) {
	if fullFetch <= 0 {
		fullFetch = DefaultFullFetch
	}
	if !q.Bounded() {
		return 0, fullFetch
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.Size, q.Size
}

// instrumentedGateway records one store query metric per call.
type instrumentedGateway struct {
	next    Gateway
	metrics *metrics.Recorder
}

// NewInstrumentedGateway wraps next with per-group query metrics.
func NewInstrumentedGateway(next Gateway, recorder *metrics.Recorder) Gateway {
	if recorder == nil {
		return next
	}
	return &instrumentedGateway{next: next, metrics: recorder}
}

func (g *instrumentedGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	start := time.Now()
	set, err := g.next.Query(ctx, q)
	g.metrics.RecordStoreQuery(groupLabel(q), time.Since(start), err)
	return set, err
}

func (g *instrumentedGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	start := time.Now()
	item, ok, err := g.next.Get(ctx, userID, matchID)
	g.metrics.RecordStoreQuery("get", time.Since(start), err)
	return item, ok, err
}
