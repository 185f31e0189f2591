package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

// MemoryGateway keeps a thread-safe copy of feed items in memory. It backs the fixture
// store and tests.
type MemoryGateway struct {
	mu        sync.RWMutex
	items     map[int64]map[int64]matches.FeedItem
	fullFetch int
}

// NewMemoryGateway constructs a gateway holding items.
func NewMemoryGateway(items ...matches.FeedItem) *MemoryGateway {
	g := &MemoryGateway{fullFetch: DefaultFullFetch}
	g.SetItems(items)
	return g
}

// LoadFixtureFile reads a JSON array of feed items into a new gateway.
func LoadFixtureFile(path string) (*MemoryGateway, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []matches.FeedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return NewMemoryGateway(items...), nil
}

// SetItems replaces the existing items with a new snapshot.
func (g *MemoryGateway) SetItems(items []matches.FeedItem) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.items = make(map[int64]map[int64]matches.FeedItem)
	for _, item := range items {
		byMatch, ok := g.items[item.UserID]
		if !ok {
			byMatch = make(map[int64]matches.FeedItem)
			g.items[item.UserID] = byMatch
		}
		byMatch[item.MatchID] = item
	}
}

// Query filters the user's items by status and applies the descriptor's page window,
// walking matches in ascending match id order.
func (g *MemoryGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Empty() {
		return nil, ErrEmptyQuery
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	byMatch := g.items[q.UserID]
	ids := make([]int64, 0, len(byMatch))
	for id := range byMatch {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	wanted := matches.NewStatusSet(q.Statuses...)
	skip, keep := window(q, g.fullFetch)
	set := matches.NewFeedSet()
	for _, id := range ids {
		item := byMatch[id]
		if !wanted.Has(item.Status) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		set.Add(item)
		if set.Len() >= keep {
			break
		}
	}
	return set, nil
}

// Get retrieves one match by id.
func (g *MemoryGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	if err := ctx.Err(); err != nil {
		return matches.FeedItem{}, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	item, ok := g.items[userID][matchID]
	return item, ok, nil
}

// FixtureItems returns a deterministic feed for local runs: user 42 has matches in every
// status group, user 7 has a small new/comm feed.
func FixtureItems(now time.Time) []matches.FeedItem {
	base := now.UTC().Truncate(time.Hour)
	photo := func(id int64) []string {
		return []string{fmt.Sprintf("https://photos.example.com/%d/primary.jpg", id)}
	}
	return []matches.FeedItem{
		{MatchID: 1001, UserID: 42, CandidateID: 501, Status: matches.StatusNew, DisplayName: "Avery", Photos: photo(501), DeliveredAt: base.Add(-2 * time.Hour)},
		{MatchID: 1002, UserID: 42, CandidateID: 502, Status: matches.StatusNew, DisplayName: "Blake", DeliveredAt: base.Add(-3 * time.Hour)},
		{MatchID: 1003, UserID: 42, CandidateID: 503, Status: matches.StatusMyTurn, DisplayName: "Casey", Photos: photo(503), DeliveredAt: base.Add(-48 * time.Hour), LastCommAt: base.Add(-time.Hour)},
		{MatchID: 1004, UserID: 42, CandidateID: 504, Status: matches.StatusTheirTurn, DisplayName: "Devon", Photos: photo(504), DeliveredAt: base.Add(-72 * time.Hour), LastCommAt: base.Add(-5 * time.Hour)},
		{MatchID: 1005, UserID: 42, CandidateID: 505, Status: matches.StatusOpenComm, DisplayName: "Emery", DeliveredAt: base.Add(-96 * time.Hour), LastCommAt: base.Add(-30 * time.Hour)},
		{MatchID: 1006, UserID: 42, CandidateID: 506, Status: matches.StatusArchived, DisplayName: "Finley", Hidden: true, DeliveredAt: base.Add(-240 * time.Hour)},
		{MatchID: 1007, UserID: 42, CandidateID: 507, Status: matches.StatusClosed, DisplayName: "Gray", Photos: photo(507), DeliveredAt: base.Add(-480 * time.Hour)},
		{MatchID: 2001, UserID: 7, CandidateID: 601, Status: matches.StatusNew, DisplayName: "Harper", Photos: photo(601), DeliveredAt: base.Add(-time.Hour)},
		{MatchID: 2002, UserID: 7, CandidateID: 602, Status: matches.StatusMyTurn, DisplayName: "Indy", Photos: photo(602), DeliveredAt: base.Add(-24 * time.Hour), LastCommAt: base.Add(-2 * time.Hour)},
	}
}
