package feeds

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/feed"
)

// Sort keys accepted by MatchedUsers.
const (
	SortDeliveredDate = "deliveredDate"
	SortLastCommDate  = "lastCommDate"
	SortName          = "name"
)

// DefaultTeaserResultSize is used when the teaser request names no size.
const DefaultTeaserResultSize = 5

// ErrInvalidSort is returned for an unknown sortBy key.
var ErrInvalidSort = errors.New("invalid sortBy")

// Engine is the aggregation entry point the service depends on.
type Engine interface {
	FetchStrictAsync(ctx context.Context, req matches.RequestContext) <-chan feed.Result
	FetchSafeAsync(ctx context.Context, req matches.RequestContext) <-chan feed.Result
}

// Getter looks up a single match.
type Getter interface {
	Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error)
}

// Service shapes aggregated feeds into the views served over HTTP.
type Service struct {
	engine   Engine
	internal Engine
	store    Getter
}

// NewService wires the public engine, the engine used for internal full-feed reads, and
// the single-match store. A nil internal engine reuses engine.
func NewService(engine, internal Engine, store Getter) *Service {
	if internal == nil {
		internal = engine
	}
	return &Service{engine: engine, internal: internal, store: store}
}

// MatchesPage is one page of a user's feed.
type MatchesPage struct {
	Total    int                `json:"total"`
	PageNum  int                `json:"pageNum"`
	PageSize int                `json:"pageSize"`
	Matches  []matches.FeedItem `json:"matches"`
}

// MatchedUser is the condensed per-match view used by matchedusers.
type MatchedUser struct {
	MatchID     int64               `json:"matchId"`
	CandidateID int64               `json:"candidateId"`
	DisplayName string              `json:"displayName,omitempty"`
	Status      matches.MatchStatus `json:"status"`
	DeliveredAt time.Time           `json:"deliveredAt"`
	LastCommAt  time.Time           `json:"lastCommAt"`
}

// Counts reports matches per status group.
type Counts struct {
	Total  int            `json:"total"`
	Groups map[string]int `json:"groups"`
}

// Matches returns the strict feed with hidden matches and photos filtered per the request
// flags, newest first, paged. Page numbers start at 1; a page size of 0 returns everything.
func (s *Service) Matches(ctx context.Context, req matches.RequestContext) (MatchesPage, error) {
	set, err := await(ctx, s.engine.FetchStrictAsync(ctx, req))
	if err != nil {
		return MatchesPage{}, err
	}

	items := visible(set, req)
	sortItems(items, SortDeliveredDate)

	pageNum, pageSize := req.StartPage(), req.PageSize()
	if pageNum < 1 {
		pageNum = 1
	}
	return MatchesPage{
		Total:    len(items),
		PageNum:  pageNum,
		PageSize: pageSize,
		Matches:  paginate(items, pageNum, pageSize),
	}, nil
}

// Teaser returns up to TeaserResultSize photo-bearing, non-closed matches. It never fails
// on store errors; a degraded fetch yields an empty list.
func (s *Service) Teaser(ctx context.Context, req matches.RequestContext) ([]matches.FeedItem, error) {
	set, err := await(ctx, s.engine.FetchSafeAsync(ctx, req))
	if err != nil {
		return nil, err
	}

	items := make([]matches.FeedItem, 0, set.Len())
	for _, item := range set.Items() {
		if item.Status == matches.StatusClosed || !item.HasPhotos() || (item.Hidden && !req.ViewHidden()) {
			continue
		}
		items = append(items, item)
	}
	sortItems(items, SortDeliveredDate)

	size := req.TeaserResultSize()
	if size <= 0 {
		size = DefaultTeaserResultSize
	}
	if len(items) > size {
		items = items[:size]
	}
	return items, nil
}

// MatchedUsers returns the condensed match list sorted by the requested key.
func (s *Service) MatchedUsers(ctx context.Context, req matches.RequestContext) ([]MatchedUser, error) {
	sortBy, err := ParseSort(req.SortBy())
	if err != nil {
		return nil, err
	}
	set, err := await(ctx, s.engine.FetchStrictAsync(ctx, req))
	if err != nil {
		return nil, err
	}

	items := visible(set, req)
	sortItems(items, sortBy)

	out := make([]MatchedUser, 0, len(items))
	for _, item := range items {
		out = append(out, MatchedUser{
			MatchID:     item.MatchID,
			CandidateID: item.CandidateID,
			DisplayName: item.DisplayName,
			Status:      item.Status,
			DeliveredAt: item.DeliveredAt,
			LastCommAt:  item.LastCommAt,
		})
	}
	return out, nil
}

// Count aggregates every status and reports per-group totals, including empty groups.
func (s *Service) Count(ctx context.Context, userID int64) (Counts, error) {
	req, err := matches.NewRequestBuilder().
		UserID(userID).
		Statuses(matches.NewStatusSet(matches.AllStatuses()...)).
		ViewHidden(true).
		Build()
	if err != nil {
		return Counts{}, err
	}
	set, err := await(ctx, s.engine.FetchStrictAsync(ctx, req))
	if err != nil {
		return Counts{}, err
	}

	counts := Counts{Total: set.Len(), Groups: make(map[string]int, len(matches.AllGroups()))}
	for _, g := range matches.AllGroups() {
		counts.Groups[g.String()] = 0
	}
	for _, item := range set {
		counts.Groups[item.Group().String()]++
	}
	return counts, nil
}

// Match looks up one match for a user.
func (s *Service) Match(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	return s.store.Get(ctx, userID, matchID)
}

// InternalFeed returns every match of the user, unfiltered, ordered by match id.
func (s *Service) InternalFeed(ctx context.Context, userID int64) ([]matches.FeedItem, error) {
	req, err := matches.NewRequestBuilder().
		UserID(userID).
		Statuses(matches.NewStatusSet(matches.AllStatuses()...)).
		Build()
	if err != nil {
		return nil, err
	}
	set, err := await(ctx, s.internal.FetchStrictAsync(ctx, req))
	if err != nil {
		return nil, err
	}
	return set.Items(), nil
}

// ParseSort validates a sortBy key. Empty selects SortDeliveredDate.
func ParseSort(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", strings.ToLower(SortDeliveredDate):
		return SortDeliveredDate, nil
	case strings.ToLower(SortLastCommDate):
		return SortLastCommDate, nil
	case SortName:
		return SortName, nil
	default:
		return "", ErrInvalidSort
	}
}

func await(ctx context.Context, results <-chan feed.Result) (matches.FeedSet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		return res.Set, res.Err
	}
}

// visible applies the hidden, closed and photo flags of the request.
func visible(set matches.FeedSet, req matches.RequestContext) []matches.FeedItem {
	out := make([]matches.FeedItem, 0, set.Len())
	for _, item := range set.Items() {
		if item.Hidden && !req.ViewHidden() {
			continue
		}
		if req.ExcludeClosedMatches() && item.Status == matches.StatusClosed {
			continue
		}
		if !req.AllowedSeePhotos() {
			item = item.WithoutPhotos()
		}
		out = append(out, item)
	}
	return out
}

// sortItems orders newest first for date keys and alphabetically for name, breaking ties
// by match id so output is stable.
func sortItems(items []matches.FeedItem, key string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch key {
		case SortLastCommDate:
			if !a.LastCommAt.Equal(b.LastCommAt) {
				return a.LastCommAt.After(b.LastCommAt)
			}
		case SortName:
			an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
			if an != bn {
				return an < bn
			}
		default:
			if !a.DeliveredAt.Equal(b.DeliveredAt) {
				return a.DeliveredAt.After(b.DeliveredAt)
			}
		}
		return a.MatchID < b.MatchID
	})
}

func paginate(items []matches.FeedItem, pageNum, pageSize int) []matches.FeedItem {
	if pageSize <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	// Compare page indexes before multiplying so huge page numbers cannot overflow.
	if len(items) == 0 || pageNum-1 > (len(items)-1)/pageSize {
		return []matches.FeedItem{}
	}
	start := (pageNum - 1) * pageSize
	end := start + min(pageSize, len(items)-start)
	return items[start:end]
}
