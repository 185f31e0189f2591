package feeds

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/feed"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
	"github.com/preston-bernstein/match-feed-service/internal/store"
)

var fixtureNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, gw store.Gateway) *Service {
	t.Helper()
	if gw == nil {
		gw = store.NewMemoryGateway(store.FixtureItems(fixtureNow)...)
	}
	engine := feed.NewEngine(gw, settings.NewStatic(settings.Settings{ParallelFetch: true}), nil, nil)
	legacy := feed.NewEngine(gw, settings.NewStatic(settings.Settings{ParallelFetch: false}), nil, nil)
	return NewService(engine, legacy, gw)
}

func request(t *testing.T, userID int64, tokens []string, opts func(*matches.RequestBuilder)) matches.RequestContext {
	t.Helper()
	b := matches.NewRequestBuilder().UserID(userID).Statuses(matches.ExpandTokens(tokens))
	if opts != nil {
		opts(b)
	}
	req, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return req
}

type failingGateway struct{}

func (failingGateway) Query(context.Context, matches.QueryDescriptor) (matches.FeedSet, error) {
	return nil, errors.New("store down")
}

func (failingGateway) Get(context.Context, int64, int64) (matches.FeedItem, bool, error) {
	return matches.FeedItem{}, false, errors.New("store down")
}

func TestMatchesHidesHiddenAndStripsPhotos(t *testing.T) {
	svc := newService(t, nil)

	page, err := svc.Matches(context.Background(), request(t, 42, []string{"all"}, nil))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if page.Total != 6 {
		t.Fatalf("expected hidden archived match filtered, got total %d", page.Total)
	}
	for _, item := range page.Matches {
		if item.Hidden {
			t.Fatalf("expected no hidden items, got %d", item.MatchID)
		}
		if item.HasPhotos() {
			t.Fatalf("expected photos stripped without allowedSeePhotos, got %d", item.MatchID)
		}
	}
	if page.Matches[0].MatchID != 1001 {
		t.Fatalf("expected newest delivered first, got %d", page.Matches[0].MatchID)
	}
}

func TestMatchesHonoursFlagsAndPaging(t *testing.T) {
	svc := newService(t, nil)
	req := request(t, 42, []string{"all"}, func(b *matches.RequestBuilder) {
		b.ViewHidden(true).AllowedSeePhotos(true).Page(2, 3)
	})

	page, err := svc.Matches(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if page.Total != 7 || page.PageNum != 2 || page.PageSize != 3 {
		t.Fatalf("unexpected page meta %+v", page)
	}
	if len(page.Matches) != 3 || page.Matches[0].MatchID != 1004 {
		t.Fatalf("unexpected second page %+v", page.Matches)
	}

	beyond, _ := svc.Matches(context.Background(), request(t, 42, []string{"all"}, func(b *matches.RequestBuilder) { b.Page(10, 3) }))
	if len(beyond.Matches) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(beyond.Matches))
	}
}

func TestMatchesStrictFailureSurfaces(t *testing.T) {
	svc := newService(t, failingGateway{})
	_, err := svc.Matches(context.Background(), request(t, 42, []string{"new"}, nil))
	if _, ok := feed.AsAggregationError(err); !ok {
		t.Fatalf("expected aggregation error, got %v", err)
	}
}

func TestTeaserFiltersAndCaps(t *testing.T) {
	svc := newService(t, nil)

	items, err := svc.Teaser(context.Background(), request(t, 42, []string{"new", "comm"}, func(b *matches.RequestBuilder) { b.TeaserResultSize(2) }))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(items))
	}
	for _, item := range items {
		if !item.HasPhotos() || item.Status == matches.StatusClosed {
			t.Fatalf("unexpected teaser item %+v", item)
		}
	}
	if items[0].MatchID != 1001 || items[1].MatchID != 1003 {
		t.Fatalf("expected photo matches newest first, got %d,%d", items[0].MatchID, items[1].MatchID)
	}
}

func TestTeaserDegradesToEmpty(t *testing.T) {
	svc := newService(t, failingGateway{})
	items, err := svc.Teaser(context.Background(), request(t, 7, []string{"new"}, nil))
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty teaser, got %v %v", items, err)
	}
}

func TestMatchedUsersSorts(t *testing.T) {
	svc := newService(t, nil)

	byName, err := svc.MatchedUsers(context.Background(), request(t, 42, []string{"comm"}, func(b *matches.RequestBuilder) { b.SortBy("name") }))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(byName) != 3 || byName[0].DisplayName != "Casey" || byName[2].DisplayName != "Emery" {
		t.Fatalf("unexpected name order %+v", byName)
	}

	byComm, _ := svc.MatchedUsers(context.Background(), request(t, 42, []string{"comm"}, func(b *matches.RequestBuilder) { b.SortBy("lastCommDate") }))
	if byComm[0].MatchID != 1003 || byComm[2].MatchID != 1005 {
		t.Fatalf("unexpected last comm order %+v", byComm)
	}
}

func TestMatchedUsersExcludesClosed(t *testing.T) {
	svc := newService(t, nil)
	users, err := svc.MatchedUsers(context.Background(), request(t, 42, []string{"all"}, func(b *matches.RequestBuilder) { b.ExcludeClosedMatches(true) }))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for _, u := range users {
		if u.Status == matches.StatusClosed {
			t.Fatalf("expected closed match excluded")
		}
	}
	if len(users) != 5 {
		t.Fatalf("expected 5 visible open matches, got %d", len(users))
	}
}

func TestMatchedUsersRejectsUnknownSort(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.MatchedUsers(context.Background(), request(t, 42, nil, func(b *matches.RequestBuilder) { b.SortBy("age") }))
	if !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestCountReportsEveryGroup(t *testing.T) {
	svc := newService(t, nil)

	counts, err := svc.Count(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if counts.Total != 2 || counts.Groups["new"] != 1 || counts.Groups["comm"] != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if v, ok := counts.Groups["archive"]; !ok || v != 0 {
		t.Fatalf("expected empty groups reported as zero, got %+v", counts.Groups)
	}
}

func TestMatchAndInternalFeed(t *testing.T) {
	svc := newService(t, nil)

	item, ok, err := svc.Match(context.Background(), 42, 1004)
	if err != nil || !ok || item.Status != matches.StatusTheirTurn {
		t.Fatalf("unexpected match lookup %+v ok=%v err=%v", item, ok, err)
	}

	all, err := svc.InternalFeed(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(all) != 7 || all[0].MatchID != 1001 || !all[5].Hidden {
		t.Fatalf("expected full unfiltered feed, got %d items", len(all))
	}
	if !all[0].HasPhotos() {
		t.Fatalf("expected photos retained in internal feed")
	}
}

func TestAwaitHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := await(ctx, make(chan feed.Result)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestParseSort(t *testing.T) {
	cases := map[string]string{"": SortDeliveredDate, "DELIVEREDDATE": SortDeliveredDate, "lastcommdate": SortLastCommDate, "Name": SortName}
	for raw, want := range cases {
		got, err := ParseSort(raw)
		if err != nil || got != want {
			t.Fatalf("expected %s for %q, got %s %v", want, raw, got, err)
		}
	}
}

func TestPaginateWindows(t *testing.T) {
	items := []matches.FeedItem{{MatchID: 1}, {MatchID: 2}, {MatchID: 3}, {MatchID: 4}, {MatchID: 5}}

	cases := []struct {
		name     string
		pageNum  int
		pageSize int
		want     []int64
	}{
		{"first page", 1, 2, []int64{1, 2}},
		{"last partial page", 3, 2, []int64{5}},
		{"past the end", 4, 2, nil},
		{"zero page is first", 0, 2, []int64{1, 2}},
		{"unpaged", 7, 0, []int64{1, 2, 3, 4, 5}},
		{"page index would overflow", math.MaxInt/4 + 2, 4, nil},
		{"huge page size", 1, math.MaxInt, []int64{1, 2, 3, 4, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := paginate(items, tc.pageNum, tc.pageSize)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d items, got %d", len(tc.want), len(got))
			}
			for i, id := range tc.want {
				if got[i].MatchID != id {
					t.Fatalf("expected match %d at %d, got %d", id, i, got[i].MatchID)
				}
			}
		})
	}
}

func TestMatchesHugePageNumberReturnsEmptyPage(t *testing.T) {
	svc := newService(t, nil)
	req := request(t, 42, []string{"all"}, func(b *matches.RequestBuilder) {
		b.Page(math.MaxInt/4+2, 4)
	})

	page, err := svc.Matches(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Matches) != 0 || page.Total == 0 {
		t.Fatalf("expected empty page with a non-zero total, got %+v", page)
	}
}
