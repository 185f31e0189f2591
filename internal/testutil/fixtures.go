package testutil

import (
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

// FixtureTime anchors sample timestamps so ordering assertions are stable.
var FixtureTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// SampleItem returns a minimal feed item with a photo, delivered matchID minutes before FixtureTime.
func SampleItem(matchID, userID int64, status matches.MatchStatus) matches.FeedItem {
	return matches.FeedItem{
		MatchID:     matchID,
		UserID:      userID,
		CandidateID: matchID + 10000,
		Status:      status,
		DisplayName: "candidate",
		Photos:      []string{"https://photos.example.com/sample.jpg"},
		DeliveredAt: FixtureTime.Add(-time.Duration(matchID) * time.Minute),
	}
}

// SampleFeed returns one item per status for the user, match ids starting at 1.
func SampleFeed(userID int64) []matches.FeedItem {
	out := make([]matches.FeedItem, 0, len(matches.AllStatuses()))
	for i, status := range matches.AllStatuses() {
		out = append(out, SampleItem(int64(i+1), userID, status))
	}
	return out
}
