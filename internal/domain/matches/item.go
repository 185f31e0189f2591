package matches

import (
	"encoding/json"
	"sort"
	"time"
)

// FeedItem is one match entry as stored for a user. MatchID is the uniqueness key.
type FeedItem struct {
	MatchID     int64             `json:"matchId"`
	UserID      int64             `json:"userId"`
	CandidateID int64             `json:"candidateId"`
	Status      MatchStatus       `json:"status"`
	DisplayName string            `json:"displayName,omitempty"`
	Hidden      bool              `json:"hidden,omitempty"`
	Photos      []string          `json:"photos,omitempty"`
	DeliveredAt time.Time         `json:"deliveredAt"`
	LastCommAt  time.Time         `json:"lastCommAt"`
	Profile     map[string]string `json:"profile,omitempty"`
}

// HasPhotos reports whether the candidate has at least one photo.
func (i FeedItem) HasPhotos() bool {
	return len(i.Photos) > 0
}

// Group returns the status group the item belongs to.
func (i FeedItem) Group() StatusGroup {
	return GroupOf(i.Status)
}

// WithoutPhotos returns a copy with photo URLs removed.
func (i FeedItem) WithoutPhotos() FeedItem {
	i.Photos = nil
	return i
}

// FeedSet is a set of feed items keyed by match id.
type FeedSet map[int64]FeedItem

// NewFeedSet builds a set, collapsing duplicate match ids.
func NewFeedSet(items ...FeedItem) FeedSet {
	set := make(FeedSet, len(items))
	for _, item := range items {
		set[item.MatchID] = item
	}
	return set
}

// Add inserts or replaces the item with the same match id.
func (s FeedSet) Add(item FeedItem) {
	s[item.MatchID] = item
}

// Merge unions other into s.
func (s FeedSet) Merge(other FeedSet) {
	for id, item := range other {
		s[id] = item
	}
}

// Len returns the number of unique matches.
func (s FeedSet) Len() int {
	return len(s)
}

// Contains reports whether the match id is present.
func (s FeedSet) Contains(matchID int64) bool {
	_, ok := s[matchID]
	return ok
}

// IDs returns the match ids in ascending order.
func (s FeedSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Items returns the items ordered by match id.
func (s FeedSet) Items() []FeedItem {
	ids := s.IDs()
	out := make([]FeedItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, s[id])
	}
	return out
}

// SameMatches reports set equality on match ids.
func (s FeedSet) SameMatches(other FeedSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a list ordered by match id.
func (s FeedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// UnmarshalJSON decodes a list of items into the set.
func (s *FeedSet) UnmarshalJSON(data []byte) error {
	var items []FeedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewFeedSet(items...)
	return nil
}
