package feed

import "github.com/preston-bernstein/match-feed-service/internal/domain/matches"

// BuildQuery turns one group's statuses into a store query. With a limit the query asks for
// the first page of that size; without one it carries the 0/0 full-fetch sentinel.
func BuildQuery(userID int64, group matches.StatusGroup, statuses matches.StatusSet, limit int, hasLimit bool) matches.QueryDescriptor {
	q := matches.QueryDescriptor{
		UserID:   userID,
		Group:    group,
		Statuses: statuses.Sorted(),
	}
	if hasLimit && limit > 0 {
		q.Page = 1
		q.Size = limit
	}
	return q
}
