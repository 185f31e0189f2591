package matches

import (
	"fmt"
	"strings"
)

// QueryDescriptor is one bounded store query. A zero Group marks the legacy single query
// over every requested status. Page and Size of 0 mean "use the store's default full fetch".
type QueryDescriptor struct {
	UserID   int64
	Group    StatusGroup
	Statuses []MatchStatus
	Page     int
	Size     int
}

// Empty reports whether the descriptor has no status filter and must not reach the store.
func (q QueryDescriptor) Empty() bool {
	return len(q.Statuses) == 0
}

// Bounded reports whether a page size cap applies.
func (q QueryDescriptor) Bounded() bool {
	return q.Size > 0
}

// Key is a stable identity used for cache keys and logs.
func (q QueryDescriptor) Key() string {
	codes := make([]string, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		codes = append(codes, fmt.Sprintf("%d", s.Code()))
	}
	group := string(q.Group)
	if group == "" {
		group = "legacy"
	}
	return fmt.Sprintf("%d:%s:%s:%d:%d", q.UserID, group, strings.Join(codes, ","), q.Page, q.Size)
}
