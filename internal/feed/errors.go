package feed

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

// AggregationError reports the first group query that failed during a strict fetch.
type AggregationError struct {
	UserID   int64
	Strategy string
	Group    matches.StatusGroup
	Cause    error
}

func (e *AggregationError) Error() string {
	group := string(e.Group)
	if group == "" {
		group = "legacy"
	}
	return fmt.Sprintf("feed aggregation failed (user=%d strategy=%s group=%s): %v", e.UserID, e.Strategy, group, e.Cause)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}

// AsAggregationError attempts to unwrap an error into an AggregationError.
func AsAggregationError(err error) (*AggregationError, bool) {
	var aggErr *AggregationError
	if errors.As(err, &aggErr) {
		return aggErr, true
	}
	return nil, false
}
