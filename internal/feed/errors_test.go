package feed

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

func TestAggregationErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("wrapped: %w", &AggregationError{UserID: 7, Strategy: "parallel", Group: matches.GroupNew, Cause: cause})

	aggErr, ok := AsAggregationError(err)
	if !ok {
		t.Fatalf("expected aggregation error")
	}
	if aggErr.UserID != 7 || aggErr.Group != matches.GroupNew {
		t.Fatalf("unexpected fields %+v", aggErr)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if !strings.Contains(aggErr.Error(), "group=new") {
		t.Fatalf("expected group in message, got %q", aggErr.Error())
	}
}

func TestAggregationErrorLegacyGroupName(t *testing.T) {
	err := &AggregationError{UserID: 1, Strategy: "sync", Cause: errors.New("x")}
	if !strings.Contains(err.Error(), "group=legacy") {
		t.Fatalf("expected legacy label, got %q", err.Error())
	}
	if _, ok := AsAggregationError(errors.New("plain")); ok {
		t.Fatalf("expected plain error not to match")
	}
}
