package matches

import (
	"errors"
	"testing"
)

func TestExpandTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   StatusSet
	}{
		{name: "empty", tokens: nil, want: StatusSet{}},
		{name: "single status", tokens: []string{"NEW"}, want: NewStatusSet(StatusNew)},
		{name: "group alias", tokens: []string{"comm"}, want: NewStatusSet(StatusMyTurn, StatusTheirTurn, StatusOpenComm)},
		{name: "all sentinel", tokens: []string{"new", "All"}, want: NewStatusSet(AllStatuses()...)},
		{name: "unknown dropped", tokens: []string{"bogus", "closed"}, want: NewStatusSet(StatusClosed)},
		{name: "only unknown", tokens: []string{"bogus"}, want: StatusSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandTokens(tt.tokens)
			if !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want.Names(), got.Names())
			}
		})
	}
}

func TestParseTokensRejectsFullyUnknownInput(t *testing.T) {
	if _, err := ParseTokens([]string{"bogus", "nope"}); !errors.Is(err, ErrNoValidStatus) {
		t.Fatalf("expected ErrNoValidStatus, got %v", err)
	}

	set, err := ParseTokens(nil)
	if err != nil {
		t.Fatalf("expected empty input to be accepted, got %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", set.Names())
	}
}

func TestSplitTokens(t *testing.T) {
	got := SplitTokens([]string{"new, comm", "", "closed"})
	if len(got) != 3 || got[0] != "new" || got[1] != "comm" || got[2] != "closed" {
		t.Fatalf("unexpected tokens %v", got)
	}
}
