package matches

import (
	"errors"
	"strings"
)

// AllToken is the sentinel requesting every status.
const AllToken = "all"

// ErrNoValidStatus is returned when none of the supplied tokens names a status or group.
var ErrNoValidStatus = errors.New("no valid match status")

// ExpandTokens converts free-text tokens into a typed set. Matching is case-insensitive;
// "all" selects every status, a group name selects its members, unknown tokens are dropped.
func ExpandTokens(tokens []string) StatusSet {
	set := StatusSet{}
	for _, raw := range tokens {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if token == AllToken {
			return NewStatusSet(AllStatuses()...)
		}
		if status, ok := ParseStatus(token); ok {
			set.Add(status)
			continue
		}
		if group, ok := ParseGroup(token); ok {
			for status := range group.Members() {
				set.Add(status)
			}
		}
	}
	return set
}

// ParseTokens is ExpandTokens for the transport boundary: a non-empty token list that
// yields no status is rejected with ErrNoValidStatus. An empty list returns an empty set.
func ParseTokens(tokens []string) (StatusSet, error) {
	set := ExpandTokens(tokens)
	if set.Len() == 0 && hasNonBlank(tokens) {
		return nil, ErrNoValidStatus
	}
	return set, nil
}

// SplitTokens flattens comma separated values, as sent by some clients in one parameter.
func SplitTokens(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func hasNonBlank(tokens []string) bool {
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
