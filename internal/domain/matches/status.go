package matches

import (
	"fmt"
	"sort"
	"strings"
)

// MatchStatus is the relationship state of one match from the requesting user's side.
// The integer value is the code persisted in the match store.
type MatchStatus int

const (
	StatusNew MatchStatus = iota
	StatusArchived
	StatusMyTurn
	StatusTheirTurn
	StatusOpenComm
	StatusClosed
)

var statusNames = map[MatchStatus]string{
	StatusNew:       "new",
	StatusArchived:  "archived",
	StatusMyTurn:    "myturn",
	StatusTheirTurn: "theirturn",
	StatusOpenComm:  "opencomm",
	StatusClosed:    "closed",
}

var statusesByName = func() map[string]MatchStatus {
	out := make(map[string]MatchStatus, len(statusNames))
	for status, name := range statusNames {
		out[name] = status
	}
	return out
}()

// AllStatuses returns every MatchStatus in code order.
func AllStatuses() []MatchStatus {
	return []MatchStatus{StatusNew, StatusArchived, StatusMyTurn, StatusTheirTurn, StatusOpenComm, StatusClosed}
}

// ParseStatus matches a token case-insensitively against the status names.
func ParseStatus(token string) (MatchStatus, bool) {
	status, ok := statusesByName[strings.ToLower(strings.TrimSpace(token))]
	return status, ok
}

// StatusFromCode maps a stored integer code back to a MatchStatus.
func StatusFromCode(code int) (MatchStatus, bool) {
	status := MatchStatus(code)
	if _, ok := statusNames[status]; !ok {
		return 0, false
	}
	return status, true
}

// Code returns the integer persisted in the store.
func (s MatchStatus) Code() int {
	return int(s)
}

// Valid reports whether s is a member of the closed status set.
func (s MatchStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s MatchStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status as its lower-case name.
func (s MatchStatus) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown match status %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a status name.
func (s *MatchStatus) UnmarshalText(text []byte) error {
	status, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown match status %q", string(text))
	}
	*s = status
	return nil
}

// StatusSet is an unordered set of statuses.
type StatusSet map[MatchStatus]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...MatchStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Add inserts a status.
func (s StatusSet) Add(status MatchStatus) {
	s[status] = struct{}{}
}

// Has reports membership.
func (s StatusSet) Has(status MatchStatus) bool {
	_, ok := s[status]
	return ok
}

// Len returns the number of statuses.
func (s StatusSet) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s StatusSet) Clone() StatusSet {
	out := make(StatusSet, len(s))
	for status := range s {
		out[status] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same statuses.
func (s StatusSet) Equal(other StatusSet) bool {
	if len(s) != len(other) {
		return false
	}
	for status := range s {
		if !other.Has(status) {
			return false
		}
	}
	return true
}

// Sorted returns the statuses in code order.
func (s StatusSet) Sorted() []MatchStatus {
	out := make([]MatchStatus, 0, len(s))
	for status := range s {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the sorted lower-case names, mostly for logging.
func (s StatusSet) Names() []string {
	sorted := s.Sorted()
	out := make([]string, 0, len(sorted))
	for _, status := range sorted {
		out = append(out, status.String())
	}
	return out
}
