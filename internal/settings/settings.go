package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

const (
	defaultNewLimit     = 100
	defaultCommLimit    = 250
	defaultQueryTimeout = 2 * time.Second
)

// ErrInvalidLimits is returned when a group limit declaration cannot be parsed.
var ErrInvalidLimits = errors.New("invalid group limits")

// Settings is one immutable snapshot of the engine's runtime knobs. The engine reads the
// current snapshot at call time, so a reload never affects a call already in flight.
type Settings struct {
	Version       int64
	ParallelFetch bool
	Limits        LimitPolicy
	QueryTimeout  time.Duration
}

// Default returns the grouped strategy with the stock new/comm caps.
func Default() Settings {
	return Settings{
		Version:       1,
		ParallelFetch: true,
		Limits: LimitPolicy{
			matches.GroupNew:  defaultNewLimit,
			matches.GroupComm: defaultCommLimit,
		},
		QueryTimeout: defaultQueryTimeout,
	}
}

// Clone returns a copy whose limit map is not shared.
func (s Settings) Clone() Settings {
	s.Limits = s.Limits.Clone()
	return s
}

// LimitPolicy caps the number of items fetched per status group.
type LimitPolicy map[matches.StatusGroup]int

// LimitFor returns the cap for a group. A missing or non-positive entry means no cap.
func (p LimitPolicy) LimitFor(group matches.StatusGroup) (int, bool) {
	limit, ok := p[group]
	if !ok || limit <= 0 {
		return 0, false
	}
	return limit, true
}

func (p LimitPolicy) Clone() LimitPolicy {
	if p == nil {
		return nil
	}
	out := make(LimitPolicy, len(p))
	for g, v := range p {
		out[g] = v
	}
	return out
}

// String renders the policy in the same form ParseGroupLimits accepts.
func (p LimitPolicy) String() string {
	parts := make([]string, 0, len(p))
	for g, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%d", g, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// ParseGroupLimits reads "new=100,comm=250". Blank input yields an empty policy.
func ParseGroupLimits(raw string) (LimitPolicy, error) {
	policy := LimitPolicy{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLimits, part)
		}
		group, ok := matches.ParseGroup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidLimits, name)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLimits, part, err)
		}
		policy[group] = limit
	}
	return policy, nil
}

// Source hands out the current settings snapshot.
type Source interface {
	Current() Settings
}

// Static is a Source that never changes.
type Static struct {
	settings Settings
}

func NewStatic(s Settings) *Static {
	return &Static{settings: s.Clone()}
}

func (s *Static) Current() Settings {
	return s.settings.Clone()
}

// Ready is always true for a static source.
func (s *Static) Ready() bool {
	return true
}
