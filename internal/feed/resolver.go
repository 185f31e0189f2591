package feed

import "github.com/preston-bernstein/match-feed-service/internal/domain/matches"

// DefaultStatus is used when a request names no status at all.
const DefaultStatus = matches.StatusNew

// Resolve partitions the requested statuses by group. Only groups with at least one
// requested status appear. An empty request resolves like {new}.
func Resolve(statuses matches.StatusSet) map[matches.StatusGroup]matches.StatusSet {
	if statuses.Len() == 0 {
		statuses = matches.NewStatusSet(DefaultStatus)
	}
	out := make(map[matches.StatusGroup]matches.StatusSet)
	for status := range statuses {
		group := matches.GroupOf(status)
		if group == "" {
			continue
		}
		set, ok := out[group]
		if !ok {
			set = matches.StatusSet{}
			out[group] = set
		}
		set.Add(status)
	}
	return out
}

// ResolveTokens is Resolve over free-text tokens. Blank input resolves like {"new"};
// input made only of unknown tokens resolves to an empty mapping.
func ResolveTokens(tokens []string) map[matches.StatusGroup]matches.StatusSet {
	if len(matches.SplitTokens(tokens)) == 0 {
		return Resolve(nil)
	}
	set := matches.ExpandTokens(tokens)
	if set.Len() == 0 {
		return map[matches.StatusGroup]matches.StatusSet{}
	}
	return Resolve(set)
}

// orderedGroups returns the groups present in resolved in classification order.
func orderedGroups(resolved map[matches.StatusGroup]matches.StatusSet) []matches.StatusGroup {
	out := make([]matches.StatusGroup, 0, len(resolved))
	for _, g := range matches.AllGroups() {
		if _, ok := resolved[g]; ok {
			out = append(out, g)
		}
	}
	return out
}
