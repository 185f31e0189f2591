package matches

import "strings"

// StatusGroup is a partition of statuses that the store can filter on as one unit.
type StatusGroup string

const (
	GroupNew     StatusGroup = "new"
	GroupComm    StatusGroup = "comm"
	GroupArchive StatusGroup = "archive"
	GroupClosed  StatusGroup = "closed"
)

// classification assigns every status to exactly one group.
var classification = map[MatchStatus]StatusGroup{
	StatusNew:       GroupNew,
	StatusMyTurn:    GroupComm,
	StatusTheirTurn: GroupComm,
	StatusOpenComm:  GroupComm,
	StatusArchived:  GroupArchive,
	StatusClosed:    GroupClosed,
}

// AllGroups returns every group in a stable order.
func AllGroups() []StatusGroup {
	return []StatusGroup{GroupNew, GroupComm, GroupArchive, GroupClosed}
}

// GroupOf returns the group that owns the status. Unknown statuses return "".
func GroupOf(status MatchStatus) StatusGroup {
	return classification[status]
}

// ParseGroup matches a group name case-insensitively.
func ParseGroup(name string) (StatusGroup, bool) {
	group := StatusGroup(strings.ToLower(strings.TrimSpace(name)))
	if !group.Valid() {
		return "", false
	}
	return group, true
}

// Valid reports whether g is one of the known groups.
func (g StatusGroup) Valid() bool {
	switch g {
	case GroupNew, GroupComm, GroupArchive, GroupClosed:
		return true
	default:
		return false
	}
}

// Members returns every status classified into g.
func (g StatusGroup) Members() StatusSet {
	set := StatusSet{}
	for status, group := range classification {
		if group == g {
			set.Add(status)
		}
	}
	return set
}

func (g StatusGroup) String() string {
	return string(g)
}
