package matching

import (
	"sort"
	"strings"

	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

// Group is one presentable result: rooms of the same type that are
// interchangeable for this request.
type Group struct {
	Category MatchType
	Room     rooms.RoomSpec
	RoomNos  []string
	Combos   []daterange.Run
}

// Label is the sorted, comma-joined list of room numbers.
func (g Group) Label() string {
	return strings.Join(g.RoomNos, ", ")
}

// GroupCandidates merges candidates of one room type. Exact-date candidates
// merge on type alone; alternative-date candidates also need identical combos.
// Groups appear in the order of their first member; every other field is
// taken from that member.
func GroupCandidates(cands []Candidate) []Group {
	var out []Group
	index := make(map[string]int)
	for _, c := range cands {
		key := c.Room.TypeID
		if !c.Category.Exact() {
			key += "|" + strings.Join(daterange.FormatRuns(c.Combos), ";")
		}
		if i, ok := index[key]; ok {
			out[i].RoomNos = append(out[i].RoomNos, c.Room.RoomNo)
			continue
		}
		index[key] = len(out)
		out = append(out, Group{
			Category: c.Category,
			Room:     c.Room,
			RoomNos:  []string{c.Room.RoomNo},
			Combos:   c.Combos,
		})
	}
	for i := range out {
		sort.Strings(out[i].RoomNos)
	}
	return out
}
