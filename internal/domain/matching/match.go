package matching

import (
	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/rooms"
)

// Result is the answer to an exact-stay search.
type Result struct {
	Type   MatchType
	Groups []Group
}

// Match classifies, ranks and groups in one pass. Only the best category is
// returned; an empty result has Type NoMatch and nil Groups.
func Match(req Request, specs []rooms.RoomSpec, avail availability.Map) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	best, cands := Classify(req, specs, avail).Best()
	if best == NoMatch {
		return Result{Type: NoMatch}, nil
	}
	if best.Exact() {
		cands = KeepTightest(cands, req.Stay)
	}
	return Result{Type: best, Groups: GroupCandidates(cands)}, nil
}
