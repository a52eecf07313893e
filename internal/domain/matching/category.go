package matching

import "encoding/json"

// MatchType is the outcome tag of an exact-stay search. NoMatch is the
// explicit "searched and found nothing" value and serialises as null.
type MatchType string

const (
	NoMatch                       MatchType = ""
	PerfectMatch                  MatchType = "PerfectMatch"
	DatesMatchExtendBed           MatchType = "DatesMatchExtendBed"
	DatesMatchLargeRoom           MatchType = "DatesMatchLargeRoom"
	DurationMatchAlternativeDates MatchType = "DurationMatchAlternativeDates"
)

// Priority lists the categories in the order they are offered.
var Priority = []MatchType{PerfectMatch, DatesMatchExtendBed, DatesMatchLargeRoom, DurationMatchAlternativeDates}

// Exact reports whether the category matches the requested dates as asked.
func (m MatchType) Exact() bool {
	switch m {
	case PerfectMatch, DatesMatchExtendBed, DatesMatchLargeRoom:
		return true
	}
	return false
}

func (m MatchType) String() string {
	if m == NoMatch {
		return "none"
	}
	return string(m)
}

func (m MatchType) MarshalJSON() ([]byte, error) {
	if m == NoMatch {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

// Fit is how a room's capacity relates to the party size.
type Fit int

const (
	TooSmall Fit = iota
	Snug         // capacity - guests is 0 or 1
	ExtraBed     // guests == capacity + 1
	Oversized    // capacity - guests >= 2
)

func FitOf(guests, capacity int) Fit {
	diff := capacity - guests
	switch {
	case diff == 0 || diff == 1:
		return Snug
	case diff == -1:
		return ExtraBed
	case diff >= 2:
		return Oversized
	}
	return TooSmall
}

func (f Fit) exactCategory() MatchType {
	switch f {
	case Snug:
		return PerfectMatch
	case ExtraBed:
		return DatesMatchExtendBed
	case Oversized:
		return DatesMatchLargeRoom
	}
	return NoMatch
}
