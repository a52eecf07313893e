package matching

import (
	"roomfinder/internal/domain/shared/daterange"
)

// GapScore counts the free days directly before check-in plus the free days
// starting at check-out. The check-out day counts: the room turns over the
// same day and is free for the next guest.
func GapScore(dates daterange.Set, stay daterange.DateRange) int {
	score := 0
	for d := stay.CheckIn.AddDate(0, 0, -1); dates.Has(d); d = d.AddDate(0, 0, -1) {
		score++
	}
	for d := stay.CheckOut; dates.Has(d); d = d.AddDate(0, 0, 1) {
		score++
	}
	return score
}

// KeepTightest keeps, for each room type with several candidates, only the
// candidates with the lowest gap score. Ties survive. Input order is kept.
func KeepTightest(cands []Candidate, stay daterange.DateRange) []Candidate {
	scores := make([]int, len(cands))
	best := make(map[string]int)
	count := make(map[string]int)
	for i, c := range cands {
		scores[i] = GapScore(c.Dates, stay)
		t := c.Room.TypeID
		count[t]++
		if cur, ok := best[t]; !ok || scores[i] < cur {
			best[t] = scores[i]
		}
	}
	out := make([]Candidate, 0, len(cands))
	for i, c := range cands {
		t := c.Room.TypeID
		if count[t] > 1 && scores[i] != best[t] {
			continue
		}
		out = append(out, c)
	}
	return out
}
