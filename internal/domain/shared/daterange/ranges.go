package daterange

import (
	"sort"
	"time"
)

// Set is a set of calendar days keyed by their YYYY-MM-DD form.
type Set map[string]struct{}

func NewSet(days ...time.Time) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s Set) Add(d time.Time)    { s[Format(d)] = struct{}{} }
func (s Set) Remove(d time.Time) { delete(s, Format(d)) }

func (s Set) Has(d time.Time) bool {
	_, ok := s[Format(d)]
	return ok
}

func (s Set) Union(other Set) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Clip drops every day outside [from, to].
func (s Set) Clip(from, to time.Time) {
	lo, hi := Format(from), Format(to)
	for k := range s {
		if k < lo || k > hi {
			delete(s, k)
		}
	}
}

// Sorted returns the days in ascending order. The layout sorts lexically.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	out.Union(s)
	return out
}

// Run is a closed interval of consecutive days.
type Run struct {
	From time.Time
	To   time.Time
}

func (r Run) Len() int { return DaysBetween(r.From, r.To) + 1 }

// String renders "A to B", or just "A" for a single day.
func (r Run) String() string {
	if r.From.Equal(r.To) {
		return Format(r.From)
	}
	return Format(r.From) + " to " + Format(r.To)
}

func (r Run) Days() []time.Time { return Span(r.From, r.To) }

// Runs collapses days into maximal runs of consecutive days. Input order and
// duplicates do not matter. Invalid day strings fail the whole call.
func Runs(days []string) ([]Run, error) {
	parsed := make([]time.Time, 0, len(days))
	for _, raw := range days {
		d, err := ParseDay(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, d)
	}
	return RunsOf(parsed), nil
}

// RunsOf is Runs for already parsed days.
func RunsOf(days []time.Time) []Run {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]time.Time, len(days))
	for i, d := range days {
		sorted[i] = Day(d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var out []Run
	cur := Run{From: sorted[0], To: sorted[0]}
	for _, d := range sorted[1:] {
		switch DaysBetween(cur.To, d) {
		case 0:
			// duplicate
		case 1:
			cur.To = d
		default:
			out = append(out, cur)
			cur = Run{From: d, To: d}
		}
	}
	return append(out, cur)
}

// FormatRanges merges day strings into human-readable contiguous ranges.
func FormatRanges(days []string) ([]string, error) {
	runs, err := Runs(days)
	if err != nil {
		return nil, err
	}
	return FormatRuns(runs), nil
}

func FormatRuns(runs []Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.String())
	}
	return out
}

// Expand is the inverse of RunsOf.
func Expand(runs []Run) []string {
	var out []string
	for _, r := range runs {
		for _, d := range r.Days() {
			out = append(out, Format(d))
		}
	}
	return out
}
