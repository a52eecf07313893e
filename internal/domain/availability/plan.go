package availability

import (
	"fmt"
	"time"

	"roomfinder/internal/domain/shared/daterange"
)

const (
	// WindowDays is the size of one PMS calendar snapshot.
	WindowDays = 14
	// MaxSpanDays bounds how many days one request may fetch.
	MaxSpanDays = 31
)

// ValidateSpan checks a fetch span [from, to] before any upstream call.
func ValidateSpan(from, to time.Time) error {
	from, to = daterange.Day(from), daterange.Day(to)
	if to.Before(from) {
		return daterange.ErrInvalidRange
	}
	if days := daterange.DaysBetween(from, to); days > MaxSpanDays {
		return fmt.Errorf("%w: %d days between %s and %s", ErrRangeTooLarge, days, daterange.Format(from), daterange.Format(to))
	}
	return nil
}

// PlanWindows returns the start date of every window needed to cover [from, to].
// A window starting at s covers s .. s+13, so another window starting at s+14
// is added while s+14 <= to.
func PlanWindows(from, to time.Time) ([]time.Time, error) {
	if err := ValidateSpan(from, to); err != nil {
		return nil, err
	}
	from, to = daterange.Day(from), daterange.Day(to)
	starts := []time.Time{from}
	for end := from.AddDate(0, 0, WindowDays); !end.After(to); end = end.AddDate(0, 0, WindowDays) {
		starts = append(starts, end)
	}
	return starts, nil
}

// CoverageEnd is the last day the planned windows report.
func CoverageEnd(starts []time.Time) time.Time {
	if len(starts) == 0 {
		return time.Time{}
	}
	return daterange.Day(starts[len(starts)-1]).AddDate(0, 0, WindowDays-1)
}
