package availability

import (
	"errors"
	"testing"
	"time"

	"roomfinder/internal/domain/shared/daterange"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := daterange.ParseDay(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}

func TestPlanWindows(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"single day", "2026-05-01", "2026-05-01", []string{"2026-05-01"}},
		{"inside one window", "2026-05-01", "2026-05-14", []string{"2026-05-01"}},
		{"end on next window start", "2026-05-01", "2026-05-15", []string{"2026-05-01", "2026-05-15"}},
		{"two windows", "2026-05-01", "2026-05-25", []string{"2026-05-01", "2026-05-15"}},
		{"max span", "2026-05-01", "2026-06-01", []string{"2026-05-01", "2026-05-15", "2026-05-29"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			starts, err := PlanWindows(day(t, tc.from), day(t, tc.to))
			if err != nil {
				t.Fatalf("plan: %v", err)
			}
			if len(starts) != len(tc.want) {
				t.Fatalf("windows=%d want=%d", len(starts), len(tc.want))
			}
			for i, s := range starts {
				if got := daterange.Format(s); got != tc.want[i] {
					t.Fatalf("window[%d]=%s want=%s", i, got, tc.want[i])
				}
			}
		})
	}
}

func TestPlanWindowsRejectsLongSpan(t *testing.T) {
	_, err := PlanWindows(day(t, "2026-05-01"), day(t, "2026-06-10"))
	if !errors.Is(err, ErrRangeTooLarge) {
		t.Fatalf("err=%v want ErrRangeTooLarge", err)
	}
}

func TestPlanWindowsRejectsReversedSpan(t *testing.T) {
	_, err := PlanWindows(day(t, "2026-05-10"), day(t, "2026-05-01"))
	if !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("err=%v want ErrInvalidRange", err)
	}
}

func TestCoverageEnd(t *testing.T) {
	starts, err := PlanWindows(day(t, "2026-01-09"), day(t, "2026-01-12"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got := daterange.Format(CoverageEnd(starts)); got != "2026-01-22" {
		t.Fatalf("coverage end=%s want=2026-01-22", got)
	}
	if !CoverageEnd(nil).IsZero() {
		t.Fatal("no windows cover nothing")
	}
}
