package availability

import (
	"errors"
	"time"

	"roomfinder/internal/domain/shared/daterange"
)

// Map is the availability of every PMS room over one fetch span, keyed by
// lowercase room number. Dates outside [From, To] never appear.
type Map struct {
	From  time.Time
	To    time.Time
	Rooms map[string]RoomDates
}

// Dates returns the free nights of a room, or nil when the PMS never reported it.
func (m Map) Dates(key string) daterange.Set {
	rd, ok := m.Rooms[key]
	if !ok {
		return nil
	}
	return rd.Dates
}

// Snapshot is a merged Map plus every non-fatal problem met while building it.
type Snapshot struct {
	Map
	Mismatches   []*VersionMismatchError
	WindowErrors []*WindowError
	Issues       []*RecordIssue
}

// Within returns a copy of the map narrowed to [from, to].
func (m Map) Within(from, to time.Time) Map {
	from, to = daterange.Day(from), daterange.Day(to)
	out := Map{From: from, To: to, Rooms: make(map[string]RoomDates, len(m.Rooms))}
	for key, rd := range m.Rooms {
		rd.Dates = rd.Dates.Clone()
		rd.Dates.Clip(from, to)
		out.Rooms[key] = rd
	}
	return out
}

// Warnings flattens the non-fatal problems for callers that only report them.
func (s Snapshot) Warnings() []error {
	var out []error
	for _, m := range s.Mismatches {
		out = append(out, m)
	}
	for _, w := range s.WindowErrors {
		out = append(out, w)
	}
	for _, i := range s.Issues {
		out = append(out, i)
	}
	return out
}

// Merge unions the windows' per-room dates and clips the result to [from, to].
// Room metadata comes from the first window that reported the room; a room
// absent from some windows keeps what the others said. A failed window is
// recorded and skipped. Merge fails only when no window succeeded.
func Merge(from, to time.Time, windows []Window, failed []*WindowError, expectedVersion string) (Snapshot, error) {
	from, to = daterange.Day(from), daterange.Day(to)
	snap := Snapshot{
		Map:          Map{From: from, To: to, Rooms: make(map[string]RoomDates)},
		WindowErrors: failed,
	}
	for _, w := range windows {
		if w.Mismatch != nil {
			snap.Mismatches = append(snap.Mismatches, w.Mismatch)
		}
		snap.Issues = append(snap.Issues, w.Issues...)
		for key, rd := range w.Rooms {
			cur, ok := snap.Rooms[key]
			if !ok {
				cur = RoomDates{RoomID: rd.RoomID, RoomNo: rd.RoomNo, TypeID: rd.TypeID, TypeName: rd.TypeName, Dates: daterange.Set{}}
			}
			cur.Dates.Union(rd.Dates)
			snap.Rooms[key] = cur
		}
	}
	for _, we := range failed {
		if expectedVersion != "" && we.Version != "" && we.Version != expectedVersion {
			snap.Mismatches = append(snap.Mismatches, &VersionMismatchError{Expected: expectedVersion, Received: we.Version, WindowStart: we.WindowStart})
		}
	}
	for _, rd := range snap.Rooms {
		rd.Dates.Clip(from, to)
	}
	if len(windows) == 0 && len(failed) > 0 {
		errs := make([]error, 0, len(failed)+1)
		errs = append(errs, ErrNoUsableWindow)
		for _, we := range failed {
			errs = append(errs, we)
		}
		return snap, errors.Join(errs...)
	}
	return snap, nil
}
