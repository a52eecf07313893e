package availability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

// DefaultVersion is assumed when a payload omits its version field.
const DefaultVersion = "1.0"

// ExternalID accepts both JSON strings and numbers; the PMS is not consistent.
type ExternalID string

func (id *ExternalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("availability: id must be string or number: %w", err)
	}
	*id = ExternalID(n.String())
	return nil
}

type rawRoom struct {
	ID         ExternalID `json:"id"`
	RoomNo     ExternalID `json:"roomNo"`
	RoomTypeID ExternalID `json:"roomTypeId"`
}

type rawRoomType struct {
	ID   ExternalID `json:"id"`
	Name string     `json:"name"`
}

type rawReservation struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

type rawWindow struct {
	StartDate           string          `json:"startDate"`
	EndDate             string          `json:"endDate"`
	Version             json.RawMessage `json:"version"`
	RoomList            []rawRoom       `json:"roomList"`
	RoomTypeList        []rawRoomType   `json:"roomTypeList"`
	ReservationRoomList json.RawMessage `json:"reservationRoomList"`
}

// RoomDates is one room's free nights inside a window or merged span.
type RoomDates struct {
	RoomID   string
	RoomNo   string
	TypeID   string
	TypeName string
	Dates    daterange.Set
}

// Window is one parsed PMS snapshot.
type Window struct {
	Start    time.Time
	End      time.Time
	Version  string
	Rooms    map[string]*RoomDates
	Mismatch *VersionMismatchError
	Issues   []*RecordIssue
}

// EmptyWindow stands in for a snapshot the PMS answered with no content.
func EmptyWindow(start time.Time) Window {
	start = daterange.Day(start)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, WindowDays-1),
		Rooms: map[string]*RoomDates{},
	}
}

// ParseWindow turns a raw calendar payload into per-room free nights. Every
// roster room starts fully free for [startDate, endDate]; each reservation then
// removes the nights from check-in up to, but excluding, check-out.
//
// Record-level problems are collected in Issues. A payload that cannot be read
// at all yields a *WindowError carrying whatever version it reported.
func ParseWindow(requested time.Time, payload []byte, expectedVersion string) (Window, error) {
	requested = daterange.Day(requested)
	if len(bytes.TrimSpace(payload)) == 0 {
		return EmptyWindow(requested), nil
	}

	var raw rawWindow
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Window{}, &WindowError{WindowStart: requested, Version: sniffVersion(payload), Err: fmt.Errorf("%w: %v", ErrMalformedWindow, err)}
	}
	version := decodeVersion(raw.Version)
	fail := func(err error) (Window, error) {
		return Window{}, &WindowError{WindowStart: requested, Version: version, Err: err}
	}

	start, err := daterange.ParseDay(raw.StartDate)
	if err != nil {
		return fail(fmt.Errorf("%w: startDate: %v", ErrMalformedWindow, err))
	}
	end, err := daterange.ParseDay(raw.EndDate)
	if err != nil {
		return fail(fmt.Errorf("%w: endDate: %v", ErrMalformedWindow, err))
	}
	if end.Before(start) {
		return fail(fmt.Errorf("%w: endDate %s before startDate %s", ErrMalformedWindow, raw.EndDate, raw.StartDate))
	}
	if daterange.DaysBetween(start, end) >= WindowDays {
		return fail(fmt.Errorf("%w: %s..%s is longer than %d days", ErrMalformedWindow, raw.StartDate, raw.EndDate, WindowDays))
	}

	w := Window{Start: start, End: end, Version: version, Rooms: make(map[string]*RoomDates, len(raw.RoomList))}
	if expectedVersion != "" && version != expectedVersion {
		w.Mismatch = &VersionMismatchError{Expected: expectedVersion, Received: version, WindowStart: start}
	}

	typeNames := make(map[string]string, len(raw.RoomTypeList))
	for _, t := range raw.RoomTypeList {
		typeNames[string(t.ID)] = t.Name
	}
	days := daterange.Span(start, end)
	byID := make(map[string]*RoomDates, len(raw.RoomList))
	for _, r := range raw.RoomList {
		if strings.TrimSpace(string(r.RoomNo)) == "" {
			w.Issues = append(w.Issues, &RecordIssue{RoomType: string(r.RoomTypeID), RoomID: string(r.ID), Err: fmt.Errorf("%w: room has no number", ErrMalformedBooking)})
			continue
		}
		rd := &RoomDates{
			RoomID:   string(r.ID),
			RoomNo:   string(r.RoomNo),
			TypeID:   string(r.RoomTypeID),
			TypeName: typeNames[string(r.RoomTypeID)],
			Dates:    daterange.NewSet(days...),
		}
		byID[rd.RoomID] = rd
		w.Rooms[rooms.Key(rd.RoomNo)] = rd
	}

	index, issue := decodeObject(raw.ReservationRoomList)
	if issue != nil {
		return fail(fmt.Errorf("%w: reservationRoomList: %v", ErrMalformedWindow, issue))
	}
	for _, typeID := range sortedKeys(index) {
		byRoom, err := decodeObject(index[typeID])
		if err != nil {
			w.Issues = append(w.Issues, &RecordIssue{RoomType: typeID, Err: fmt.Errorf("%w: %v", ErrMalformedBooking, err)})
			continue
		}
		for _, roomID := range sortedKeys(byRoom) {
			rd, ok := byID[roomID]
			if !ok {
				w.Issues = append(w.Issues, &RecordIssue{RoomType: typeID, RoomID: roomID, Err: ErrUnknownRoom})
				continue
			}
			byDate, err := decodeObject(byRoom[roomID])
			if err != nil {
				w.Issues = append(w.Issues, &RecordIssue{RoomType: typeID, RoomID: roomID, Err: fmt.Errorf("%w: %v", ErrMalformedBooking, err)})
				continue
			}
			for _, date := range sortedKeys(byDate) {
				var list []rawReservation
				if err := json.Unmarshal(byDate[date], &list); err != nil {
					w.Issues = append(w.Issues, &RecordIssue{RoomType: typeID, RoomID: roomID, Date: date, Err: fmt.Errorf("%w: %v", ErrMalformedBooking, err)})
					continue
				}
				for _, res := range list {
					if err := reserve(rd.Dates, res, start, end); err != nil {
						w.Issues = append(w.Issues, &RecordIssue{RoomType: typeID, RoomID: roomID, Date: date, Err: err})
					}
				}
			}
		}
	}
	return w, nil
}

// reserve removes the reservation's nights that fall inside [from, to].
func reserve(dates daterange.Set, res rawReservation, from, to time.Time) error {
	stay, err := daterange.Parse(res.CheckIn, res.CheckOut)
	if err != nil {
		return fmt.Errorf("%w: %q..%q: %v", ErrMalformedBooking, res.CheckIn, res.CheckOut, err)
	}
	first, last := stay.CheckIn, stay.CheckOut.AddDate(0, 0, -1)
	if first.Before(from) {
		first = from
	}
	if last.After(to) {
		last = to
	}
	for night := first; !night.After(last); night = night.AddDate(0, 0, 1) {
		dates.Remove(night)
	}
	return nil
}

// decodeObject reads a JSON object as raw members. Empty arrays and null are
// treated as an empty object: the PMS serialises empty maps as [].
func decodeObject(b json.RawMessage) (map[string]json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, nil
	}
	if b[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(b, &arr); err != nil {
			return nil, err
		}
		if len(arr) > 0 {
			return nil, fmt.Errorf("expected object, got array of %d", len(arr))
		}
		return nil, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeVersion(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return DefaultVersion
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return DefaultVersion
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return DefaultVersion
}

// sniffVersion digs the version out of a payload that failed full decoding.
func sniffVersion(payload []byte) string {
	var head struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return ""
	}
	return decodeVersion(head.Version)
}
