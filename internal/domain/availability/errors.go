package availability

import (
	"errors"
	"fmt"
	"time"

	"roomfinder/internal/domain/shared/daterange"
)

var (
	ErrRangeTooLarge    = errors.New("availability: requested span exceeds 31 days")
	ErrMalformedWindow  = errors.New("availability: malformed window payload")
	ErrNoUsableWindow   = errors.New("availability: no window could be parsed")
	ErrUnknownRoom      = errors.New("availability: reservation references unknown room")
	ErrMalformedBooking = errors.New("availability: malformed reservation")
)

// VersionMismatchError reports a payload whose schema version differs from the
// one the parser targets. It is a warning: the parse result is still used.
type VersionMismatchError struct {
	Expected    string
	Received    string
	WindowStart time.Time
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("availability: PMS schema version mismatch for window %s: expected %s, received %s",
		daterange.Format(e.WindowStart), e.Expected, e.Received)
}

func IsVersionMismatch(err error) *VersionMismatchError {
	var target *VersionMismatchError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// WindowError means one window was discarded. Sibling windows are unaffected.
type WindowError struct {
	WindowStart time.Time
	Version     string
	Err         error
}

func (e *WindowError) Error() string {
	msg := fmt.Sprintf("availability: window %s skipped: %v", daterange.Format(e.WindowStart), e.Err)
	if e.Version != "" {
		msg += " (version " + e.Version + ")"
	}
	return msg
}

func (e *WindowError) Unwrap() error { return e.Err }

func IsWindowError(err error) *WindowError {
	var target *WindowError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// RecordIssue is a single skipped record inside an otherwise usable window.
type RecordIssue struct {
	RoomType string
	RoomID   string
	Date     string
	Err      error
}

func (e *RecordIssue) Error() string {
	return fmt.Sprintf("availability: record type=%s room=%s date=%s skipped: %v", e.RoomType, e.RoomID, e.Date, e.Err)
}

func (e *RecordIssue) Unwrap() error { return e.Err }
