package availability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"roomfinder/internal/app/dto"
	"roomfinder/internal/app/queries"
	domainavailability "roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/matching"
	"roomfinder/internal/domain/pricing"
	"roomfinder/internal/domain/shared/daterange"
	"roomfinder/internal/domain/shared/events"
)

const CheckRoomKey = "availability.check_room"

// CheckRoomQuery asks which rooms can host Guests for the exact stay.
type CheckRoomQuery struct {
	Guests   int    `json:"guests"`
	CheckIn  string `json:"check_in_date"`
	CheckOut string `json:"check_out_date"`
}

func (q CheckRoomQuery) Key() string { return CheckRoomKey }

func (q CheckRoomQuery) Validate() error {
	_, err := q.request()
	return err
}

func (q CheckRoomQuery) request() (matching.Request, error) {
	ie := newInputError()
	if q.Guests < 1 {
		ie.add("guests", matching.ErrInvalidGuests)
	}
	in, errIn := daterange.ParseDay(q.CheckIn)
	if errIn != nil {
		ie.add("check_in_date", errIn)
	}
	out, errOut := daterange.ParseDay(q.CheckOut)
	if errOut != nil {
		ie.add("check_out_date", errOut)
	}
	var stay daterange.DateRange
	if errIn == nil && errOut == nil {
		var err error
		if stay, err = daterange.New(in, out); err != nil {
			ie.add("check_out_date", err)
		} else if err := domainavailability.ValidateSpan(fetchFrom(stay), stay.CheckOut); err != nil {
			ie.add("check_out_date", err)
		}
	}
	if err := ie.orNil(); err != nil {
		return matching.Request{}, err
	}
	return matching.Request{Guests: q.Guests, Stay: stay}, nil
}

// fetchFrom starts the fetch one day before check-in so the gap score can
// see the slack on that side. The fetched windows are kept whole, which also
// gives the gap score and alternative dates the days after check-out.
func fetchFrom(stay daterange.DateRange) time.Time {
	return stay.CheckIn.AddDate(0, 0, -1)
}

type CheckRoomHandler struct {
	Deps
	Pricing pricing.Calculator
}

// Handle always returns a well-formed result; on failure its Error field
// carries the same message as the returned error.
func (h *CheckRoomHandler) Handle(ctx context.Context, q CheckRoomQuery) (dto.CheckRoomResult, error) {
	ctx, span := h.tracer().Start(ctx, "availability.check_room")
	defer span.End()
	span.SetAttributes(
		attribute.Int("guests", q.Guests),
		attribute.String("check_in", q.CheckIn),
		attribute.String("check_out", q.CheckOut),
	)
	fail := func(err error) (dto.CheckRoomResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.CheckRoomResult{Error: err.Error()}, err
	}

	req, err := q.request()
	if err != nil {
		return fail(err)
	}
	specs, snap, err := h.load(ctx, fetchFrom(req.Stay), req.Stay.CheckOut)
	if err != nil {
		return fail(err)
	}

	searchID := h.newID()
	var rec events.Recorder
	out := dto.CheckRoomResult{Warnings: h.warnings(ctx, searchID, snap, &rec)}

	res, err := matching.Match(req, specs, snap.Map)
	if err != nil {
		return fail(err)
	}
	out.MatchType = res.Type
	for _, g := range res.Groups {
		var quote *pricing.Quote
		if g.Category.Exact() {
			qt, err := h.Pricing.Quote(g.Room.Rates, req.Stay, req.Guests, g.Room.Capacity)
			if err != nil {
				return fail(fmt.Errorf("price room %s: %w", g.Room.RoomNo, err))
			}
			quote = &qt
		}
		out.Results = append(out.Results, dto.MapGroup(g, req.Guests, h.image(ctx, g.Room), quote))
	}
	span.SetAttributes(attribute.String("match_type", res.Type.String()), attribute.Int("results", len(out.Results)))

	rec.Record(domainavailability.Checked{
		SearchID:  searchID,
		Guests:    req.Guests,
		CheckIn:   daterange.Format(req.Stay.CheckIn),
		CheckOut:  daterange.Format(req.Stay.CheckOut),
		MatchType: string(res.Type),
		Results:   len(out.Results),
		At:        h.now(),
	})
	h.publish(ctx, &rec)
	return out, nil
}

var _ queries.Handler[CheckRoomQuery, dto.CheckRoomResult] = (*CheckRoomHandler)(nil)
