package availability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"roomfinder/internal/app/dto"
	"roomfinder/internal/app/queries"
	domainavailability "roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/matching"
	"roomfinder/internal/domain/shared/daterange"
	"roomfinder/internal/domain/shared/events"
)

const FindWindowsKey = "availability.find_windows"

// FindWindowsQuery looks for any stretch of Duration nights between
// SearchStart and SearchEnd.
type FindWindowsQuery struct {
	SearchStart string `json:"search_start"`
	SearchEnd   string `json:"search_end"`
	Duration    int    `json:"duration"`
	Guests      int    `json:"guests"`
}

func (q FindWindowsQuery) Key() string { return FindWindowsKey }

func (q FindWindowsQuery) Validate() error {
	_, _, err := q.request(0)
	return err
}

func (q FindWindowsQuery) request(limit int) (matching.WindowRequest, daterange.Run, error) {
	ie := newInputError()
	if q.Guests < 1 {
		ie.add("guests", matching.ErrInvalidGuests)
	}
	if q.Duration < 1 {
		ie.add("duration", matching.ErrInvalidDuration)
	}
	from, errFrom := daterange.ParseDay(q.SearchStart)
	if errFrom != nil {
		ie.add("search_start", errFrom)
	}
	to, errTo := daterange.ParseDay(q.SearchEnd)
	if errTo != nil {
		ie.add("search_end", errTo)
	}
	if errFrom == nil && errTo == nil {
		if err := domainavailability.ValidateSpan(from, to); err != nil {
			ie.add("search_end", err)
		}
	}
	if err := ie.orNil(); err != nil {
		return matching.WindowRequest{}, daterange.Run{}, err
	}
	return matching.WindowRequest{Guests: q.Guests, Duration: q.Duration, Limit: limit}, daterange.Run{From: from, To: to}, nil
}

type FindWindowsHandler struct {
	Deps
	Limit int
}

func (h *FindWindowsHandler) Handle(ctx context.Context, q FindWindowsQuery) (dto.WindowsResult, error) {
	ctx, span := h.tracer().Start(ctx, "availability.find_windows")
	defer span.End()
	span.SetAttributes(
		attribute.String("search_start", q.SearchStart),
		attribute.String("search_end", q.SearchEnd),
		attribute.Int("duration", q.Duration),
		attribute.Int("guests", q.Guests),
	)
	fail := func(err error) (dto.WindowsResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.WindowsResult{Error: err.Error()}, err
	}

	req, search, err := q.request(h.Limit)
	if err != nil {
		return fail(err)
	}
	specs, snap, err := h.load(ctx, search.From, search.To)
	if err != nil {
		return fail(err)
	}

	searchID := h.newID()
	var rec events.Recorder
	out := dto.WindowsResult{Warnings: h.warnings(ctx, searchID, snap, &rec)}

	found, err := matching.FindWindows(req, specs, snap.Map.Within(search.From, search.To))
	if err != nil {
		return fail(err)
	}
	out.Results = make([]dto.WindowRoom, 0, len(found))
	for _, m := range found {
		out.Results = append(out.Results, dto.MapWindowMatch(m, req.Guests, h.image(ctx, m.Room)))
	}
	span.SetAttributes(attribute.Int("results", len(out.Results)))

	rec.Record(domainavailability.WindowsSearched{
		SearchID:    searchID,
		SearchStart: daterange.Format(search.From),
		SearchEnd:   daterange.Format(search.To),
		Duration:    req.Duration,
		Guests:      req.Guests,
		Results:     len(out.Results),
		At:          h.now(),
	})
	h.publish(ctx, &rec)
	return out, nil
}

var _ queries.Handler[FindWindowsQuery, dto.WindowsResult] = (*FindWindowsHandler)(nil)
