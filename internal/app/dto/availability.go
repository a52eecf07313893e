package dto

import (
	"encoding/json"

	"roomfinder/internal/domain/matching"
	"roomfinder/internal/domain/pricing"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

// CheckRoomResult is the check_room_availability tool output. MatchType and
// Results are both null when nothing matched.
type CheckRoomResult struct {
	MatchType matching.MatchType `json:"match_type"`
	Results   []RoomResult       `json:"results"`
	Warnings  []string           `json:"warnings,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type RoomResult struct {
	Category      string `json:"category"`
	RoomNo        string `json:"room_no"`
	RoomTypeID    string `json:"room_type_id"`
	RoomType      string `json:"room_type"`
	MaxGuests     int    `json:"max_guests"`
	RequestGuests int    `json:"request_guests"`
	ImageToken    string `json:"image_token"`

	TotalPrice     *int64        `json:"total_price,omitempty"`
	Currency       string        `json:"currency,omitempty"`
	Nights         int           `json:"nights,omitempty"`
	BreakdownItems []PriceItem   `json:"breakdown_items,omitempty"`
	ExtraBed       *ExtraBed     `json:"extra_bed"`
	AvailableRange []string      `json:"available_ranges,omitempty"`
	NightlyRates   *NightlyRates `json:"nightly_rates,omitempty"`
}

type PriceItem struct {
	Tier     string `json:"tier"`
	Nights   int    `json:"nights"`
	Rate     int64  `json:"rate"`
	Subtotal int64  `json:"subtotal"`
}

type ExtraBed struct {
	Nights   int   `json:"nights"`
	Rate     int64 `json:"rate"`
	Subtotal int64 `json:"subtotal"`
}

type NightlyRates struct {
	Weekday int64 `json:"weekday"`
	Weekend int64 `json:"weekend"`
	Holiday int64 `json:"holiday"`
}

// WindowsResult is the find_available_windows tool output. Results is an
// empty list, never null, when the search succeeded without hits.
type WindowsResult struct {
	Results  []WindowRoom `json:"results"`
	Warnings []string     `json:"warnings,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type WindowRoom struct {
	Category       string       `json:"category"`
	RoomNo         string       `json:"room_no"`
	RoomType       string       `json:"room_type"`
	MaxGuests      int          `json:"max_guests"`
	RequestGuests  int          `json:"request_guests"`
	ImageToken     string       `json:"image_token"`
	AvailableRange []string     `json:"available_ranges"`
	NightlyRates   NightlyRates `json:"nightly_rates"`
}

// MarshalJSON emits either the results or the error, never both.
func (r WindowsResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	type plain WindowsResult
	if r.Results == nil {
		r.Results = []WindowRoom{}
	}
	return json.Marshal(plain(r))
}

func MapRates(r rooms.Rates) NightlyRates {
	return NightlyRates{Weekday: r.Weekday, Weekend: r.Weekend, Holiday: r.Holiday}
}

// MapGroup renders one match group. Exact-date groups carry a priced quote;
// alternative-date groups carry their ranges and the nightly rate table.
func MapGroup(g matching.Group, guests int, image string, quote *pricing.Quote) RoomResult {
	out := RoomResult{
		Category:      string(g.Category),
		RoomNo:        g.Label(),
		RoomTypeID:    g.Room.TypeID,
		RoomType:      g.Room.TypeName,
		MaxGuests:     g.Room.Capacity,
		RequestGuests: guests,
		ImageToken:    image,
	}
	if quote == nil {
		out.AvailableRange = daterange.FormatRuns(g.Combos)
		rates := MapRates(g.Room.Rates)
		out.NightlyRates = &rates
		return out
	}
	total := quote.Total.Amount
	out.TotalPrice = &total
	out.Currency = quote.Total.Currency
	out.Nights = quote.Nights
	out.BreakdownItems = make([]PriceItem, 0, len(quote.Items))
	for _, it := range quote.Items {
		out.BreakdownItems = append(out.BreakdownItems, PriceItem{
			Tier:     string(it.Tier),
			Nights:   it.Nights,
			Rate:     it.Rate.Amount,
			Subtotal: it.Subtotal.Amount,
		})
	}
	if quote.ExtraBed != nil {
		out.ExtraBed = &ExtraBed{
			Nights:   quote.ExtraBed.Nights,
			Rate:     quote.ExtraBed.Rate.Amount,
			Subtotal: quote.ExtraBed.Subtotal.Amount,
		}
	}
	return out
}

func MapWindowMatch(m matching.WindowMatch, guests int, image string) WindowRoom {
	return WindowRoom{
		Category:       string(m.Category),
		RoomNo:         m.Room.RoomNo,
		RoomType:       m.Room.TypeName,
		MaxGuests:      m.Room.Capacity,
		RequestGuests:  guests,
		ImageToken:     image,
		AvailableRange: daterange.FormatRuns(m.Combos),
		NightlyRates:   MapRates(m.Room.Rates),
	}
}
