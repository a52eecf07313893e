package pricing

import (
	"errors"
	"time"

	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
	"roomfinder/internal/domain/shared/money"
)

// DefaultExtraBedRate is the flat nightly surcharge for one extra bed.
const DefaultExtraBedRate int64 = 700

var ErrNoNights = errors.New("pricing: stay must cover at least one night")

type Tier string

const (
	Weekday Tier = "Weekday"
	Weekend Tier = "Weekend"
	Holiday Tier = "Holiday"
)

// Tiers lists the tiers in breakdown order.
var Tiers = []Tier{Weekday, Weekend, Holiday}

// TierOf classifies a night. Holidays win over weekends.
func TierOf(night time.Time) Tier {
	if IsHoliday(night) {
		return Holiday
	}
	switch night.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return Weekend
	}
	return Weekday
}

// IsHoliday reports the New Year (Dec 25 to Jan 5) and Songkran (Apr 10 to 17) seasons.
func IsHoliday(d time.Time) bool {
	_, m, day := d.Date()
	switch m {
	case time.December:
		return day >= 25
	case time.January:
		return day <= 5
	case time.April:
		return day >= 10 && day <= 17
	}
	return false
}

func RateFor(r rooms.Rates, t Tier) int64 {
	switch t {
	case Holiday:
		return r.Holiday
	case Weekend:
		return r.Weekend
	}
	return r.Weekday
}

type Item struct {
	Tier     Tier
	Nights   int
	Rate     money.Money
	Subtotal money.Money
}

type ExtraBed struct {
	Nights   int
	Rate     money.Money
	Subtotal money.Money
}

// Quote is the price of a stay. Items only list tiers with at least one night.
type Quote struct {
	Nights   int
	Items    []Item
	ExtraBed *ExtraBed
	Total    money.Money
}

type Calculator struct {
	Currency     string
	ExtraBedRate int64
}

func NewCalculator(extraBedRate int64) Calculator {
	if extraBedRate <= 0 {
		extraBedRate = DefaultExtraBedRate
	}
	return Calculator{Currency: money.THB, ExtraBedRate: extraBedRate}
}

// Quote prices every night of the stay at its tier rate and adds an extra bed
// for each night when guests exceed capacity.
func (c Calculator) Quote(rates rooms.Rates, stay daterange.DateRange, guests, capacity int) (Quote, error) {
	nights := stay.Nightly()
	if len(nights) == 0 {
		return Quote{}, ErrNoNights
	}
	currency := c.Currency
	if currency == "" {
		currency = money.THB
	}

	counts := make(map[Tier]int, len(Tiers))
	for _, n := range nights {
		counts[TierOf(n)]++
	}

	q := Quote{Nights: len(nights)}
	var parts []money.Money
	for _, tier := range Tiers {
		count := counts[tier]
		if count == 0 {
			continue
		}
		rate, err := money.New(RateFor(rates, tier), currency)
		if err != nil {
			return Quote{}, err
		}
		item := Item{Tier: tier, Nights: count, Rate: rate, Subtotal: rate.Multiply(int64(count))}
		q.Items = append(q.Items, item)
		parts = append(parts, item.Subtotal)
	}

	if guests > capacity {
		rate, err := money.New(c.ExtraBedRate, currency)
		if err != nil {
			return Quote{}, err
		}
		q.ExtraBed = &ExtraBed{Nights: len(nights), Rate: rate, Subtotal: rate.Multiply(int64(len(nights)))}
		parts = append(parts, q.ExtraBed.Subtotal)
	}

	total, err := money.Sum(currency, parts...)
	if err != nil {
		return Quote{}, err
	}
	q.Total = total
	return q, nil
}
