// Package pricing computes stay, service and penalty amounts.  Every
// function is pure; amounts are exact decimals and never floating point.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

var (
	// MinAdvanceRatio is the smallest share of the total that must be paid
	// upfront when booking.
	MinAdvanceRatio = decimal.RequireFromString("0.30")
	// PenaltyRatio is charged on every reschedule of a pending reservation.
	PenaltyRatio = decimal.RequireFromString("0.10")
)

const day = 24 * time.Hour

// Nights returns the whole calendar days between entry and departure,
// truncated toward zero.  Both dates are reduced to their UTC calendar day
// first so a late check-in hour never bills a partial night.
func Nights(entry, departure time.Time) int {
	from := DateOnly(entry)
	to := DateOnly(departure)
	return int(to.Sub(from) / day)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightlyCost is rate × Nights(entry, departure).  The caller guarantees
// departure is after entry.
func NightlyCost(rate decimal.Decimal, entry, departure time.Time) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(Nights(entry, departure))))
}

// ServicesCost sums the snapshot prices.  An empty list costs zero.
func ServicesCost(services []model.ReservationService) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}

// AdvanceValid reports the two advance rules separately: withinTotal is
// advance ≤ total and meetsMinimum is advance ≥ 30% of total.
func AdvanceValid(total, advance decimal.Decimal) (withinTotal, meetsMinimum bool) {
	withinTotal = advance.LessThanOrEqual(total)
	meetsMinimum = advance.GreaterThanOrEqual(MinimumAdvance(total))
	return withinTotal, meetsMinimum
}

// WholeCents reports whether amount has no fraction finer than a cent,
// the precision of every stored money column.
func WholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// MinimumAdvance is 30% of total.
func MinimumAdvance(total decimal.Decimal) decimal.Decimal {
	return total.Mul(MinAdvanceRatio)
}

// PenaltyOnReschedule is 10% of what the reservation is worth so far
// (paid plus outstanding), rounded to cents.  Callers add it to the
// existing penalty; it never replaces it.
func PenaltyOnReschedule(totalPaid, remaining decimal.Decimal) decimal.Decimal {
	return totalPaid.Add(remaining).Mul(PenaltyRatio).Round(2)
}
