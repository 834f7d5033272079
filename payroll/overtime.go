package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// AllocateOvertime removes declared overtime from the ordinary buckets.
//
// Weekend overtime comes straight off the weekend bucket, floored at zero.
// Weekday overtime is treated as the last hours worked, spread across day,
// evening and night in proportion to what the shift touched: all three scale
// by max(0, weekdayTotal-overtime)/weekdayTotal. Entries do not record when
// overtime began, so there is nothing to allocate by time.
func AllocateOvertime(b Breakdown, overtimeWeekday, overtimeWeekend decimal.Decimal) (Breakdown, error) {
	if overtimeWeekday.IsNegative() || overtimeWeekend.IsNegative() {
		return Breakdown{}, generic.ErrNegativeHours
	}

	out := b
	out.Weekend = decimal.Max(decimal.Zero, b.Weekend.Sub(overtimeWeekend))

	weekday := b.WeekdayTotal()
	if weekday.IsZero() {
		out.Day, out.Evening, out.Night = decimal.Zero, decimal.Zero, decimal.Zero
		return out, nil
	}

	remaining := decimal.Max(decimal.Zero, weekday.Sub(overtimeWeekday))
	ratio := remaining.Div(weekday)
	scaled := generic.RoundPreservingTotal(map[generic.Category]decimal.Decimal{
		CategoryDay:     b.Day.Mul(ratio),
		CategoryEvening: b.Evening.Mul(ratio),
		CategoryNight:   b.Night.Mul(ratio),
	}, Categories(), generic.RoundHours(remaining))

	out.Day = scaled[CategoryDay]
	out.Evening = scaled[CategoryEvening]
	out.Night = scaled[CategoryNight]
	return out, nil
}
