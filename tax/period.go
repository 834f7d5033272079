package tax

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	daysPerYear   = decimal.NewFromInt(365)
)

// PeriodThreshold scales the monthly state-tax threshold to a pay period.
// A period of whole calendar months gets the threshold once per month. Any
// other range is prorated by its days at 365/12 days per month.
func PeriodThreshold(monthly decimal.Decimal, p generic.Period) decimal.Decimal {
	if months, ok := wholeMonths(p); ok {
		return monthly.Mul(decimal.NewFromInt(int64(months)))
	}
	days := decimal.NewFromInt(int64(p.Days()))
	return generic.RoundMoney(monthly.Mul(days).Mul(monthsPerYear).Div(daysPerYear))
}

func wholeMonths(p generic.Period) (int, bool) {
	if p.Start.Day() != 1 || p.End.AddDate(0, 0, 1).Day() != 1 {
		return 0, false
	}
	return (p.End.Year()-p.Start.Year())*12 + int(p.End.Month()-p.Start.Month()) + 1, true
}
