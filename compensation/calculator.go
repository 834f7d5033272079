/*
Package compensation converts classified hours into currency amounts.

PURPOSE:
  Takes the overtime-adjusted OB buckets of a pay period together with
  overtime, travel and per-diem counts and prices them for one employee.

FORMULAS:
  base pay          = totalHours x wage           (unadjusted: includes overtime)
  OB premium (cat)  = bucketHours x wage x (multiplier - 1)
  weekday overtime  = hours x wage x overtime_day multiplier     (1.64 by default)
  weekend overtime  = hours x wage x overtime_weekend multiplier (2.24 by default)
  travel            = hours x flat rate           (deferred when saved)
  per-diem          = full x fullRate + half x halfRate

TAXABLE GROSS:
  base + OB + overtime + paid travel. Per-diem and deferred travel are
  excluded and reported separately.

SEE ALSO:
  - period.go: Aggregation of entries into PeriodHours
  - payroll/overtime.go: Produces the adjusted buckets priced here
  - tax/estimator.go: Consumes TaxableGross
*/
package compensation

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// RATES
// =============================================================================

// Rates are the flat amounts of a company. Overtime multipliers live in the
// shift schedule next to the OB multipliers.
type Rates struct {
	FlatTravelRate  decimal.Decimal `json:"flat_travel_rate"`
	PerDiemFullRate decimal.Decimal `json:"per_diem_full_rate"`
	PerDiemHalfRate decimal.Decimal `json:"per_diem_half_rate"`
}

func DefaultRates() Rates {
	return Rates{
		FlatTravelRate:  decimal.NewFromInt(150),
		PerDiemFullRate: decimal.NewFromInt(290),
		PerDiemHalfRate: decimal.NewFromInt(145),
	}
}

func (r Rates) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"flat_travel_rate":   r.FlatTravelRate,
		"per_diem_full_rate": r.PerDiemFullRate,
		"per_diem_half_rate": r.PerDiemHalfRate,
	} {
		if v.IsNegative() {
			return &generic.ConfigError{Field: name, Message: "must not be negative"}
		}
	}
	return nil
}

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is everything priced for one employee.
type Input struct {
	// Buckets are the overtime-adjusted OB hours.
	Buckets payroll.Breakdown
	// TotalHours is the unadjusted worked total, overtime included.
	TotalHours decimal.Decimal

	OvertimeWeekdayHours decimal.Decimal
	OvertimeWeekendHours decimal.Decimal

	TravelHours      decimal.Decimal
	SavedTravelHours decimal.Decimal

	PerDiemFullDays int
	PerDiemHalfDays int
}

// OBPay is the premium per payroll category.
type OBPay struct {
	Day     decimal.Decimal `json:"day"`
	Evening decimal.Decimal `json:"evening"`
	Night   decimal.Decimal `json:"night"`
	Weekend decimal.Decimal `json:"weekend"`
}

func (o OBPay) Total() decimal.Decimal {
	return o.Day.Add(o.Evening).Add(o.Night).Add(o.Weekend)
}

type Result struct {
	BasePay            decimal.Decimal `json:"base_pay"`
	OB                 OBPay           `json:"ob"`
	OBTotal            decimal.Decimal `json:"ob_total"`
	OvertimeWeekdayPay decimal.Decimal `json:"overtime_weekday_pay"`
	OvertimeWeekendPay decimal.Decimal `json:"overtime_weekend_pay"`
	TravelPay          decimal.Decimal `json:"travel_pay"`
	DeferredTravelPay  decimal.Decimal `json:"deferred_travel_pay"`
	PerDiemPay         decimal.Decimal `json:"per_diem_pay"`

	// TaxableGross excludes per-diem and deferred travel.
	TaxableGross decimal.Decimal `json:"taxable_gross"`
	// TotalPayable is TaxableGross plus per-diem.
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate prices one employee's period. Components are rounded to two
// decimals; totals are sums of the rounded components. Every multiplier,
// overtime included, comes from the shift schedule.
func Calculate(in Input, profile generic.EmployeeProfile, shifts payroll.ShiftConfig, rates Rates) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}
	if err := shifts.Validate(); err != nil {
		return Result{}, err
	}
	if err := rates.Validate(); err != nil {
		return Result{}, err
	}
	if profile.HourlyWage.IsNegative() {
		return Result{}, &generic.ConfigError{Field: "hourly_wage", Message: "must not be negative"}
	}
	wage := profile.HourlyWage

	premium := func(hours decimal.Decimal, cat generic.Category) decimal.Decimal {
		extra := shifts.Multiplier(cat).Sub(decimal.NewFromInt(1))
		if !extra.IsPositive() {
			return decimal.Zero
		}
		return generic.RoundMoney(hours.Mul(wage).Mul(extra))
	}

	var res Result
	res.BasePay = generic.RoundMoney(in.TotalHours.Mul(wage))
	res.OB = OBPay{
		Day:     premium(in.Buckets.Day, payroll.CategoryDay),
		Evening: premium(in.Buckets.Evening, payroll.CategoryEvening),
		Night:   premium(in.Buckets.Night, payroll.CategoryNight),
		Weekend: premium(in.Buckets.Weekend, payroll.CategoryWeekend),
	}
	res.OBTotal = res.OB.Total()
	res.OvertimeWeekdayPay = generic.RoundMoney(in.OvertimeWeekdayHours.Mul(wage).Mul(shifts.OvertimeMultiplier(false)))
	res.OvertimeWeekendPay = generic.RoundMoney(in.OvertimeWeekendHours.Mul(wage).Mul(shifts.OvertimeMultiplier(true)))
	res.TravelPay = generic.RoundMoney(in.TravelHours.Mul(rates.FlatTravelRate))
	res.DeferredTravelPay = generic.RoundMoney(in.SavedTravelHours.Mul(rates.FlatTravelRate))
	res.PerDiemPay = generic.RoundMoney(
		decimal.NewFromInt(int64(in.PerDiemFullDays)).Mul(rates.PerDiemFullRate).
			Add(decimal.NewFromInt(int64(in.PerDiemHalfDays)).Mul(rates.PerDiemHalfRate)),
	)

	res.TaxableGross = res.BasePay.
		Add(res.OBTotal).
		Add(res.OvertimeWeekdayPay).
		Add(res.OvertimeWeekendPay).
		Add(res.TravelPay)
	res.TotalPayable = res.TaxableGross.Add(res.PerDiemPay)
	return res, nil
}

func validateInput(in Input) error {
	for _, h := range []decimal.Decimal{
		in.TotalHours, in.OvertimeWeekdayHours, in.OvertimeWeekendHours,
		in.TravelHours, in.SavedTravelHours,
		in.Buckets.Day, in.Buckets.Evening, in.Buckets.Night, in.Buckets.Weekend,
	} {
		if h.IsNegative() {
			return generic.ErrNegativeHours
		}
	}
	if in.PerDiemFullDays < 0 || in.PerDiemHalfDays < 0 {
		return generic.ErrNegativeHours
	}
	if in.OvertimeWeekdayHours.Add(in.OvertimeWeekendHours).GreaterThan(in.TotalHours) {
		return generic.ErrOvertimeExceedsTotal
	}
	return nil
}
