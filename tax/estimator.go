// Package tax produces a simplified withholding estimate.
//
// The model is NOT payroll-law accurate. Municipal tax is a flat
// percentage (the employee's "tax table") of gross pay, and state tax is
// 20 % of the part of monthly gross above a threshold. It reproduces the
// estimate shown on the review screen; replacing it with real withholding
// tables is a business decision outside this package.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// StateTaxRate applies to monthly gross above the threshold.
var StateTaxRate = generic.MustParseDecimal("0.20")

// DefaultMonthlyThreshold is the monthly gross above which state tax starts.
var DefaultMonthlyThreshold = decimal.NewFromInt(51158)

var hundred = decimal.NewFromInt(100)

// Result is the estimate for one employee and period.
type Result struct {
	GrossPay     decimal.Decimal `json:"gross_pay"`
	MunicipalTax decimal.Decimal `json:"municipal_tax"`
	StateTax     decimal.Decimal `json:"state_tax"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	NetSalary    decimal.Decimal `json:"net_salary"`
}

// Estimate computes tax on grossPay. taxTablePercent must be within 0-100,
// the threshold and gross must not be negative.
func Estimate(grossPay, taxTablePercent, monthlyThreshold decimal.Decimal) (Result, error) {
	switch {
	case grossPay.IsNegative():
		return Result{}, fmt.Errorf("%w: gross pay %s is negative", generic.ErrInvalidTaxInput, grossPay)
	case taxTablePercent.IsNegative() || taxTablePercent.GreaterThan(hundred):
		return Result{}, fmt.Errorf("%w: tax table %s outside 0-100", generic.ErrInvalidTaxInput, taxTablePercent)
	case monthlyThreshold.IsNegative():
		return Result{}, fmt.Errorf("%w: threshold %s is negative", generic.ErrInvalidTaxInput, monthlyThreshold)
	}

	municipal := generic.RoundMoney(grossPay.Mul(taxTablePercent).Div(hundred))
	state := generic.RoundMoney(decimal.Max(decimal.Zero, grossPay.Sub(monthlyThreshold)).Mul(StateTaxRate))
	total := municipal.Add(state)

	return Result{
		GrossPay:     grossPay,
		MunicipalTax: municipal,
		StateTax:     state,
		TotalTax:     total,
		NetSalary:    grossPay.Sub(total),
	}, nil
}
