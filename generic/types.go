/*
Package generic provides the core interval-classification engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for splitting
  worked time into categories. Whether the categories are payroll OB buckets
  (day/evening/night/weekend) or customer billing rates (day/night/weekend),
  the same partitioner cuts the interval and the same rounding rules apply.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: Type-safe company/user/project/entry IDs
  - Category: A named bucket that hours are classified into
  - Hours helpers: Minute/hour conversion and two-decimal rounding

DESIGN PRINCIPLES:
  1. Purity: No I/O. Configuration is passed in, never fetched.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs prevents mixing user/company IDs
  4. Auditability: Every bucket sums back to the worked duration

USAGE:
  table := generic.BoundaryTable{...}
  p := generic.NewPartitioner(table)
  hours := p.Partition(generic.Interval{Start: s, End: e})

SEE ALSO:
  - partition.go: Boundary tables and the partitioner
  - time.go: Clock times and intervals
  - payroll/classifier.go, billing/classifier.go: Concrete classifiers
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CompanyID string
type UserID string
type ProjectID string
type EntryID string

// =============================================================================
// CATEGORY
// =============================================================================

// Category identifies a classification bucket. Domain packages define their
// own constants; the generic package has no knowledge of concrete categories.
type Category string

// =============================================================================
// HOURS
// =============================================================================

// HourPrecision is the number of decimals hours are reported with.
const HourPrecision int32 = 2

// MoneyPrecision is the number of decimals currency amounts are reported with.
const MoneyPrecision int32 = 2

var minutesPerHour = decimal.NewFromInt(60)

// MinutesToHours converts whole minutes to an unrounded hour value.
func MinutesToHours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(minutesPerHour)
}

// RoundHours rounds to HourPrecision decimals.
func RoundHours(h decimal.Decimal) decimal.Decimal { return h.Round(HourPrecision) }

// RoundMoney rounds to MoneyPrecision decimals.
func RoundMoney(m decimal.Decimal) decimal.Decimal { return m.Round(MoneyPrecision) }

// MustParseDecimal parses s or returns zero.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Hours builds a decimal from a float hour value. Intended for tests and
// configuration defaults, not for arithmetic.
func Hours(h float64) decimal.Decimal { return decimal.NewFromFloat(h) }

// SumHours adds all values.
func SumHours(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
