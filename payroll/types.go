// Package payroll implements the payroll OB classification of shifts.
// It uses the generic partitioner with the company's shift schedule and
// allocates separately declared overtime back onto the classified buckets.
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// PAYROLL CATEGORIES
// =============================================================================

const (
	CategoryDay     generic.Category = "day"
	CategoryEvening generic.Category = "evening"
	CategoryNight   generic.Category = "night"
	CategoryWeekend generic.Category = "weekend"
)

// =============================================================================
// SHIFT CLASSIFICATION CONFIG - One row per shift type, admin-editable
// =============================================================================

type ShiftType string

const (
	ShiftDay             ShiftType = "day"
	ShiftEvening         ShiftType = "evening"
	ShiftNight           ShiftType = "night"
	ShiftWeekend         ShiftType = "weekend"
	ShiftOvertimeDay     ShiftType = "overtime_day"
	ShiftOvertimeWeekend ShiftType = "overtime_weekend"
)

// ShiftRule is one configuration row. For the weekend row StartHour is the
// Friday cutoff and EndHour the Monday cutoff.
type ShiftRule struct {
	Type       ShiftType       `json:"shift_type"`
	StartHour  int             `json:"start_hour"`
	EndHour    int             `json:"end_hour"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// ShiftConfig is the full payroll schedule of a company.
type ShiftConfig struct {
	Day             ShiftRule
	Evening         ShiftRule
	Night           ShiftRule
	Weekend         ShiftRule
	OvertimeDay     ShiftRule
	OvertimeWeekend ShiftRule
}

// DefaultShiftConfig is the schedule seeded for new companies.
func DefaultShiftConfig() ShiftConfig {
	return ShiftConfig{
		Day:             ShiftRule{Type: ShiftDay, StartHour: 7, EndHour: 18, Multiplier: decimal.NewFromInt(1)},
		Evening:         ShiftRule{Type: ShiftEvening, StartHour: 18, EndHour: 22, Multiplier: generic.MustParseDecimal("1.25")},
		Night:           ShiftRule{Type: ShiftNight, StartHour: 22, EndHour: 7, Multiplier: generic.MustParseDecimal("1.4")},
		Weekend:         ShiftRule{Type: ShiftWeekend, StartHour: 18, EndHour: 7, Multiplier: generic.MustParseDecimal("1.7")},
		OvertimeDay:     ShiftRule{Type: ShiftOvertimeDay, Multiplier: generic.MustParseDecimal("1.64")},
		OvertimeWeekend: ShiftRule{Type: ShiftOvertimeWeekend, Multiplier: generic.MustParseDecimal("2.24")},
	}
}

// ShiftConfigFromRows builds a config from stored rows. Missing rows keep
// their defaults.
func ShiftConfigFromRows(rows []ShiftRule) (ShiftConfig, error) {
	cfg := DefaultShiftConfig()
	for _, r := range rows {
		switch r.Type {
		case ShiftDay:
			cfg.Day = r
		case ShiftEvening:
			cfg.Evening = r
		case ShiftNight:
			cfg.Night = r
		case ShiftWeekend:
			cfg.Weekend = r
		case ShiftOvertimeDay:
			cfg.OvertimeDay = r
		case ShiftOvertimeWeekend:
			cfg.OvertimeWeekend = r
		default:
			return ShiftConfig{}, &generic.ConfigError{Field: "shift_type", Message: fmt.Sprintf("unknown shift type %q", r.Type)}
		}
	}
	return cfg, cfg.Validate()
}

// Rows lists the config in storage order.
func (c ShiftConfig) Rows() []ShiftRule {
	return []ShiftRule{c.Day, c.Evening, c.Night, c.Weekend, c.OvertimeDay, c.OvertimeWeekend}
}

// Validate requires multipliers of at least 1.
func (c ShiftConfig) Validate() error {
	one := decimal.NewFromInt(1)
	for _, r := range c.Rows() {
		if r.Multiplier.LessThan(one) {
			return &generic.ConfigError{Field: string(r.Type), Message: "multiplier must be >= 1"}
		}
	}
	return nil
}

// WeekendWindow returns the Friday and Monday cutoff hours. Hour 0 is a real
// cutoff: 0/0 runs the weekend from Friday midnight to Monday midnight.
func (c ShiftConfig) WeekendWindow() (fridayHour, mondayHour int) {
	return c.Weekend.StartHour, c.Weekend.EndHour
}

// WithScheduleWeekend places the weekend cutoffs at the evening start on
// Friday and the day start on Monday.
func (c ShiftConfig) WithScheduleWeekend() ShiftConfig {
	c.Weekend.StartHour = c.Evening.StartHour
	c.Weekend.EndHour = c.Day.StartHour
	return c
}

// OvertimeMultiplier returns the payout factor for weekday or weekend overtime.
func (c ShiftConfig) OvertimeMultiplier(weekend bool) decimal.Decimal {
	if weekend {
		return c.OvertimeWeekend.Multiplier
	}
	return c.OvertimeDay.Multiplier
}

// Multiplier returns the OB multiplier for a category.
func (c ShiftConfig) Multiplier(cat generic.Category) decimal.Decimal {
	switch cat {
	case CategoryDay:
		return c.Day.Multiplier
	case CategoryEvening:
		return c.Evening.Multiplier
	case CategoryNight:
		return c.Night.Multiplier
	case CategoryWeekend:
		return c.Weekend.Multiplier
	}
	return decimal.NewFromInt(1)
}

// =============================================================================
// BREAKDOWN - Hours per payroll category
// =============================================================================

// Breakdown is the payroll variant; billing.Breakdown has no evening bucket.
type Breakdown struct {
	Day     decimal.Decimal `json:"day"`
	Evening decimal.Decimal `json:"evening"`
	Night   decimal.Decimal `json:"night"`
	Weekend decimal.Decimal `json:"weekend"`
}

// Total is the sum of all four buckets.
func (b Breakdown) Total() decimal.Decimal {
	return generic.SumHours(b.Day, b.Evening, b.Night, b.Weekend)
}

// WeekdayTotal is day + evening + night.
func (b Breakdown) WeekdayTotal() decimal.Decimal {
	return generic.SumHours(b.Day, b.Evening, b.Night)
}

// Add sums two breakdowns bucket by bucket.
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		Day:     b.Day.Add(o.Day),
		Evening: b.Evening.Add(o.Evening),
		Night:   b.Night.Add(o.Night),
		Weekend: b.Weekend.Add(o.Weekend),
	}
}

// Get returns the bucket for a category.
func (b Breakdown) Get(cat generic.Category) decimal.Decimal {
	switch cat {
	case CategoryDay:
		return b.Day
	case CategoryEvening:
		return b.Evening
	case CategoryNight:
		return b.Night
	case CategoryWeekend:
		return b.Weekend
	}
	return decimal.Zero
}

// Categories is the fixed bucket order used for reporting.
func Categories() []generic.Category {
	return []generic.Category{CategoryDay, CategoryEvening, CategoryNight, CategoryWeekend}
}

func breakdownFrom(s generic.Split) Breakdown {
	return Breakdown{
		Day:     s.Get(CategoryDay),
		Evening: s.Get(CategoryEvening),
		Night:   s.Get(CategoryNight),
		Weekend: s.Get(CategoryWeekend),
	}
}
