package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive range of calendar dates (a pay period)
// =============================================================================

// Period is the time boundary for aggregation and export. Both ends are
// calendar dates and both are included.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod validates and normalizes a pay period.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: DateOf(start), End: DateOf(end)}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

// Contains reports whether the calendar date of t is inside [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days covered.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

func (p Period) String() string {
	return "[" + p.Start.Format(DateLayout) + ", " + p.End.Format(DateLayout) + "]"
}

// =============================================================================
// PAY PERIOD CONFIG - Which period a date falls into
// =============================================================================

// PayPeriodType defines how pay periods are laid out on the calendar.
type PayPeriodType string

const (
	PayPeriodMonthly     PayPeriodType = "monthly"      // 1st - last day of month
	PayPeriodSemiMonthly PayPeriodType = "semi_monthly" // 1-15, 16-end
	PayPeriodBiweekly    PayPeriodType = "biweekly"     // 14 days from Anchor
	PayPeriodWeekly      PayPeriodType = "weekly"       // Monday - Sunday
)

// PayPeriodConfig is a company's pay cycle. Anchor is the first day of any
// biweekly period and is ignored by the other types.
type PayPeriodConfig struct {
	Type   PayPeriodType
	Anchor time.Time
}

// DefaultPayPeriod is a monthly cycle.
func DefaultPayPeriod() PayPeriodConfig {
	return PayPeriodConfig{Type: PayPeriodMonthly}
}

// Validate checks the type and that biweekly cycles carry an anchor.
func (pc PayPeriodConfig) Validate() error {
	switch pc.Type {
	case PayPeriodMonthly, PayPeriodSemiMonthly, PayPeriodWeekly:
		return nil
	case PayPeriodBiweekly:
		if pc.Anchor.IsZero() {
			return &ConfigError{Field: "pay_period.anchor", Message: "is required for biweekly periods"}
		}
		return nil
	}
	return &ConfigError{Field: "pay_period.type", Message: fmt.Sprintf("unknown type %q", pc.Type)}
}

// PeriodFor returns the pay period containing date. Unknown types fall back
// to monthly.
func (pc PayPeriodConfig) PeriodFor(date time.Time) Period {
	d := DateOf(date)
	switch pc.Type {
	case PayPeriodSemiMonthly:
		if d.Day() <= 15 {
			return Period{Start: NewDate(d.Year(), d.Month(), 1), End: NewDate(d.Year(), d.Month(), 15)}
		}
		return Period{Start: NewDate(d.Year(), d.Month(), 16), End: endOfMonth(d)}

	case PayPeriodWeekly:
		start := d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
		return Period{Start: start, End: start.AddDate(0, 0, 6)}

	case PayPeriodBiweekly:
		return pc.biweeklyPeriod(d)

	default:
		return Period{Start: NewDate(d.Year(), d.Month(), 1), End: endOfMonth(d)}
	}
}

func (pc PayPeriodConfig) biweeklyPeriod(d time.Time) Period {
	anchor := DateOf(pc.Anchor)
	days := int(d.Sub(anchor).Hours() / 24)
	offset := days % 14
	if offset < 0 {
		offset += 14
	}
	start := d.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 13)}
}

// Previous returns the pay period immediately before p.
func (pc PayPeriodConfig) Previous(p Period) Period {
	return pc.PeriodFor(p.Start.AddDate(0, 0, -1))
}

// Next returns the pay period immediately after p.
func (pc PayPeriodConfig) Next(p Period) Period {
	return pc.PeriodFor(p.End.AddDate(0, 0, 1))
}

// LastClosed returns the most recent period that ended before now.
func (pc PayPeriodConfig) LastClosed(now time.Time) Period {
	return pc.Previous(pc.PeriodFor(now))
}

func endOfMonth(d time.Time) time.Time {
	return NewDate(d.Year(), d.Month(), 1).AddDate(0, 1, -1)
}
