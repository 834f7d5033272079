// Package billing classifies worked time for customer invoices.
//
// Billing rates are coarser than the payroll OB schedule (no evening rate)
// and use their own boundary table, but share the generic partitioner so the
// weekend and midnight handling is identical to payroll.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// BILLING CATEGORIES
// =============================================================================

const (
	CategoryDay     generic.Category = "day"
	CategoryNight   generic.Category = "night"
	CategoryWeekend generic.Category = "weekend"
)

// =============================================================================
// CONFIG
// =============================================================================

// Rate is one billing category's window and price multiplier.
type Rate struct {
	StartHour  int             `json:"start_hour"`
	EndHour    int             `json:"end_hour"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Config is a company's billing schedule. Weekend runs from Friday at
// Weekend.StartHour to Monday at Weekend.EndHour.
type Config struct {
	Day     Rate `json:"day"`
	Night   Rate `json:"night"`
	Weekend Rate `json:"weekend"`
}

// DefaultConfig bills 06-18 as day, the rest of the weekday as night.
func DefaultConfig() Config {
	return Config{
		Day:     Rate{StartHour: 6, EndHour: 18, Multiplier: decimal.NewFromInt(1)},
		Night:   Rate{StartHour: 18, EndHour: 6, Multiplier: generic.MustParseDecimal("1.5")},
		Weekend: Rate{StartHour: 18, EndHour: 6, Multiplier: decimal.NewFromInt(2)},
	}
}

// Validate requires multipliers of at least 1.
func (c Config) Validate() error {
	one := decimal.NewFromInt(1)
	for name, r := range map[string]Rate{"day": c.Day, "night": c.Night, "weekend": c.Weekend} {
		if r.Multiplier.LessThan(one) {
			return &generic.ConfigError{Field: "billing." + name, Message: "multiplier must be >= 1"}
		}
	}
	return nil
}

// BoundaryTable translates the billing schedule into partitioner rules.
func BoundaryTable(c Config) generic.BoundaryTable {
	return generic.BoundaryTable{
		Weekly: []generic.WeeklyRange{{
			Category:  CategoryWeekend,
			StartDay:  time.Friday,
			StartHour: c.Weekend.StartHour,
			EndDay:    time.Monday,
			EndHour:   c.Weekend.EndHour,
		}},
		Daily: []generic.HourRange{
			{Category: CategoryNight, StartHour: c.Night.StartHour, EndHour: c.Night.EndHour},
			{Category: CategoryDay, StartHour: c.Day.StartHour, EndHour: c.Day.EndHour},
		},
		Priority: []generic.Category{CategoryWeekend, CategoryNight, CategoryDay},
		Fallback: CategoryDay,
	}
}

// =============================================================================
// BREAKDOWN
// =============================================================================

// Breakdown is the billing variant of classified hours.
type Breakdown struct {
	Day     decimal.Decimal `json:"day"`
	Night   decimal.Decimal `json:"night"`
	Weekend decimal.Decimal `json:"weekend"`
}

func (b Breakdown) Total() decimal.Decimal {
	return generic.SumHours(b.Day, b.Night, b.Weekend)
}

func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{Day: b.Day.Add(o.Day), Night: b.Night.Add(o.Night), Weekend: b.Weekend.Add(o.Weekend)}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

type Classifier struct {
	config      Config
	partitioner *generic.Partitioner
}

func NewClassifier(c Config) (*Classifier, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, err := generic.NewPartitioner(BoundaryTable(c))
	if err != nil {
		return nil, err
	}
	return &Classifier{config: c, partitioner: p}, nil
}

// Classify splits one shift; end at or before start crosses midnight.
func (c *Classifier) Classify(date time.Time, start, end generic.ClockTime, breakMinutes int) (Breakdown, error) {
	if !start.Valid() || !end.Valid() {
		return Breakdown{}, generic.ErrInvalidClockTime
	}
	split, err := c.partitioner.Split(generic.ShiftInterval(date, start, end), int64(breakMinutes))
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Day:     split.Get(CategoryDay),
		Night:   split.Get(CategoryNight),
		Weekend: split.Get(CategoryWeekend),
	}, nil
}

// ClassifyEntry classifies a stored time entry.
func (c *Classifier) ClassifyEntry(e generic.TimeEntry) (Breakdown, error) {
	b, err := c.Classify(e.Date, e.StartTime, e.EndTime, e.BreakMinutes)
	if err != nil {
		return Breakdown{}, &generic.EntryError{EntryID: e.ID, Err: err}
	}
	return b, nil
}

// =============================================================================
// INVOICE LINES
// =============================================================================

// Line is one priced invoice row.
type Line struct {
	Category   generic.Category `json:"category"`
	Hours      decimal.Decimal  `json:"hours"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	Multiplier decimal.Decimal  `json:"multiplier"`
	Amount     decimal.Decimal  `json:"amount"`
}

// Invoice prices a breakdown at hourlyRate times each category multiplier.
// Zero-hour categories are omitted.
func (c *Classifier) Invoice(b Breakdown, hourlyRate decimal.Decimal) []Line {
	rows := []struct {
		cat   generic.Category
		hours decimal.Decimal
		rate  Rate
	}{
		{CategoryDay, b.Day, c.config.Day},
		{CategoryNight, b.Night, c.config.Night},
		{CategoryWeekend, b.Weekend, c.config.Weekend},
	}

	var lines []Line
	for _, r := range rows {
		if r.hours.IsZero() {
			continue
		}
		lines = append(lines, Line{
			Category:   r.cat,
			Hours:      r.hours,
			UnitPrice:  hourlyRate,
			Multiplier: r.rate.Multiplier,
			Amount:     generic.RoundMoney(r.hours.Mul(hourlyRate).Mul(r.rate.Multiplier)),
		})
	}
	return lines
}
