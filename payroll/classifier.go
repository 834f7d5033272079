package payroll

import (
	"time"

	"github.com/warp/payroll-engine/generic"
)

// Classifier splits shifts into day/evening/night/weekend hours.
//
// The weekend window (Friday at the weekend start hour to Monday at the
// weekend end hour) overrides every hour-of-day range. Outside it, night,
// evening and day ranges apply in that priority; uncovered time is day.
type Classifier struct {
	config      ShiftConfig
	partitioner *generic.Partitioner
}

// NewClassifier validates the config and builds the boundary table.
func NewClassifier(cfg ShiftConfig) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := generic.NewPartitioner(BoundaryTable(cfg))
	if err != nil {
		return nil, err
	}
	return &Classifier{config: cfg, partitioner: p}, nil
}

// BoundaryTable translates the shift schedule into partitioner rules.
func BoundaryTable(cfg ShiftConfig) generic.BoundaryTable {
	friday, monday := cfg.WeekendWindow()
	return generic.BoundaryTable{
		Weekly: []generic.WeeklyRange{{
			Category:  CategoryWeekend,
			StartDay:  time.Friday,
			StartHour: friday,
			EndDay:    time.Monday,
			EndHour:   monday,
		}},
		Daily: []generic.HourRange{
			{Category: CategoryNight, StartHour: cfg.Night.StartHour, EndHour: cfg.Night.EndHour},
			{Category: CategoryEvening, StartHour: cfg.Evening.StartHour, EndHour: cfg.Evening.EndHour},
			{Category: CategoryDay, StartHour: cfg.Day.StartHour, EndHour: cfg.Day.EndHour},
		},
		Priority: []generic.Category{CategoryWeekend, CategoryNight, CategoryEvening, CategoryDay},
		Fallback: CategoryDay,
	}
}

// Config returns the schedule the classifier was built from.
func (c *Classifier) Config() ShiftConfig { return c.config }

// Classify splits one shift. An end at or before the start crosses
// midnight. The break is clamped to the span and removed proportionally.
func (c *Classifier) Classify(date time.Time, start, end generic.ClockTime, breakMinutes int) (Breakdown, error) {
	if !start.Valid() || !end.Valid() {
		return Breakdown{}, generic.ErrInvalidClockTime
	}
	return c.ClassifyInterval(generic.ShiftInterval(date, start, end), breakMinutes)
}

// ClassifyClock parses "HH:MM" clock strings before classifying.
func (c *Classifier) ClassifyClock(date time.Time, start, end string, breakMinutes int) (Breakdown, error) {
	s, err := generic.ParseClockTime(start)
	if err != nil {
		return Breakdown{}, err
	}
	e, err := generic.ParseClockTime(end)
	if err != nil {
		return Breakdown{}, err
	}
	return c.Classify(date, s, e, breakMinutes)
}

// ClassifyInterval splits an explicit interval. Inverted or empty intervals
// yield all zeros without error.
func (c *Classifier) ClassifyInterval(iv generic.Interval, breakMinutes int) (Breakdown, error) {
	split, err := c.partitioner.Split(iv, int64(breakMinutes))
	if err != nil {
		return Breakdown{}, err
	}
	return breakdownFrom(split), nil
}

// ClassifyEntry classifies a stored time entry.
func (c *Classifier) ClassifyEntry(e generic.TimeEntry) (Breakdown, error) {
	b, err := c.Classify(e.Date, e.StartTime, e.EndTime, e.BreakMinutes)
	if err != nil {
		return Breakdown{}, &generic.EntryError{EntryID: e.ID, Err: err}
	}
	return b, nil
}
