package compensation

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PERIOD HOURS - Per-employee totals for one pay period
// =============================================================================

// PeriodHours accumulates one employee's entries.
type PeriodHours struct {
	UserID     generic.UserID
	EntryCount int

	// Classified is the sum of the raw classifier output.
	Classified payroll.Breakdown
	// Adjusted is Classified with overtime removed, entry by entry.
	Adjusted payroll.Breakdown

	TotalHours      decimal.Decimal
	OvertimeWeekday decimal.Decimal
	OvertimeWeekend decimal.Decimal

	// TravelHours are paid out this period; SavedTravelHours are deferred.
	TravelHours      decimal.Decimal
	SavedTravelHours decimal.Decimal

	PerDiemFullDays int
	PerDiemHalfDays int

	perDiemByDate map[time.Time]generic.PerDiemType
}

// Input converts the totals into calculator input.
func (h PeriodHours) Input() Input {
	return Input{
		Buckets:              h.Adjusted,
		TotalHours:           h.TotalHours,
		OvertimeWeekdayHours: h.OvertimeWeekday,
		OvertimeWeekendHours: h.OvertimeWeekend,
		TravelHours:          h.TravelHours,
		SavedTravelHours:     h.SavedTravelHours,
		PerDiemFullDays:      h.PerDiemFullDays,
		PerDiemHalfDays:      h.PerDiemHalfDays,
	}
}

// PerDiemDays returns the resolved per-diem type per calendar date.
func (h PeriodHours) PerDiemDays() map[time.Time]generic.PerDiemType {
	out := make(map[time.Time]generic.PerDiemType, len(h.perDiemByDate))
	for d, t := range h.perDiemByDate {
		out[d] = t
	}
	return out
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate validates, classifies and allocates every entry and sums them
// per user. Every invalid entry is reported; valid entries are still summed
// so callers can show partial results next to the errors.
func Aggregate(entries []generic.TimeEntry, classifier *payroll.Classifier) (map[generic.UserID]*PeriodHours, error) {
	out := make(map[generic.UserID]*PeriodHours)
	var errs []error

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		classified, err := classifier.ClassifyEntry(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		adjusted, err := payroll.AllocateOvertime(classified, e.OvertimeWeekdayHours, e.OvertimeWeekendHours)
		if err != nil {
			errs = append(errs, &generic.EntryError{EntryID: e.ID, Err: err})
			continue
		}

		h, ok := out[e.UserID]
		if !ok {
			h = &PeriodHours{UserID: e.UserID, perDiemByDate: make(map[time.Time]generic.PerDiemType)}
			out[e.UserID] = h
		}
		h.EntryCount++
		h.Classified = h.Classified.Add(classified)
		h.Adjusted = h.Adjusted.Add(adjusted)
		h.TotalHours = h.TotalHours.Add(e.TotalHours())
		h.OvertimeWeekday = h.OvertimeWeekday.Add(e.OvertimeWeekdayHours)
		h.OvertimeWeekend = h.OvertimeWeekend.Add(e.OvertimeWeekendHours)
		if e.SaveTravelCompensation {
			h.SavedTravelHours = h.SavedTravelHours.Add(e.TravelTimeHours)
		} else {
			h.TravelHours = h.TravelHours.Add(e.TravelTimeHours)
		}
		h.recordPerDiem(e.Date, e.PerDiem())
	}

	for _, h := range out {
		h.PerDiemFullDays, h.PerDiemHalfDays = countPerDiem(h.perDiemByDate)
	}
	return out, errors.Join(errs...)
}

// recordPerDiem keeps at most one per-diem per date; full outranks half.
func (h *PeriodHours) recordPerDiem(date time.Time, t generic.PerDiemType) {
	if t == generic.PerDiemNone {
		return
	}
	day := generic.DateOf(date)
	if h.perDiemByDate[day] == generic.PerDiemFull {
		return
	}
	h.perDiemByDate[day] = t
}

func countPerDiem(days map[time.Time]generic.PerDiemType) (full, half int) {
	for _, t := range days {
		switch t {
		case generic.PerDiemFull:
			full++
		case generic.PerDiemHalf:
			half++
		}
	}
	return full, half
}

// SortedUserIDs returns the keys of an aggregation in stable order.
func SortedUserIDs(m map[generic.UserID]*PeriodHours) []generic.UserID {
	ids := make([]generic.UserID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
