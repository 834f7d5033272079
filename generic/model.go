package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PER-DIEM
// =============================================================================

type PerDiemType string

const (
	PerDiemNone PerDiemType = "none"
	PerDiemHalf PerDiemType = "half"
	PerDiemFull PerDiemType = "full"
)

// Valid accepts the three known values and the empty string (treated as none).
func (t PerDiemType) Valid() bool {
	switch t {
	case "", PerDiemNone, PerDiemHalf, PerDiemFull:
		return true
	}
	return false
}

// =============================================================================
// TIME ENTRY - One recorded shift
// =============================================================================

// TimeEntry is an attested shift as delivered by the time-reporting front end.
// The engine never mutates entries.
type TimeEntry struct {
	ID        EntryID
	CompanyID CompanyID
	UserID    UserID
	ProjectID ProjectID

	Date         time.Time
	StartTime    ClockTime
	EndTime      ClockTime
	BreakMinutes int

	OvertimeWeekdayHours decimal.Decimal
	OvertimeWeekendHours decimal.Decimal

	TravelTimeHours        decimal.Decimal
	SaveTravelCompensation bool
	PerDiemType            PerDiemType

	Attested bool
}

// Interval places the entry on the timeline, crossing midnight when needed.
func (e TimeEntry) Interval() Interval {
	return ShiftInterval(e.Date, e.StartTime, e.EndTime)
}

// TotalHours is the authoritative worked duration: span minus the break,
// with the break clamped to the span.
func (e TimeEntry) TotalHours() decimal.Decimal {
	span := e.Interval().Minutes()
	brk := int64(e.BreakMinutes)
	if brk < 0 {
		brk = 0
	}
	if brk > span {
		brk = span
	}
	return RoundHours(MinutesToHours(span - brk))
}

// OvertimeHours is weekday plus weekend overtime.
func (e TimeEntry) OvertimeHours() decimal.Decimal {
	return e.OvertimeWeekdayHours.Add(e.OvertimeWeekendHours)
}

// PerDiem returns the per-diem type with the empty value normalized.
func (e TimeEntry) PerDiem() PerDiemType {
	if e.PerDiemType == "" {
		return PerDiemNone
	}
	return e.PerDiemType
}

// Validate reports data-quality problems. Values are never clamped here,
// except the break, which only ever shortens the derived duration.
func (e TimeEntry) Validate() error {
	if err := e.validate(); err != nil {
		return &EntryError{EntryID: e.ID, Err: err}
	}
	return nil
}

func (e TimeEntry) validate() error {
	if !e.StartTime.Valid() || !e.EndTime.Valid() {
		return ErrInvalidClockTime
	}
	if e.BreakMinutes < 0 {
		return ErrNegativeBreak
	}
	if e.OvertimeWeekdayHours.IsNegative() || e.OvertimeWeekendHours.IsNegative() || e.TravelTimeHours.IsNegative() {
		return ErrNegativeHours
	}
	if !e.PerDiemType.Valid() {
		return ErrInvalidPerDiem
	}
	if e.OvertimeHours().GreaterThan(e.TotalHours()) {
		return ErrOvertimeExceedsTotal
	}
	return nil
}

// =============================================================================
// EMPLOYEE PROFILE
// =============================================================================

type EmployeeProfile struct {
	UserID     UserID
	CompanyID  CompanyID
	FullName   string
	HourlyWage decimal.Decimal
	// TaxTable is a flat withholding percentage, 0-100.
	TaxTable decimal.Decimal
	// EmployeeNumber is the external payroll system's id. Required for export.
	EmployeeNumber *string
}

// HasEmployeeNumber is false for nil and blank numbers.
func (p EmployeeProfile) HasEmployeeNumber() bool {
	return p.EmployeeNumber != nil && *p.EmployeeNumber != ""
}

// =============================================================================
// COMPANY MAPPING - Internal salary code to external pay-type code
// =============================================================================

type CompanyMapping struct {
	CompanyID    CompanyID
	SalaryCode   string
	ExternalCode string
	UpdatedAt    time.Time
}

// =============================================================================
// EXPORT LOG - Audit record of every produced export file
// =============================================================================

type ExportLog struct {
	ID            string
	CompanyID     CompanyID
	PeriodStart   time.Time
	PeriodEnd     time.Time
	EmployeeCount int
	EntryCount    int
	Filename      string
	CreatedBy     string
	CreatedAt     time.Time
}
