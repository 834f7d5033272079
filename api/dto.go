/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS:
  Hours and money are decimal strings ("7.50"). Requests accept both
  strings and JSON numbers.

VALIDATION:
  Request types carry go-playground/validator tags, checked by decode()
  in handlers.go before any engine call.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/billing"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// COMPANIES / SETTINGS
// =============================================================================

type CompanyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type SettingsDTO struct {
	CompanyID                string              `json:"company_id"`
	CompanyName              string              `json:"company_name"`
	OrgNumber                string              `json:"org_number,omitempty"`
	Shifts                   []payroll.ShiftRule `json:"shifts"`
	Billing                  billing.Config      `json:"billing"`
	Rates                    compensation.Rates  `json:"rates"`
	PayPeriod                PayPeriodDTO        `json:"pay_period"`
	StateTaxMonthlyThreshold decimal.Decimal     `json:"state_tax_monthly_threshold"`
}

type PayPeriodDTO struct {
	Type   string `json:"type"`
	Anchor string `json:"anchor,omitempty"`
}

// PeriodResponse resolves the pay cycle around a date.
type PeriodResponse struct {
	Type       string    `json:"type"`
	Current    PeriodDTO `json:"current"`
	Previous   PeriodDTO `json:"previous"`
	Next       PeriodDTO `json:"next"`
	LastClosed PeriodDTO `json:"last_closed"`
}

type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// =============================================================================
// INGESTION
// =============================================================================

// TimeEntryRequest is one shift as reported by the time-tracking front end.
type TimeEntryRequest struct {
	ID                     string          `json:"id"`
	UserID                 string          `json:"user_id" validate:"required"`
	ProjectID              string          `json:"project_id"`
	Date                   string          `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime              string          `json:"start_time" validate:"required"`
	EndTime                string          `json:"end_time" validate:"required"`
	BreakMinutes           int             `json:"break_minutes" validate:"min=0"`
	OvertimeWeekdayHours   decimal.Decimal `json:"overtime_weekday_hours"`
	OvertimeWeekendHours   decimal.Decimal `json:"overtime_weekend_hours"`
	TravelTimeHours        decimal.Decimal `json:"travel_time_hours"`
	SaveTravelCompensation bool            `json:"save_travel_compensation"`
	PerDiemType            string          `json:"per_diem_type" validate:"omitempty,oneof=none half full"`
	Attested               bool            `json:"attested"`
}

type AddEntriesRequest struct {
	Entries []TimeEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

type AddEntriesResponse struct {
	Added int      `json:"added"`
	IDs   []string `json:"ids"`
}

type ProfileRequest struct {
	FullName       string          `json:"full_name" validate:"required"`
	HourlyWage     decimal.Decimal `json:"hourly_wage"`
	TaxTable       decimal.Decimal `json:"tax_table"`
	EmployeeNumber *string         `json:"employee_number"`
}

type ProfileDTO struct {
	UserID         string          `json:"user_id"`
	FullName       string          `json:"full_name"`
	HourlyWage     decimal.Decimal `json:"hourly_wage"`
	TaxTable       decimal.Decimal `json:"tax_table"`
	EmployeeNumber *string         `json:"employee_number"`
}

// =============================================================================
// MAPPINGS
// =============================================================================

type SaveMappingRequest struct {
	ExternalCode string `json:"external_code" validate:"required,max=32"`
}

type MappingDTO struct {
	SalaryCode   string `json:"salary_code"`
	ExternalCode string `json:"external_code"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// SalaryCodeDTO joins a catalog row with the company's mapping.
type SalaryCodeDTO struct {
	export.CodeDefinition
	ExternalCode string `json:"external_code,omitempty"`
	Mapped       bool   `json:"mapped"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type ExportRequest struct {
	PeriodStart string   `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string   `json:"period_end" validate:"required,datetime=2006-01-02"`
	UserIDs     []string `json:"user_ids"`
	Actor       string   `json:"actor"`
}

type HoursDTO struct {
	TotalHours       decimal.Decimal   `json:"total_hours"`
	Classified       payroll.Breakdown `json:"classified"`
	Adjusted         payroll.Breakdown `json:"adjusted"`
	OvertimeWeekday  decimal.Decimal   `json:"overtime_weekday"`
	OvertimeWeekend  decimal.Decimal   `json:"overtime_weekend"`
	TravelHours      decimal.Decimal   `json:"travel_hours"`
	SavedTravelHours decimal.Decimal   `json:"saved_travel_hours"`
	PerDiemFullDays  int               `json:"per_diem_full_days"`
	PerDiemHalfDays  int               `json:"per_diem_half_days"`
	EntryCount       int               `json:"entry_count"`
}

type EmployeeSummaryDTO struct {
	UserID         string              `json:"user_id"`
	FullName       string              `json:"full_name"`
	EmployeeNumber string              `json:"employee_number,omitempty"`
	ProfileMissing bool                `json:"profile_missing,omitempty"`
	Hours          HoursDTO            `json:"hours"`
	Compensation   compensation.Result `json:"compensation"`
	Tax            tax.Result          `json:"tax"`
}

type ProjectBillingDTO struct {
	ProjectID string            `json:"project_id"`
	Hours     billing.Breakdown `json:"hours"`
}

type SummaryResponse struct {
	CompanyID    string               `json:"company_id"`
	PeriodStart  string               `json:"period_start"`
	PeriodEnd    string               `json:"period_end"`
	Employees    []EmployeeSummaryDTO `json:"employees"`
	Projects     []ProjectBillingDTO  `json:"projects"`
	TotalHours   decimal.Decimal      `json:"total_hours"`
	TaxableGross decimal.Decimal      `json:"taxable_gross"`
	TotalPayable decimal.Decimal      `json:"total_payable"`
	EntryErrors  []string             `json:"entry_errors,omitempty"`

	// StateTaxThreshold is the threshold the tax estimates used, scaled
	// from the monthly setting to the requested period.
	StateTaxThreshold decimal.Decimal `json:"state_tax_threshold"`
}

type ExportLogDTO struct {
	ID            string `json:"id"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	EmployeeCount int    `json:"employee_count"`
	EntryCount    int    `json:"entry_count"`
	Filename      string `json:"filename"`
	CreatedBy     string `json:"created_by"`
	CreatedAt     string `json:"created_at"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ReadinessDTO is the scheduler's latest check for one company.
type ReadinessDTO struct {
	CompanyID       string   `json:"company_id"`
	PeriodStart     string   `json:"period_start"`
	PeriodEnd       string   `json:"period_end"`
	State           string   `json:"state"`
	MissingMappings []string `json:"missing_mappings,omitempty"`
	MissingNumbers  []string `json:"missing_employee_numbers,omitempty"`
	Error           string   `json:"error,omitempty"`
	CheckedAt       string   `json:"checked_at"`
}

// =============================================================================
// PREVIEWS
// =============================================================================

type ClassifyRequest struct {
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string          `json:"start_time" validate:"required"`
	EndTime      string          `json:"end_time" validate:"required"`
	BreakMinutes int             `json:"break_minutes" validate:"min=0"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
}

type BillingPreviewResponse struct {
	Hours billing.Breakdown `json:"hours"`
	Lines []billing.Line    `json:"lines,omitempty"`
	Total decimal.Decimal   `json:"total"`
}

type TaxEstimateRequest struct {
	GrossPay         decimal.Decimal  `json:"gross_pay"`
	TaxTable         decimal.Decimal  `json:"tax_table"`
	MonthlyThreshold *decimal.Decimal `json:"monthly_threshold"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
