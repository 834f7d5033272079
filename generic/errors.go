/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Data-quality errors - Malformed entries that must be corrected upstream
  2. Validation errors - Export blocked on missing mappings/employee numbers
  3. Store errors - Database-level failures

USAGE:
  if errors.Is(err, generic.ErrOvertimeExceedsTotal) {
      // surface the entry for correction
  }

SEE ALSO:
  - export/validate.go: Export validation issues
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidClockTime is returned for clock strings that are not HH:MM.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrNegativeBreak is returned when break minutes are below zero.
	ErrNegativeBreak = errors.New("break minutes must not be negative")

	// ErrNegativeHours is returned when overtime, travel or total hours are negative.
	ErrNegativeHours = errors.New("hours must not be negative")

	// ErrOvertimeExceedsTotal is returned when declared overtime is larger
	// than the worked hours of the entry.
	ErrOvertimeExceedsTotal = errors.New("overtime exceeds total hours")

	// ErrInvalidPerDiem is returned for unknown per-diem types.
	ErrInvalidPerDiem = errors.New("invalid per-diem type")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidTaxInput is returned for out-of-range tax percentages or thresholds.
	ErrInvalidTaxInput = errors.New("invalid tax input")

	// ErrInvalidConfig is returned for malformed classification or rate settings.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExportBlocked is returned when export validation did not reach READY.
	ErrExportBlocked = errors.New("export blocked by validation issues")

	// ErrInvalidState is returned when an export batch step is called out of order.
	ErrInvalidState = errors.New("invalid export state transition")

	// ErrCompanyNotFound is returned when no settings exist for a company.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrEmployeeNotFound is returned when a referenced profile doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ClockTimeError reports the malformed input.
type ClockTimeError struct {
	Value string
}

func (e *ClockTimeError) Error() string {
	return fmt.Sprintf("invalid clock time %q", e.Value)
}

func (e *ClockTimeError) Unwrap() error { return ErrInvalidClockTime }

// EntryError ties a data-quality error to the time entry that caused it.
type EntryError struct {
	EntryID EntryID
	Err     error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("time entry %s: %v", e.EntryID, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ConfigError names the offending setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataQuality returns true for errors that require correcting a time entry.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrNegativeBreak) ||
		errors.Is(err, ErrNegativeHours) ||
		errors.Is(err, ErrOvertimeExceedsTotal) ||
		errors.Is(err, ErrInvalidPerDiem)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsDataQuality(err) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidTaxInput) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}
