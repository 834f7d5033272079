package export

import (
	"fmt"
	"strings"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// MissingEmployee is an included employee without an employee number.
type MissingEmployee struct {
	UserID   generic.UserID `json:"user_id"`
	FullName string         `json:"full_name"`
}

// ValidationResult lists what blocks the export. At most one of the two
// issue sets is populated: employee numbers are only checked once every
// used code is mapped.
type ValidationResult struct {
	State                  State             `json:"state"`
	MissingMappings        []SalaryCode      `json:"missing_mappings,omitempty"`
	MissingEmployeeNumbers []MissingEmployee `json:"missing_employee_numbers,omitempty"`
}

func (r ValidationResult) Ready() bool { return r.State == StateReady }

// IssuesError wraps a blocked validation result.
type IssuesError struct {
	Result ValidationResult
}

func (e *IssuesError) Error() string {
	switch e.Result.State {
	case StateBlockedOnMapping:
		codes := make([]string, len(e.Result.MissingMappings))
		for i, c := range e.Result.MissingMappings {
			codes[i] = string(c)
		}
		return fmt.Sprintf("export blocked: unmapped salary codes %s", strings.Join(codes, ", "))
	case StateBlockedOnEmployeeNumber:
		names := make([]string, len(e.Result.MissingEmployeeNumbers))
		for i, m := range e.Result.MissingEmployeeNumbers {
			names[i] = m.FullName
		}
		return fmt.Sprintf("export blocked: employees without employee number %s", strings.Join(names, ", "))
	}
	return "export blocked"
}

func (e *IssuesError) Unwrap() error { return generic.ErrExportBlocked }

// =============================================================================
// VALIDATE
// =============================================================================

// Validate checks the collected batch against the company mappings. It may
// be called again from a blocked state once mappings or profiles change;
// each call recomputes both issue sets from scratch.
func (b *Batch) Validate(mappings MappingTable) (ValidationResult, error) {
	switch b.state {
	case StateValidate, StateBlockedOnMapping, StateBlockedOnEmployeeNumber, StateReady:
	default:
		return ValidationResult{}, fmt.Errorf("%w: validate from %s", generic.ErrInvalidState, b.state)
	}

	var res ValidationResult
	for _, code := range b.UsedCodes() {
		if _, ok := mappings[code]; !ok {
			res.MissingMappings = append(res.MissingMappings, code)
		}
	}

	switch {
	case len(res.MissingMappings) > 0:
		res.State = StateBlockedOnMapping
	default:
		for _, e := range b.Employees {
			if !e.HasEmployeeNumber() {
				res.MissingEmployeeNumbers = append(res.MissingEmployeeNumbers, MissingEmployee{UserID: e.UserID, FullName: e.FullName})
			}
		}
		if len(res.MissingEmployeeNumbers) > 0 {
			res.State = StateBlockedOnEmployeeNumber
		} else {
			res.State = StateReady
		}
	}

	b.state = res.State
	b.result = res
	b.mappings = mappings
	return res, nil
}

// Result returns the most recent validation result.
func (b *Batch) Result() ValidationResult { return b.result }

// UpdateEmployeeNumber fills in a missing employee number on a collected
// batch, typically followed by another Validate call.
func (b *Batch) UpdateEmployeeNumber(userID generic.UserID, number string) error {
	switch b.state {
	case StateCollect, StateExported:
		return fmt.Errorf("%w: update employee from %s", generic.ErrInvalidState, b.state)
	}
	for i := range b.Employees {
		if b.Employees[i].UserID == userID {
			b.Employees[i].EmployeeNumber = strings.TrimSpace(number)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, userID)
}
