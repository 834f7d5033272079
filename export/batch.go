/*
Package export turns a pay period into a payroll import document.

STATE MACHINE:

	COLLECT ──► VALIDATE ──┬──► BLOCKED_ON_MAPPING ──────────┐
	                       ├──► BLOCKED_ON_EMPLOYEE_NUMBER ──┤ (re-validate)
	                       └──► READY ──► EXPORTED           │
	                              ▲                          │
	                              └──────────────────────────┘

  COLLECT:   sum each employee's allocated hours per salary code
  VALIDATE:  every used code needs a company mapping, then every included
             employee needs an employee number (mapping issues block first)
  READY:     Build produces one record per employee, dated to period start
  EXPORTED:  terminal; a new export starts from a fresh Batch

Exporting is not idempotent. Every run produces a new file and log entry.

SEE ALSO:
  - validate.go: Issue sets and the blocked states
  - paxml.go:    XML serialization and parsing
  - exporter.go: Store-backed orchestration and the export log
*/
package export

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
)

// State is a step of the export state machine.
type State string

const (
	StateCollect                 State = "COLLECT"
	StateValidate                State = "VALIDATE"
	StateBlockedOnMapping        State = "BLOCKED_ON_MAPPING"
	StateBlockedOnEmployeeNumber State = "BLOCKED_ON_EMPLOYEE_NUMBER"
	StateReady                   State = "READY"
	StateExported                State = "EXPORTED"
)

// CodeTotal is one employee's period total for a salary code.
type CodeTotal struct {
	Code  SalaryCode
	Unit  Unit
	Value decimal.Decimal
}

// EmployeeTotals is the collected data for one employee.
type EmployeeTotals struct {
	UserID         generic.UserID
	FullName       string
	EmployeeNumber string
	EntryCount     int
	Totals         []CodeTotal
}

// HasEmployeeNumber reports whether the employee can be exported.
func (e EmployeeTotals) HasEmployeeNumber() bool { return e.EmployeeNumber != "" }

// Header is the company part of the document.
type Header struct {
	CompanyID   generic.CompanyID
	CompanyName string
	OrgNumber   string
}

// Batch carries one export attempt through the state machine. A Batch is
// not safe for concurrent use.
type Batch struct {
	Header    Header
	Period    generic.Period
	Catalog   Catalog
	Employees []EmployeeTotals

	state    State
	result   ValidationResult
	mappings MappingTable
}

// NewBatch starts an export in COLLECT.
func NewBatch(header Header, period generic.Period, catalog Catalog) *Batch {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Batch{Header: header, Period: period, Catalog: catalog, state: StateCollect}
}

func (b *Batch) State() State { return b.state }

// Collect sums hours per employee and salary code. When selected is empty
// every employee in hours is included. Employees whose codes are all zero
// are left out of the batch.
func (b *Batch) Collect(hours map[generic.UserID]*compensation.PeriodHours, profiles []generic.EmployeeProfile, selected []generic.UserID) error {
	if b.state != StateCollect {
		return fmt.Errorf("%w: collect from %s", generic.ErrInvalidState, b.state)
	}

	byUser := make(map[generic.UserID]generic.EmployeeProfile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	ids := selected
	if len(ids) == 0 {
		ids = compensation.SortedUserIDs(hours)
	} else {
		ids = append([]generic.UserID(nil), ids...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	seen := make(map[generic.UserID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		h, ok := hours[id]
		if !ok {
			continue
		}
		totals := b.codeTotals(h)
		if len(totals) == 0 {
			continue
		}

		emp := EmployeeTotals{UserID: id, FullName: string(id), EntryCount: h.EntryCount, Totals: totals}
		if p, ok := byUser[id]; ok {
			if p.FullName != "" {
				emp.FullName = p.FullName
			}
			if p.HasEmployeeNumber() {
				emp.EmployeeNumber = *p.EmployeeNumber
			}
		}
		b.Employees = append(b.Employees, emp)
	}

	b.state = StateValidate
	return nil
}

// codeTotals maps period hours onto salary codes in catalog order. ARBETE
// holds ordinary hours, so overtime is not counted twice.
func (b *Batch) codeTotals(h *compensation.PeriodHours) []CodeTotal {
	values := map[SalaryCode]decimal.Decimal{
		CodeWork:            h.Adjusted.Total(),
		CodeOvertimeWeekday: h.OvertimeWeekday,
		CodeOvertimeWeekend: h.OvertimeWeekend,
		CodeOBEvening:       h.Adjusted.Evening,
		CodeOBNight:         h.Adjusted.Night,
		CodeOBWeekend:       h.Adjusted.Weekend,
		CodeTravel:          h.TravelHours,
		CodePerDiemFull:     decimal.NewFromInt(int64(h.PerDiemFullDays)),
		CodePerDiemHalf:     decimal.NewFromInt(int64(h.PerDiemHalfDays)),
	}

	var out []CodeTotal
	for _, def := range b.Catalog {
		v, ok := values[def.Code]
		if !ok {
			continue
		}
		if def.Unit == UnitHours {
			v = generic.RoundHours(v)
		}
		if v.IsZero() {
			continue
		}
		out = append(out, CodeTotal{Code: def.Code, Unit: def.Unit, Value: v})
	}
	return out
}

// UsedCodes returns every code with a nonzero total, in catalog order.
func (b *Batch) UsedCodes() []SalaryCode {
	used := make(map[SalaryCode]bool)
	for _, e := range b.Employees {
		for _, t := range e.Totals {
			used[t.Code] = true
		}
	}
	codes := make([]SalaryCode, 0, len(used))
	for c := range used {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		return b.Catalog.index(codes[i]) < b.Catalog.index(codes[j])
	})
	return codes
}

// EntryCount is the number of time entries behind the batch.
func (b *Batch) EntryCount() int {
	n := 0
	for _, e := range b.Employees {
		n += e.EntryCount
	}
	return n
}

// =============================================================================
// BUILD
// =============================================================================

// Line is one pay-type line of an employee record. Quantity lines carry a
// whole count in Value.
type Line struct {
	Date         string          `json:"date"`
	ExternalCode string          `json:"external_code"`
	Unit         Unit            `json:"unit"`
	Value        decimal.Decimal `json:"value"`
}

// PayrollExportEmployee is one employee block of the document.
type PayrollExportEmployee struct {
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Lines          []Line `json:"lines"`
}

// Build produces the export records and moves the batch to EXPORTED.
func (b *Batch) Build() ([]PayrollExportEmployee, error) {
	if b.state != StateReady {
		return nil, fmt.Errorf("%w: build from %s", generic.ErrInvalidState, b.state)
	}

	date := b.Period.Start.Format(generic.DateLayout)
	out := make([]PayrollExportEmployee, 0, len(b.Employees))
	for _, e := range b.Employees {
		rec := PayrollExportEmployee{EmployeeNumber: e.EmployeeNumber, FullName: e.FullName}
		for _, t := range e.Totals {
			rec.Lines = append(rec.Lines, Line{
				Date:         date,
				ExternalCode: b.mappings[t.Code],
				Unit:         t.Unit,
				Value:        t.Value,
			})
		}
		out = append(out, rec)
	}

	b.state = StateExported
	return out, nil
}

// LineCount is the total number of lines across records.
func LineCount(records []PayrollExportEmployee) int {
	n := 0
	for _, r := range records {
		n += len(r.Lines)
	}
	return n
}
