/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with a demo
	company, employees and a month of attested shifts. Each scenario stops
	the export pipeline at a different state.

AVAILABLE SCENARIOS:

	ready-to-export:          Every code mapped, every employee numbered
	missing-mappings:         No salary-code mappings (BLOCKED_ON_MAPPING)
	missing-employee-number:  One employee without number (BLOCKED_ON_EMPLOYEE_NUMBER)

HOW SCENARIOS WORK:
 1. Reset database (export logs are kept)
 2. Save company settings with the default schedules
 3. Save employee profiles
 4. Add January 2024 time entries, including one unattested entry
 5. Optionally save salary-code mappings

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "missing-mappings"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Payroll endpoints to try after loading
  - export/codes.go: Salary-code catalog and suggested external codes
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// DemoCompanyID is the company every scenario creates.
const DemoCompanyID generic.CompanyID = "demo"

var scenarios = []ScenarioDTO{
	{
		ID:          "ready-to-export",
		Name:        "Ready to Export",
		Description: "Two employees with numbers, all salary codes mapped",
	},
	{
		ID:          "missing-mappings",
		Name:        "Missing Mappings",
		Description: "Shifts recorded but no salary code mapped to the payroll system",
	},
	{
		ID:          "missing-employee-number",
		Name:        "Missing Employee Number",
		Description: "All codes mapped, one employee lacks a payroll employee number",
	},
}

type scenarioOptions struct {
	mapCodes       bool
	numberAllStaff bool
}

var scenarioSetup = map[string]scenarioOptions{
	"ready-to-export":         {mapCodes: true, numberAllStaff: true},
	"missing-mappings":        {mapCodes: false, numberAllStaff: true},
	"missing-employee-number": {mapCodes: true, numberAllStaff: false},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	opts, ok := scenarioSetup[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := h.loadScenario(ctx, opts); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Logger.WithField("scenario", req.ScenarioID).Info("demo scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "loaded",
		"scenario":   req.ScenarioID,
		"company_id": string(DemoCompanyID),
	})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, opts scenarioOptions) error {
	cs := settings.Default(DemoCompanyID, "Demo Bygg AB")
	cs.OrgNumber = "556677-8899"
	if err := h.Store.SaveSettings(ctx, cs); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	anna := "1001"
	profiles := []generic.EmployeeProfile{
		{UserID: "anna", CompanyID: DemoCompanyID, FullName: "Anna Lind", HourlyWage: decimal.NewFromInt(200), TaxTable: decimal.NewFromInt(30), EmployeeNumber: &anna},
		{UserID: "erik", CompanyID: DemoCompanyID, FullName: "Erik Berg", HourlyWage: decimal.NewFromInt(185), TaxTable: decimal.NewFromInt(32)},
	}
	if opts.numberAllStaff {
		erik := "1002"
		profiles[1].EmployeeNumber = &erik
	}
	for _, p := range profiles {
		if err := h.Store.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("profile %s: %w", p.UserID, err)
		}
	}

	if err := h.Store.AddEntries(ctx, demoEntries()...); err != nil {
		return fmt.Errorf("entries: %w", err)
	}

	if opts.mapCodes {
		now := time.Now().UTC()
		for _, def := range h.Exporter.Catalog() {
			m := generic.CompanyMapping{
				CompanyID:    DemoCompanyID,
				SalaryCode:   string(def.Code),
				ExternalCode: def.SuggestedExternal,
				UpdatedAt:    now,
			}
			if err := h.Store.SaveMapping(ctx, m); err != nil {
				return fmt.Errorf("mapping %s: %w", def.Code, err)
			}
		}
	}
	return nil
}

type demoShift struct {
	id, user, project string
	day               int
	start, end        string
	breakMinutes      int
	otWeekday         float64
	otWeekend         float64
	travel            float64
	saveTravel        bool
	perDiem           generic.PerDiemType
	attested          bool
}

// demoEntries covers day, evening, night and weekend hours, both overtime
// kinds, paid and banked travel and both per-diem types in January 2024.
func demoEntries() []generic.TimeEntry {
	shifts := []demoShift{
		{id: "demo-1", user: "anna", project: "p-north", day: 8, start: "07:00", end: "16:00", breakMinutes: 60, attested: true},
		{id: "demo-2", user: "anna", project: "p-north", day: 9, start: "14:00", end: "23:00", breakMinutes: 30, otWeekday: 1, attested: true},
		{id: "demo-3", user: "anna", project: "p-south", day: 12, start: "16:00", end: "01:00", breakMinutes: 30, travel: 2, perDiem: generic.PerDiemFull, attested: true},
		{id: "demo-4", user: "anna", project: "p-south", day: 13, start: "08:00", end: "14:00", otWeekend: 2, attested: true},
		{id: "demo-5", user: "erik", project: "p-north", day: 10, start: "22:00", end: "06:00", breakMinutes: 30, perDiem: generic.PerDiemHalf, attested: true},
		{id: "demo-6", user: "erik", project: "p-north", day: 11, start: "06:00", end: "15:00", breakMinutes: 45, travel: 1.5, saveTravel: true, attested: true},
		{id: "demo-7", user: "erik", project: "p-south", day: 15, start: "07:00", end: "15:00", breakMinutes: 30, attested: false},
	}

	out := make([]generic.TimeEntry, 0, len(shifts))
	for _, s := range shifts {
		start, _ := generic.ParseClockTime(s.start)
		end, _ := generic.ParseClockTime(s.end)
		perDiem := s.perDiem
		if perDiem == "" {
			perDiem = generic.PerDiemNone
		}
		out = append(out, generic.TimeEntry{
			ID:                     generic.EntryID(s.id),
			CompanyID:              DemoCompanyID,
			UserID:                 generic.UserID(s.user),
			ProjectID:              generic.ProjectID(s.project),
			Date:                   generic.NewDate(2024, time.January, s.day),
			StartTime:              start,
			EndTime:                end,
			BreakMinutes:           s.breakMinutes,
			OvertimeWeekdayHours:   decimal.NewFromFloat(s.otWeekday),
			OvertimeWeekendHours:   decimal.NewFromFloat(s.otWeekend),
			TravelTimeHours:        decimal.NewFromFloat(s.travel),
			SaveTravelCompensation: s.saveTravel,
			PerDiemType:            perDiem,
			Attested:               s.attested,
		})
	}
	return out
}
