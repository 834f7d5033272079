package export

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/billing"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// REVIEW SUMMARY - Shown before the user triggers an export
// =============================================================================

// EmployeeSummary is one employee's hours, pay and tax estimate.
type EmployeeSummary struct {
	UserID         generic.UserID
	FullName       string
	EmployeeNumber string
	// ProfileMissing is set when no profile was found; pay is then zero.
	ProfileMissing bool

	Hours        compensation.PeriodHours
	Compensation compensation.Result
	Tax          tax.Result
}

// ProjectBilling is the billing-schedule breakdown of one project.
type ProjectBilling struct {
	ProjectID generic.ProjectID
	Hours     billing.Breakdown
}

// Summary is the review view of a period.
type Summary struct {
	CompanyID generic.CompanyID
	Period    generic.Period
	Employees []EmployeeSummary
	Projects  []ProjectBilling

	TotalHours   decimal.Decimal
	TaxableGross decimal.Decimal
	TotalPayable decimal.Decimal

	// StateTaxThreshold is the monthly threshold scaled to Period.
	StateTaxThreshold decimal.Decimal

	// EntryErrors joins every rejected entry. Rejected entries are not
	// included in the totals.
	EntryErrors error
}

// Summarize prices every employee in hours and estimates tax. It is pure:
// all inputs are passed in.
func Summarize(
	cs settings.CompanySettings,
	period generic.Period,
	entries []generic.TimeEntry,
	profiles []generic.EmployeeProfile,
	hours map[generic.UserID]*compensation.PeriodHours,
	entryErrors error,
) (*Summary, error) {
	byUser := make(map[generic.UserID]generic.EmployeeProfile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	sum := &Summary{
		CompanyID:         cs.CompanyID,
		Period:            period,
		EntryErrors:       entryErrors,
		StateTaxThreshold: tax.PeriodThreshold(cs.StateTaxMonthlyThreshold, period),
	}
	for _, id := range compensation.SortedUserIDs(hours) {
		h := hours[id]
		p, ok := byUser[id]
		es := EmployeeSummary{UserID: id, FullName: string(id), ProfileMissing: !ok, Hours: *h}
		if ok {
			es.FullName = p.FullName
			if p.HasEmployeeNumber() {
				es.EmployeeNumber = *p.EmployeeNumber
			}
		} else {
			p = generic.EmployeeProfile{UserID: id, CompanyID: cs.CompanyID}
		}

		res, err := compensation.Calculate(h.Input(), p, cs.Shifts, cs.Rates)
		if err != nil {
			return nil, err
		}
		est, err := tax.Estimate(res.TaxableGross, p.TaxTable, sum.StateTaxThreshold)
		if err != nil {
			return nil, err
		}
		es.Compensation = res
		es.Tax = est

		sum.TotalHours = sum.TotalHours.Add(h.TotalHours)
		sum.TaxableGross = sum.TaxableGross.Add(res.TaxableGross)
		sum.TotalPayable = sum.TotalPayable.Add(res.TotalPayable)
		sum.Employees = append(sum.Employees, es)
	}

	projects, err := billProjects(cs, entries)
	if err != nil {
		return nil, err
	}
	sum.Projects = projects
	return sum, nil
}

// billProjects classifies valid entries on the billing schedule. Invalid
// entries were already reported by the payroll aggregation.
func billProjects(cs settings.CompanySettings, entries []generic.TimeEntry) ([]ProjectBilling, error) {
	classifier, err := cs.BillingClassifier()
	if err != nil {
		return nil, err
	}
	byProject := make(map[generic.ProjectID]billing.Breakdown)
	for _, e := range entries {
		if e.Validate() != nil {
			continue
		}
		b, err := classifier.ClassifyEntry(e)
		if err != nil {
			continue
		}
		byProject[e.ProjectID] = byProject[e.ProjectID].Add(b)
	}

	out := make([]ProjectBilling, 0, len(byProject))
	for id, b := range byProject {
		out = append(out, ProjectBilling{ProjectID: id, Hours: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
