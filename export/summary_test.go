package export_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/xuri/excelize/v2"
)

func testSummary(t *testing.T) *export.Summary {
	t.Helper()
	x, _ := newTestExporter(newTestStore(t, nil), nil)
	sum, err := x.Summary(context.Background(), request())
	require.NoError(t, err)
	return sum
}

func TestSummary_PricesEveryEmployee(t *testing.T) {
	sum := testSummary(t)
	require.NoError(t, sum.EntryErrors)
	require.Len(t, sum.Employees, 2)

	// u1: 16h at 200 with 4 evening (x1.25) and 4 weekend (x1.7) hours and one full per-diem
	u1 := sum.Employees[0]
	assert.Equal(t, "Anna Lind", u1.FullName)
	assert.Equal(t, "1001", u1.EmployeeNumber)
	assertDecimal(t, "3200", u1.Compensation.BasePay, "u1 base")
	assertDecimal(t, "200", u1.Compensation.OB.Evening, "u1 evening")
	assertDecimal(t, "560", u1.Compensation.OB.Weekend, "u1 weekend")
	assertDecimal(t, "760", u1.Compensation.OBTotal, "u1 ob")
	assertDecimal(t, "3960", u1.Compensation.TaxableGross, "u1 taxable")
	assertDecimal(t, "4250", u1.Compensation.TotalPayable, "u1 payable")
	assertDecimal(t, "1188", u1.Tax.MunicipalTax, "u1 municipal")
	assertDecimal(t, "0", u1.Tax.StateTax, "u1 state")

	// u2: 4h at 150 plus 2h travel at the flat rate
	u2 := sum.Employees[1]
	assertDecimal(t, "300", u2.Compensation.TravelPay, "u2 travel")
	assertDecimal(t, "900", u2.Compensation.TaxableGross, "u2 taxable")
	assertDecimal(t, "225", u2.Tax.TotalTax, "u2 tax")

	assertDecimal(t, "51158", sum.StateTaxThreshold, "calendar month threshold")
	assertDecimal(t, "20", sum.TotalHours, "total hours")
	assertDecimal(t, "4860", sum.TaxableGross, "total taxable")
	assertDecimal(t, "5150", sum.TotalPayable, "total payable")
}

func TestSummary_ScalesStateTaxThresholdToPeriod(t *testing.T) {
	// GIVEN: A monthly threshold of 14600 and a one-week review period
	ctx := context.Background()
	m := newTestStore(t, nil)
	cs := testSettings()
	cs.StateTaxMonthlyThreshold = dec("14600")
	require.NoError(t, m.SaveSettings(ctx, cs))
	x, _ := newTestExporter(m, nil)
	week := generic.Period{Start: january.Start, End: generic.NewDate(2024, time.January, 7)}

	// WHEN: Summarized
	sum, err := x.Summary(ctx, export.Request{CompanyID: testCompany, Period: week})
	require.NoError(t, err)

	// THEN: The threshold covers 7 days and u1's 3960 gross pays state tax above it
	assertDecimal(t, "3360", sum.StateTaxThreshold, "weekly threshold")
	require.Len(t, sum.Employees, 2)
	assertDecimal(t, "3960", sum.Employees[0].Compensation.TaxableGross, "u1 taxable")
	assertDecimal(t, "120", sum.Employees[0].Tax.StateTax, "u1 state")
}

func TestSummary_BillsProjects(t *testing.T) {
	sum := testSummary(t)
	require.Len(t, sum.Projects, 2)

	p1 := sum.Projects[0]
	assert.Equal(t, generic.ProjectID("p1"), p1.ProjectID)
	assertDecimal(t, "12", p1.Hours.Day, "p1 day")
	assertDecimal(t, "4", p1.Hours.Night, "p1 night")
	assertDecimal(t, "0", p1.Hours.Weekend, "p1 weekend")

	p2 := sum.Projects[1]
	assertDecimal(t, "4", p2.Hours.Weekend, "p2 weekend")
}

func TestSummary_ReportsInvalidEntriesAndMissingProfiles(t *testing.T) {
	// GIVEN: An entry with a bad per-diem and a user without a profile
	ctx := context.Background()
	m := newTestStore(t, nil)
	bad := entry("bad", "u1", "p1", 8, "08:00", "12:00")
	bad.PerDiemType = "double"
	require.NoError(t, m.AddEntries(ctx, bad, entry("g1", "ghost", "p3", 9, "08:00", "10:00")))
	x, _ := newTestExporter(m, nil)

	// WHEN: Summarized
	sum, err := x.Summary(ctx, request())
	require.NoError(t, err)

	// THEN: The bad entry is reported and left out of the totals
	assert.ErrorIs(t, sum.EntryErrors, generic.ErrInvalidPerDiem)
	require.Len(t, sum.Employees, 3)
	assert.Equal(t, generic.UserID("u1"), sum.Employees[1].UserID)
	assertDecimal(t, "16", sum.Employees[1].Hours.TotalHours, "u1 hours")

	// AND: The unknown user sorts first and is listed at zero pay
	ghost := sum.Employees[0]
	assert.Equal(t, generic.UserID("ghost"), ghost.UserID)
	assert.True(t, ghost.ProfileMissing)
	assert.Equal(t, "ghost", ghost.FullName)
	assertDecimal(t, "0", ghost.Compensation.TotalPayable, "ghost pay")
	assert.Len(t, sum.Projects, 3)
}

// =============================================================================
// WORKBOOK
// =============================================================================

func TestWriteSummaryWorkbook(t *testing.T) {
	// GIVEN: A summary rendered to xlsx
	data, err := export.WriteSummaryWorkbook(testSummary(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	// THEN: Both sheets exist with a header and one row per item
	assert.Equal(t, []string{export.SheetEmployees, export.SheetProjects}, f.GetSheetList())

	employees, err := f.GetRows(export.SheetEmployees)
	require.NoError(t, err)
	require.Len(t, employees, 3)
	assert.Equal(t, "User", employees[0][0])
	assert.Equal(t, "u1", employees[1][0])
	assert.Equal(t, "Anna Lind", employees[1][1])
	assert.Equal(t, "16", employees[1][3])

	projects, err := f.GetRows(export.SheetProjects)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"p1", "12", "4", "0", "16"}, projects[1])
}
