package export_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/generic/store"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/settings"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================
//
// January 2024 for company c1:
//   u1  Mon 01 08-16 (day 8)          p1
//   u1  Tue 02 18-22 (evening 4)      p1
//   u1  Sat 06 10-14 (weekend 4)      p2, full per-diem
//   u2  Mon 01 08-12 (day 4)          p1, 2h paid travel
//
// Salary codes: u1 ARBETE 16, OB_KVALL 4, OB_HELG 4, TRAKTAMENTE_HEL 1
//               u2 ARBETE 4, RESTID 2

const testCompany generic.CompanyID = "c1"

var january = generic.Period{
	Start: generic.NewDate(2024, time.January, 1),
	End:   generic.NewDate(2024, time.January, 31),
}

func dec(s string) decimal.Decimal { return generic.MustParseDecimal(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", what, want, got)
}

func entry(id, user, project string, day int, start, end string) generic.TimeEntry {
	s, _ := generic.ParseClockTime(start)
	e, _ := generic.ParseClockTime(end)
	return generic.TimeEntry{
		ID:          generic.EntryID(id),
		CompanyID:   testCompany,
		UserID:      generic.UserID(user),
		ProjectID:   generic.ProjectID(project),
		Date:        generic.NewDate(2024, time.January, day),
		StartTime:   s,
		EndTime:     e,
		PerDiemType: generic.PerDiemNone,
		Attested:    true,
	}
}

func testEntries() []generic.TimeEntry {
	a3 := entry("a3", "u1", "p2", 6, "10:00", "14:00")
	a3.PerDiemType = generic.PerDiemFull
	b1 := entry("b1", "u2", "p1", 1, "08:00", "12:00")
	b1.TravelTimeHours = dec("2")
	return []generic.TimeEntry{
		entry("a1", "u1", "p1", 1, "08:00", "16:00"),
		entry("a2", "u1", "p1", 2, "18:00", "22:00"),
		a3,
		b1,
	}
}

func strPtr(s string) *string { return &s }

func testProfiles(u2Number *string) []generic.EmployeeProfile {
	return []generic.EmployeeProfile{
		{UserID: "u1", CompanyID: testCompany, FullName: "Anna Lind", HourlyWage: dec("200"), TaxTable: dec("30"), EmployeeNumber: strPtr("1001")},
		{UserID: "u2", CompanyID: testCompany, FullName: "Erik Berg", HourlyWage: dec("150"), TaxTable: dec("25"), EmployeeNumber: u2Number},
	}
}

func testSettings() settings.CompanySettings {
	cs := settings.Default(testCompany, "ACME Bygg AB")
	cs.OrgNumber = "556677-8899"
	return cs
}

func aggregate(t *testing.T, entries []generic.TimeEntry) map[generic.UserID]*compensation.PeriodHours {
	t.Helper()
	c, err := payroll.NewClassifier(payroll.DefaultShiftConfig())
	require.NoError(t, err)
	hours, err := compensation.Aggregate(entries, c)
	require.NoError(t, err)
	return hours
}

// fullMappings maps every catalog code to its suggested external code.
func fullMappings() export.MappingTable {
	t := export.MappingTable{}
	for _, def := range export.DefaultCatalog() {
		t[def.Code] = def.SuggestedExternal
	}
	return t
}

// newTestStore seeds a memory store with the fixtures. Mappings are left
// to each test.
func newTestStore(t *testing.T, u2Number *string) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveSettings(ctx, testSettings()))
	for _, p := range testProfiles(u2Number) {
		require.NoError(t, m.SaveProfile(ctx, p))
	}
	require.NoError(t, m.AddEntries(ctx, testEntries()...))
	return m
}

func saveAllMappings(t *testing.T, m *store.Memory) {
	t.Helper()
	for code, ext := range fullMappings() {
		require.NoError(t, m.SaveMapping(context.Background(), generic.CompanyMapping{
			CompanyID:    testCompany,
			SalaryCode:   string(code),
			ExternalCode: ext,
			UpdatedAt:    time.Now(),
		}))
	}
}
