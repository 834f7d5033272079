package settings_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/settings"
	"github.com/warp/payroll-engine/tax"
)

func cid(s string) generic.CompanyID { return generic.CompanyID(s) }

func loadTestdata(t *testing.T) []settings.CompanySettings {
	t.Helper()
	data, err := os.ReadFile("testdata/companies.yaml")
	require.NoError(t, err)
	all, err := settings.Parse(data)
	require.NoError(t, err)
	return all
}

func TestParse_OverridesAndDefaults(t *testing.T) {
	// GIVEN: A file with one fully configured and one minimal company
	all := loadTestdata(t)
	require.Len(t, all, 2)

	// THEN: The configured company carries its overrides
	acme := all[0]
	assert.Equal(t, cid("acme"), acme.CompanyID)
	assert.Equal(t, "556677-8899", acme.OrgNumber)
	assert.Equal(t, 6, acme.Shifts.Day.StartHour)
	assert.True(t, acme.Shifts.Multiplier(payroll.CategoryEvening).Equal(generic.MustParseDecimal("1.3")))
	assert.Equal(t, 17, acme.Billing.Weekend.StartHour)
	assert.True(t, acme.Rates.FlatTravelRate.Equal(generic.MustParseDecimal("175")))
	assert.True(t, acme.Rates.PerDiemHalfRate.Equal(generic.MustParseDecimal("145")), "omitted rate keeps default")
	assert.Equal(t, generic.PayPeriodBiweekly, acme.PayPeriod.Type)
	assert.Equal(t, generic.NewDate(2024, time.January, 1), acme.PayPeriod.Anchor)
	assert.True(t, acme.StateTaxMonthlyThreshold.Equal(generic.MustParseDecimal("52000")))

	// AND: The minimal company gets every default
	north := all[1]
	assert.Equal(t, payroll.DefaultShiftConfig().Rows(), north.Shifts.Rows())
	assert.Equal(t, generic.PayPeriodMonthly, north.PayPeriod.Type)
	assert.True(t, north.StateTaxMonthlyThreshold.Equal(tax.DefaultMonthlyThreshold))
}

func TestMarshal_RoundTrip(t *testing.T) {
	// GIVEN: Parsed settings
	acme := loadTestdata(t)[0]

	// WHEN: Marshaled and parsed again
	data, err := settings.Marshal(acme)
	require.NoError(t, err)
	again, err := settings.ParseOne(data)
	require.NoError(t, err)

	// THEN: Nothing is lost
	assert.Equal(t, acme.CompanyID, again.CompanyID)
	assert.Equal(t, acme.OrgNumber, again.OrgNumber)
	assert.Equal(t, acme.PayPeriod, again.PayPeriod)
	for i, r := range acme.Shifts.Rows() {
		got := again.Shifts.Rows()[i]
		assert.Equal(t, r.Type, got.Type)
		assert.Equal(t, r.StartHour, got.StartHour)
		assert.Truef(t, r.Multiplier.Equal(got.Multiplier), "%s multiplier", r.Type)
	}
	assert.True(t, acme.Rates.FlatTravelRate.Equal(again.Rates.FlatTravelRate))
	assert.True(t, acme.StateTaxMonthlyThreshold.Equal(again.StateTaxMonthlyThreshold))
}

func TestParse_SingleCompanyWithoutWrapper(t *testing.T) {
	cs, err := settings.ParseOne([]byte("company_id: solo\ncompany_name: Solo AB\n"))
	require.NoError(t, err)
	assert.Equal(t, cid("solo"), cs.CompanyID)
}

func TestParse_AcceptsJSON(t *testing.T) {
	cs, err := settings.ParseOne([]byte(`{"company_id": "js", "company_name": "Json AB", "rates": {"flat_travel_rate": 99}}`))
	require.NoError(t, err)
	assert.True(t, cs.Rates.FlatTravelRate.Equal(generic.MustParseDecimal("99")))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"missing name", "company_id: x\n"},
		{"multiplier below one", "company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: night, start_hour: 22, end_hour: 6, multiplier: 0.5}\n"},
		{"unknown shift type", "company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: holiday, multiplier: 2}\n"},
		{"unknown pay period", "company_id: x\ncompany_name: X\npay_period: {type: yearly}\n"},
		{"biweekly without anchor", "company_id: x\ncompany_name: X\npay_period: {type: biweekly}\n"},
		{"bad anchor", "company_id: x\ncompany_name: X\npay_period: {type: biweekly, anchor: soon}\n"},
		{"negative threshold", "company_id: x\ncompany_name: X\ntax: {state_tax_monthly_threshold: -1}\n"},
		{"negative overtime multiplier", "company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: overtime_day, multiplier: -1}\n"},
		{"overtime multiplier below one", "company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: overtime_weekend, multiplier: 0.9}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := settings.Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, generic.ErrInvalidConfig)
		})
	}
}

func TestParse_OvertimeRowsDrivePay(t *testing.T) {
	// GIVEN: An edited overtime_day row
	cs, err := settings.ParseOne([]byte("company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: overtime_day, multiplier: 3}\n"))
	require.NoError(t, err)

	// WHEN: One weekday overtime hour is priced at 100/h
	in := compensation.Input{TotalHours: generic.MustParseDecimal("1"), OvertimeWeekdayHours: generic.MustParseDecimal("1")}
	res, err := compensation.Calculate(in, generic.EmployeeProfile{HourlyWage: generic.MustParseDecimal("100")}, cs.Shifts, cs.Rates)
	require.NoError(t, err)

	// THEN: The edited row sets the pay and the weekend row keeps its default
	assert.True(t, generic.MustParseDecimal("300").Equal(res.OvertimeWeekdayPay), "pay %s", res.OvertimeWeekdayPay)
	assert.True(t, cs.Shifts.OvertimeWeekend.Multiplier.Equal(generic.MustParseDecimal("2.24")))
}

func TestParse_WeekendHours(t *testing.T) {
	tests := []struct {
		name           string
		doc            string
		friday, monday int
	}{
		{
			"row without hours follows evening and day start",
			"company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: day, start_hour: 6, end_hour: 17, multiplier: 1}\n  - {shift_type: evening, start_hour: 17, end_hour: 22, multiplier: 1.25}\n  - {shift_type: weekend, multiplier: 1.7}\n",
			17, 6,
		},
		{
			"no weekend row follows evening and day start",
			"company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: evening, start_hour: 19, end_hour: 22, multiplier: 1.25}\n",
			19, 7,
		},
		{
			"explicit midnight cutoffs are kept",
			"company_id: x\ncompany_name: X\nshifts:\n  - {shift_type: weekend, start_hour: 0, end_hour: 0, multiplier: 1.7}\n",
			0, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := settings.ParseOne([]byte(tt.doc))
			require.NoError(t, err)

			fri, mon := cs.Shifts.WeekendWindow()
			assert.Equal(t, tt.friday, fri)
			assert.Equal(t, tt.monday, mon)

			// The window survives a marshal round trip
			data, err := settings.Marshal(cs)
			require.NoError(t, err)
			again, err := settings.ParseOne(data)
			require.NoError(t, err)
			fri, mon = again.Shifts.WeekendWindow()
			assert.Equal(t, tt.friday, fri)
			assert.Equal(t, tt.monday, mon)
		})
	}
}

func TestParseOne_RejectsMultipleCompanies(t *testing.T) {
	data, err := os.ReadFile("testdata/companies.yaml")
	require.NoError(t, err)
	_, err = settings.ParseOne(data)
	assert.ErrorIs(t, err, generic.ErrInvalidConfig)
}

func TestDefault_BuildsClassifiers(t *testing.T) {
	cs := settings.Default("c1", "Company")
	require.NoError(t, cs.Validate())

	pc, err := cs.PayrollClassifier()
	require.NoError(t, err)
	assert.NotNil(t, pc)

	bc, err := cs.BillingClassifier()
	require.NoError(t, err)
	assert.NotNil(t, bc)
}
