package tax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tax"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name                         string
		gross, pct, threshold        string
		municipal, state, total, net string
	}{
		{"below threshold", "30000", "30", "45000", "9000", "0", "9000", "21000"},
		{"above threshold", "60000", "30", "45000", "18000", "3000", "21000", "39000"},
		{"default threshold", "61158", "0", "51158", "0", "2000", "2000", "59158"},
		{"zero gross", "0", "32", "51158", "0", "0", "0", "0"},
		{"rounds to cents", "1000.55", "31.5", "51158", "315.17", "0", "315.17", "685.38"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tax.Estimate(generic.MustParseDecimal(tt.gross), generic.MustParseDecimal(tt.pct), generic.MustParseDecimal(tt.threshold))
			require.NoError(t, err)
			assert.Truef(t, generic.MustParseDecimal(tt.municipal).Equal(res.MunicipalTax), "municipal %s", res.MunicipalTax)
			assert.Truef(t, generic.MustParseDecimal(tt.state).Equal(res.StateTax), "state %s", res.StateTax)
			assert.Truef(t, generic.MustParseDecimal(tt.total).Equal(res.TotalTax), "total %s", res.TotalTax)
			assert.Truef(t, generic.MustParseDecimal(tt.net).Equal(res.NetSalary), "net %s", res.NetSalary)
		})
	}
}

func TestEstimate_InvalidInput(t *testing.T) {
	tests := []struct {
		name                  string
		gross, pct, threshold string
	}{
		{"negative gross", "-1", "30", "51158"},
		{"negative percent", "1000", "-1", "51158"},
		{"percent above 100", "1000", "101", "51158"},
		{"negative threshold", "1000", "30", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tax.Estimate(generic.MustParseDecimal(tt.gross), generic.MustParseDecimal(tt.pct), generic.MustParseDecimal(tt.threshold))
			assert.ErrorIs(t, err, generic.ErrInvalidTaxInput)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestPeriodThreshold(t *testing.T) {
	monthly := tax.DefaultMonthlyThreshold
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"calendar month", generic.NewDate(2024, time.February, 1), generic.NewDate(2024, time.February, 29), "51158"},
		{"quarter", generic.NewDate(2024, time.January, 1), generic.NewDate(2024, time.March, 31), "153474"},
		{"week", generic.NewDate(2024, time.March, 4), generic.NewDate(2024, time.March, 10), "11773.35"},
		{"two weeks", generic.NewDate(2024, time.March, 4), generic.NewDate(2024, time.March, 17), "23546.70"},
		{"first half of month", generic.NewDate(2024, time.March, 1), generic.NewDate(2024, time.March, 15), "25228.60"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.PeriodThreshold(monthly, generic.Period{Start: tt.start, End: tt.end})
			assert.Truef(t, generic.MustParseDecimal(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEstimate_WeeklyPeriodPaysStateTaxOnWeeklyGross(t *testing.T) {
	// GIVEN: A weekly gross that is above a week's share of the threshold
	week := generic.Period{Start: generic.NewDate(2024, time.March, 4), End: generic.NewDate(2024, time.March, 10)}
	gross := generic.MustParseDecimal("16773.35")

	// WHEN: Estimated with the threshold scaled to the week
	res, err := tax.Estimate(gross, generic.MustParseDecimal("30"), tax.PeriodThreshold(tax.DefaultMonthlyThreshold, week))
	require.NoError(t, err)

	// THEN: The 5000 above the weekly threshold pays state tax
	assert.Truef(t, generic.MustParseDecimal("1000").Equal(res.StateTax), "state %s", res.StateTax)
}
