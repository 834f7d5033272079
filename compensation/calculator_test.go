package compensation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal { return generic.MustParseDecimal(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", what, want, got)
}

func profile(wage string) generic.EmployeeProfile {
	return generic.EmployeeProfile{UserID: "u1", FullName: "Test Person", HourlyWage: dec(wage), TaxTable: dec("30")}
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_AllComponents(t *testing.T) {
	// GIVEN: 8h worked (4 day, 2 evening, 1 night after 1h weekday overtime),
	//        2h paid travel, 1h saved travel, one full and one half per-diem
	in := compensation.Input{
		Buckets:              payroll.Breakdown{Day: dec("4"), Evening: dec("2"), Night: dec("1")},
		TotalHours:           dec("8"),
		OvertimeWeekdayHours: dec("1"),
		TravelHours:          dec("2"),
		SavedTravelHours:     dec("1"),
		PerDiemFullDays:      1,
		PerDiemHalfDays:      1,
	}

	// WHEN: Priced at 200/h with the default schedule and rates
	res, err := compensation.Calculate(in, profile("200"), payroll.DefaultShiftConfig(), compensation.DefaultRates())
	require.NoError(t, err)

	// THEN: Every component follows its formula
	assertMoney(t, "1600", res.BasePay, "base")
	assertMoney(t, "0", res.OB.Day, "ob day")
	assertMoney(t, "100", res.OB.Evening, "ob evening")
	assertMoney(t, "80", res.OB.Night, "ob night")
	assertMoney(t, "180", res.OBTotal, "ob total")
	assertMoney(t, "328", res.OvertimeWeekdayPay, "overtime weekday")
	assertMoney(t, "0", res.OvertimeWeekendPay, "overtime weekend")
	assertMoney(t, "300", res.TravelPay, "travel")
	assertMoney(t, "150", res.DeferredTravelPay, "deferred travel")
	assertMoney(t, "435", res.PerDiemPay, "per diem")
	assertMoney(t, "2408", res.TaxableGross, "taxable gross")
	assertMoney(t, "2843", res.TotalPayable, "total payable")
}

func TestCalculate_WeekendOvertime(t *testing.T) {
	in := compensation.Input{
		Buckets:              payroll.Breakdown{Weekend: dec("3")},
		TotalHours:           dec("5"),
		OvertimeWeekendHours: dec("2"),
	}
	res, err := compensation.Calculate(in, profile("150"), payroll.DefaultShiftConfig(), compensation.DefaultRates())
	require.NoError(t, err)

	assertMoney(t, "750", res.BasePay, "base")
	assertMoney(t, "315", res.OB.Weekend, "ob weekend") // 3 x 150 x 0.7
	assertMoney(t, "672", res.OvertimeWeekendPay, "overtime weekend")
}

func TestCalculate_OvertimeMultipliersFollowShiftSchedule(t *testing.T) {
	in := compensation.Input{
		TotalHours:           dec("4"),
		OvertimeWeekdayHours: dec("1"),
		OvertimeWeekendHours: dec("1"),
	}

	tests := []struct {
		name             string
		weekday, weekend string
		wantWeekdayPay   string
		wantWeekendPay   string
	}{
		{"default rows", "1.64", "2.24", "164", "224"},
		{"edited overtime_day row", "3", "2.24", "300", "224"},
		{"edited overtime_weekend row", "1.64", "2.5", "164", "250"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: A schedule whose overtime rows carry the multipliers
			shifts := payroll.DefaultShiftConfig()
			shifts.OvertimeDay.Multiplier = dec(tt.weekday)
			shifts.OvertimeWeekend.Multiplier = dec(tt.weekend)

			// WHEN: Priced at 100/h
			res, err := compensation.Calculate(in, profile("100"), shifts, compensation.DefaultRates())
			require.NoError(t, err)

			// THEN: Overtime pay uses those rows
			assertMoney(t, tt.wantWeekdayPay, res.OvertimeWeekdayPay, "overtime weekday")
			assertMoney(t, tt.wantWeekendPay, res.OvertimeWeekendPay, "overtime weekend")
		})
	}
}

func TestCalculate_RejectsOvertimeMultiplierBelowOne(t *testing.T) {
	tests := []struct {
		name string
		edit func(*payroll.ShiftConfig)
	}{
		{"negative weekday", func(c *payroll.ShiftConfig) { c.OvertimeDay.Multiplier = dec("-1") }},
		{"zero weekday", func(c *payroll.ShiftConfig) { c.OvertimeDay.Multiplier = decimal.Zero }},
		{"fractional weekend", func(c *payroll.ShiftConfig) { c.OvertimeWeekend.Multiplier = dec("0.5") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shifts := payroll.DefaultShiftConfig()
			tt.edit(&shifts)

			in := compensation.Input{TotalHours: dec("2"), OvertimeWeekdayHours: dec("1"), OvertimeWeekendHours: dec("1")}
			res, err := compensation.Calculate(in, profile("200"), shifts, compensation.DefaultRates())

			assert.ErrorIs(t, err, generic.ErrInvalidConfig)
			assert.True(t, res.OvertimeWeekdayPay.IsZero(), "no pay is produced")
		})
	}
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	shifts := payroll.DefaultShiftConfig()
	rates := compensation.DefaultRates()

	tests := []struct {
		name    string
		in      compensation.Input
		wage    string
		wantErr error
	}{
		{"negative hours", compensation.Input{TotalHours: dec("-1")}, "100", generic.ErrNegativeHours},
		{"negative per diem", compensation.Input{PerDiemHalfDays: -1}, "100", generic.ErrNegativeHours},
		{"overtime above total", compensation.Input{TotalHours: dec("2"), OvertimeWeekdayHours: dec("3")}, "100", generic.ErrOvertimeExceedsTotal},
		{"negative wage", compensation.Input{TotalHours: dec("2")}, "-5", generic.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compensation.Calculate(tt.in, profile(tt.wage), shifts, rates)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRates_Validate(t *testing.T) {
	r := compensation.DefaultRates()
	r.PerDiemFullRate = dec("-1")
	assert.ErrorIs(t, r.Validate(), generic.ErrInvalidConfig)
	assert.NoError(t, compensation.DefaultRates().Validate())
}

// =============================================================================
// AGGREGATE
// =============================================================================

func entry(id, user string, day int, start, end string, brk int) generic.TimeEntry {
	s, _ := generic.ParseClockTime(start)
	e, _ := generic.ParseClockTime(end)
	return generic.TimeEntry{
		ID:           generic.EntryID(id),
		CompanyID:    "c1",
		UserID:       generic.UserID(user),
		Date:         generic.NewDate(2024, time.January, day),
		StartTime:    s,
		EndTime:      e,
		BreakMinutes: brk,
		PerDiemType:  generic.PerDiemNone,
		Attested:     true,
	}
}

func TestAggregate_SumsPerUserAndDedupsPerDiem(t *testing.T) {
	// GIVEN: Two Monday entries for u1 with half and full per-diem, a Tuesday
	//        entry with half per-diem, and an invalid entry
	e1 := entry("e1", "u1", 1, "08:00", "12:00", 0)
	e1.PerDiemType = generic.PerDiemHalf
	e1.TravelTimeHours = dec("1")

	e2 := entry("e2", "u1", 1, "13:00", "17:00", 0)
	e2.PerDiemType = generic.PerDiemFull
	e2.TravelTimeHours = dec("1.5")
	e2.SaveTravelCompensation = true

	e3 := entry("e3", "u1", 2, "08:00", "16:00", 0)
	e3.PerDiemType = generic.PerDiemHalf
	e3.OvertimeWeekdayHours = dec("2")

	bad := entry("bad", "u2", 2, "08:00", "16:00", -10)

	classifier, err := payroll.NewClassifier(payroll.DefaultShiftConfig())
	require.NoError(t, err)

	// WHEN: Aggregated
	hours, err := compensation.Aggregate([]generic.TimeEntry{e1, e2, e3, bad}, classifier)

	// THEN: The invalid entry is reported, the rest summed
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrNegativeBreak)
	assert.Contains(t, err.Error(), "bad")

	require.Contains(t, hours, generic.UserID("u1"))
	assert.NotContains(t, hours, generic.UserID("u2"))

	h := hours["u1"]
	assert.Equal(t, 3, h.EntryCount)
	assertMoney(t, "16", h.TotalHours, "total")
	assertMoney(t, "16", h.Classified.Day, "classified day")
	assertMoney(t, "14", h.Adjusted.Day, "adjusted day")
	assertMoney(t, "2", h.OvertimeWeekday, "overtime")
	assertMoney(t, "1", h.TravelHours, "paid travel")
	assertMoney(t, "1.5", h.SavedTravelHours, "saved travel")
	assert.Equal(t, 1, h.PerDiemFullDays, "full outranks half on the same date")
	assert.Equal(t, 1, h.PerDiemHalfDays)

	days := h.PerDiemDays()
	assert.Equal(t, generic.PerDiemFull, days[generic.NewDate(2024, time.January, 1)])

	in := h.Input()
	assert.True(t, in.Buckets.Day.Equal(dec("14")))
	assert.Equal(t, []generic.UserID{"u1"}, compensation.SortedUserIDs(hours))
}
