package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    generic.ClockTime
		wantErr bool
	}{
		{"08:00", generic.NewClockTime(8, 0), false},
		{"23:59", generic.NewClockTime(23, 59), false},
		{" 07:30 ", generic.NewClockTime(7, 30), false},
		{"16:45:59", generic.NewClockTime(16, 45), false},
		{"24:00", 0, true},
		{"8", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := generic.ParseClockTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, generic.ErrInvalidClockTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShiftInterval_EqualTimesMeanFullDay(t *testing.T) {
	// GIVEN: Start and end both 07:00
	// WHEN: Placed on the timeline
	// THEN: The shift runs 24h into the next day

	at := generic.NewClockTime(7, 0)
	iv := generic.ShiftInterval(monday, at, at)

	assert.Equal(t, int64(24*60), iv.Minutes())
	assert.Equal(t, monday.AddDate(0, 0, 1).Add(7*time.Hour), iv.End)
}

func TestNewPeriod(t *testing.T) {
	p, err := generic.NewPeriod(monday, monday.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.True(t, p.Contains(monday.Add(23*time.Hour)))
	assert.True(t, p.Contains(monday.AddDate(0, 0, 30)))
	assert.False(t, p.Contains(monday.AddDate(0, 0, 31)))
	assert.Equal(t, "[2024-01-01, 2024-01-31]", p.String())

	_, err = generic.NewPeriod(monday, monday.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// TIME ENTRY VALIDATION
// =============================================================================

func validEntry() generic.TimeEntry {
	return generic.TimeEntry{
		ID:           "e1",
		UserID:       "u1",
		Date:         monday,
		StartTime:    generic.NewClockTime(8, 0),
		EndTime:      generic.NewClockTime(17, 0),
		BreakMinutes: 60,
		PerDiemType:  generic.PerDiemNone,
		Attested:     true,
	}
}

func TestTimeEntry_TotalHours(t *testing.T) {
	e := validEntry()
	assertHours(t, "8", e.TotalHours(), "total")

	e.BreakMinutes = 10_000
	assert.True(t, e.TotalHours().IsZero())
}

func TestTimeEntry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*generic.TimeEntry)
		want   error
	}{
		{"clock out of range", func(e *generic.TimeEntry) { e.EndTime = generic.NewClockTime(24, 30) }, generic.ErrInvalidClockTime},
		{"negative break", func(e *generic.TimeEntry) { e.BreakMinutes = -1 }, generic.ErrNegativeBreak},
		{"negative overtime", func(e *generic.TimeEntry) { e.OvertimeWeekdayHours = decimal.NewFromInt(-1) }, generic.ErrNegativeHours},
		{"negative travel", func(e *generic.TimeEntry) { e.TravelTimeHours = decimal.NewFromInt(-2) }, generic.ErrNegativeHours},
		{"unknown per diem", func(e *generic.TimeEntry) { e.PerDiemType = "double" }, generic.ErrInvalidPerDiem},
		{"overtime above total", func(e *generic.TimeEntry) {
			e.OvertimeWeekdayHours = decimal.NewFromInt(5)
			e.OvertimeWeekendHours = decimal.NewFromInt(4)
		}, generic.ErrOvertimeExceedsTotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)

			err := e.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, generic.IsDataQuality(err))

			var entryErr *generic.EntryError
			require.ErrorAs(t, err, &entryErr)
			assert.Equal(t, generic.EntryID("e1"), entryErr.EntryID)
		})
	}

	assert.NoError(t, validEntry().Validate())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, generic.IsClientError(generic.ErrInvalidPeriod))
	assert.True(t, generic.IsClientError(&generic.ConfigError{Field: "x", Message: "y"}))
	assert.True(t, generic.IsNotFound(generic.ErrCompanyNotFound))
	assert.False(t, generic.IsNotFound(generic.ErrExportBlocked))
	assert.False(t, generic.IsClientError(generic.ErrExportBlocked))
}
