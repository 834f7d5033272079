package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/generic/store"
	"github.com/warp/payroll-engine/settings"
)

var january = generic.Period{
	Start: generic.NewDate(2024, time.January, 1),
	End:   generic.NewDate(2024, time.January, 31),
}

func entry(id, user string, day, startHour int, attested bool) generic.TimeEntry {
	return generic.TimeEntry{
		ID:        generic.EntryID(id),
		CompanyID: "c1",
		UserID:    generic.UserID(user),
		Date:      generic.NewDate(2024, time.January, day),
		StartTime: generic.NewClockTime(startHour, 0),
		EndTime:   generic.NewClockTime(startHour+2, 0),
		Attested:  attested,
	}
}

func TestMemory_ListAttestedEntries(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: Entries out of order, one unattested and one in another company
	other := entry("x1", "u1", 2, 8, true)
	other.CompanyID = "c2"
	require.NoError(t, m.AddEntries(ctx,
		entry("e3", "u1", 3, 8, true),
		entry("e2", "u2", 2, 12, true),
		entry("e1", "u1", 2, 8, true),
		entry("e4", "u1", 4, 8, false),
		other,
	))

	tests := []struct {
		name  string
		users []generic.UserID
		want  []generic.EntryID
	}{
		{"all users", nil, []generic.EntryID{"e1", "e2", "e3"}},
		{"one user", []generic.UserID{"u1"}, []generic.EntryID{"e1", "e3"}},
		{"unknown user", []generic.UserID{"nobody"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ListAttestedEntries(ctx, "c1", january, tt.users)
			require.NoError(t, err)
			var ids []generic.EntryID
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemory_ProfilesAndMappings(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveProfile(ctx, generic.EmployeeProfile{UserID: "u2", CompanyID: "c1", FullName: "Erik"}))
	require.NoError(t, m.SaveProfile(ctx, generic.EmployeeProfile{UserID: "u1", CompanyID: "c1", FullName: "Anna"}))
	require.NoError(t, m.SaveProfile(ctx, generic.EmployeeProfile{UserID: "u1", CompanyID: "c1", FullName: "Anna Lind"}))

	profiles, err := m.ListProfiles(ctx, "c1", nil)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Anna Lind", profiles[0].FullName, "saving again replaces the profile")

	require.NoError(t, m.SaveMapping(ctx, generic.CompanyMapping{CompanyID: "c1", SalaryCode: "RESTID", ExternalCode: "500"}))
	require.NoError(t, m.SaveMapping(ctx, generic.CompanyMapping{CompanyID: "c1", SalaryCode: "RESTID", ExternalCode: "510"}))
	mappings, err := m.ListMappings(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "510", mappings[0].ExternalCode)
	assert.False(t, mappings[0].UpdatedAt.IsZero())
}

func TestMemory_ExportLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	for _, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, m.AppendExportLog(ctx, generic.ExportLog{ID: id, CompanyID: "c1"}))
	}

	got, err := m.ListExportLogs(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "l3", got[0].ID)
	assert.Equal(t, "l2", got[1].ID)
}

func TestMemory_Settings(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, err := m.GetSettings(ctx, "c1")
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
	assert.True(t, generic.IsNotFound(err))

	assert.ErrorIs(t, m.SaveSettings(ctx, settings.CompanySettings{CompanyID: "c1"}), generic.ErrInvalidConfig)

	require.NoError(t, m.SaveSettings(ctx, settings.Default("c1", "ACME")))
	cs, err := m.GetSettings(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ACME", cs.CompanyName)
}
