package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/generic/store"
)

var exportTime = time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)

// failingLogs refuses every export log write.
type failingLogs struct {
	*store.Memory
}

func (failingLogs) AppendExportLog(context.Context, generic.ExportLog) error {
	return errors.New("disk full")
}

func newTestExporter(m *store.Memory, logs generic.ExportLogStore) (*export.Exporter, *test.Hook) {
	logger, hook := test.NewNullLogger()
	if logs == nil {
		logs = m
	}
	x := export.NewExporter(export.Stores{
		Entries:  m,
		Profiles: m,
		Mappings: m,
		Logs:     logs,
		Settings: m,
	}, logger, export.WithClock(func() time.Time { return exportTime }))
	return x, hook
}

func request() export.Request {
	return export.Request{CompanyID: testCompany, Period: january, Actor: "admin@acme"}
}

func TestExport_WritesFileAndLog(t *testing.T) {
	// GIVEN: A fully mapped company where everyone has an employee number
	ctx := context.Background()
	m := newTestStore(t, strPtr("2002"))
	saveAllMappings(t, m)
	x, hook := newTestExporter(m, nil)

	// WHEN: Exported
	res, err := x.Export(ctx, request())
	require.NoError(t, err)

	// THEN: The file is named by company, period and timestamp
	assert.Equal(t, "paxml_acme-bygg-ab_20240101_20240131_20240201T080000.xml", res.Filename)
	assert.NoError(t, res.Warning)
	assert.Contains(t, string(res.Content), `<anstalld anstid="2002">`)
	require.Len(t, res.Document.Employees, 2)

	// AND: One log entry is recorded
	logs, err := m.ListExportLogs(ctx, testCompany, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, res.Log, logs[0])
	assert.Equal(t, 2, logs[0].EmployeeCount)
	assert.Equal(t, 6, logs[0].EntryCount)
	assert.Equal(t, "admin@acme", logs[0].CreatedBy)
	assert.NotEmpty(t, logs[0].ID)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, res.Filename, hook.LastEntry().Data["filename"])
}

func TestExport_RerunProducesNewLog(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t, strPtr("2002"))
	saveAllMappings(t, m)
	x, _ := newTestExporter(m, nil)

	first, err := x.Export(ctx, request())
	require.NoError(t, err)
	second, err := x.Export(ctx, request())
	require.NoError(t, err)

	assert.NotEqual(t, first.Log.ID, second.Log.ID)
	logs, err := m.ListExportLogs(ctx, testCompany, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestExport_BlockedByIssues(t *testing.T) {
	// GIVEN: No mappings at all
	ctx := context.Background()
	m := newTestStore(t, nil)
	x, _ := newTestExporter(m, nil)

	// WHEN: Exported
	_, err := x.Export(ctx, request())

	// THEN: The error carries the validation result and nothing is logged
	var issues *export.IssuesError
	require.ErrorAs(t, err, &issues)
	assert.Equal(t, export.StateBlockedOnMapping, issues.Result.State)
	assert.Len(t, issues.Result.MissingMappings, 5)
	assert.ErrorIs(t, err, generic.ErrExportBlocked)

	logs, err := m.ListExportLogs(ctx, testCompany, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestExport_FailsClosedOnInvalidEntry(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t, strPtr("2002"))
	saveAllMappings(t, m)
	bad := entry("bad", "u2", "p1", 3, "08:00", "10:00")
	bad.OvertimeWeekdayHours = dec("5")
	require.NoError(t, m.AddEntries(ctx, bad))
	x, _ := newTestExporter(m, nil)

	_, err := x.Export(ctx, request())

	var entryErr *generic.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, generic.EntryID("bad"), entryErr.EntryID)
	assert.ErrorIs(t, err, generic.ErrOvertimeExceedsTotal)
}

func TestExport_FailsOpenOnLogWrite(t *testing.T) {
	// GIVEN: A log store that rejects writes
	ctx := context.Background()
	m := newTestStore(t, strPtr("2002"))
	saveAllMappings(t, m)
	x, hook := newTestExporter(m, failingLogs{m})

	// WHEN: Exported
	res, err := x.Export(ctx, request())

	// THEN: The file is still returned with a warning
	require.NoError(t, err)
	assert.NotEmpty(t, res.Content)
	assert.Error(t, res.Warning)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestExport_UnknownCompany(t *testing.T) {
	x, _ := newTestExporter(store.NewMemory(), nil)
	_, err := x.Export(context.Background(), request())
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
}

func TestPrepare_SelectedEmployees(t *testing.T) {
	// GIVEN: Only u1 selected, so u2's missing number does not matter
	ctx := context.Background()
	m := newTestStore(t, nil)
	saveAllMappings(t, m)
	x, _ := newTestExporter(m, nil)

	req := request()
	req.UserIDs = []generic.UserID{"u1"}
	batch, err := x.Prepare(ctx, req)
	require.NoError(t, err)

	assert.True(t, batch.Result().Ready())
	require.Len(t, batch.Employees, 1)
	assert.Equal(t, "556677-8899", batch.Header.OrgNumber)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 3, 9, 0, time.UTC)
	tests := []struct {
		company string
		want    string
	}{
		{"ACME Bygg AB", "paxml_acme-bygg-ab_20240101_20240131_20240305T140309.xml"},
		{"  Öst & Väst  ", "paxml_st-v-st_20240101_20240131_20240305T140309.xml"},
		{"!!!", "paxml_company_20240101_20240131_20240305T140309.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.company, func(t *testing.T) {
			assert.Equal(t, tt.want, export.Filename(tt.company, january, at))
		})
	}
}
