/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the payroll engine consumes using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  generic.EntryStore:     Attested time entries per company and period
  generic.ProfileStore:   Wage, tax table and employee number per user
  generic.MappingStore:   Salary code to external pay-type code
  generic.ExportLogStore: Append-only export audit trail
  settings.Store:         Per-company settings bundle

APPEND-ONLY ENFORCEMENT:
  export_logs is never updated or deleted from. Re-running an export adds
  a new row.

KEY TABLES:
  companies:         Settings bundle as a YAML document (settings.Marshal)
  time_entries:      Shifts as delivered by time reporting
  employee_profiles: Export-relevant employee data
  company_mappings:  One external code per (company, salary code)
  export_logs:       Who exported which period, when, into which file

NUMBERS:
  Hours and money are stored as TEXT decimal strings so nothing passes
  through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Companies with their settings bundle
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		settings_yaml TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Time entries
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		overtime_weekday_hours TEXT NOT NULL DEFAULT '0',
		overtime_weekend_hours TEXT NOT NULL DEFAULT '0',
		travel_time_hours TEXT NOT NULL DEFAULT '0',
		save_travel_compensation BOOLEAN DEFAULT FALSE,
		per_diem_type TEXT NOT NULL DEFAULT 'none',
		attested BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Period queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_time_entries_company_date
		ON time_entries(company_id, date);
	CREATE INDEX IF NOT EXISTS idx_time_entries_company_user_date
		ON time_entries(company_id, user_id, date);

	-- Employee profiles
	CREATE TABLE IF NOT EXISTS employee_profiles (
		company_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		hourly_wage TEXT NOT NULL,
		tax_table TEXT NOT NULL,
		employee_number TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (company_id, user_id)
	);

	-- Salary code mappings
	CREATE TABLE IF NOT EXISTS company_mappings (
		company_id TEXT NOT NULL,
		salary_code TEXT NOT NULL,
		external_code TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (company_id, salary_code)
	);

	-- Export logs (append-only)
	CREATE TABLE IF NOT EXISTS export_logs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		employee_count INTEGER NOT NULL,
		entry_count INTEGER NOT NULL,
		filename TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_export_logs_company_created
		ON export_logs(company_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SETTINGS STORE (settings.Store interface)
// =============================================================================

// SaveSettings upserts a company and its settings bundle.
func (s *Store) SaveSettings(ctx context.Context, cs settings.CompanySettings) error {
	if err := cs.Validate(); err != nil {
		return err
	}
	doc, err := settings.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO companies (id, name, settings_yaml, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			settings_yaml = excluded.settings_yaml,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, cs.CompanyID, cs.CompanyName, string(doc), now, now)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings returns generic.ErrCompanyNotFound for unknown companies.
func (s *Store) GetSettings(ctx context.Context, companyID generic.CompanyID) (settings.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT settings_yaml FROM companies WHERE id = ?", companyID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.CompanySettings{}, generic.ErrCompanyNotFound
	}
	if err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	cs, err := settings.ParseOne([]byte(doc))
	if err != nil {
		return settings.CompanySettings{}, fmt.Errorf("stored settings for %s: %w", companyID, err)
	}
	return cs, nil
}

// CompanyRecord is a company row without its settings.
type CompanyRecord struct {
	ID        generic.CompanyID
	Name      string
	UpdatedAt time.Time
}

func (s *Store) ListCompanies(ctx context.Context) ([]CompanyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, updated_at FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []CompanyRecord
	for rows.Next() {
		var c CompanyRecord
		var updated string
		if err := rows.Scan(&c.ID, &c.Name, &updated); err != nil {
			return nil, err
		}
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// ENTRY STORE (generic.EntryStore interface)
// =============================================================================

// AddEntries upserts entries atomically.
func (s *Store) AddEntries(ctx context.Context, entries ...generic.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := saveEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveEntry(ctx context.Context, db execer, e generic.TimeEntry) error {
	query := `
		INSERT OR REPLACE INTO time_entries
		(id, company_id, user_id, project_id, date, start_minute, end_minute, break_minutes,
		 overtime_weekday_hours, overtime_weekend_hours, travel_time_hours,
		 save_travel_compensation, per_diem_type, attested, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.UserID,
		e.ProjectID,
		generic.DateOf(e.Date).Format(generic.DateLayout),
		int(e.StartTime),
		int(e.EndTime),
		e.BreakMinutes,
		e.OvertimeWeekdayHours.String(),
		e.OvertimeWeekendHours.String(),
		e.TravelTimeHours.String(),
		e.SaveTravelCompensation,
		string(e.PerDiem()),
		e.Attested,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) ListAttestedEntries(ctx context.Context, companyID generic.CompanyID, period generic.Period, userIDs []generic.UserID) ([]generic.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, user_id, project_id, date, start_minute, end_minute, break_minutes,
		       overtime_weekday_hours, overtime_weekend_hours, travel_time_hours,
		       save_travel_compensation, per_diem_type, attested
		FROM time_entries
		WHERE company_id = ? AND attested = TRUE AND date >= ? AND date <= ?
	`
	args := []any{companyID, period.Start.Format(generic.DateLayout), period.End.Format(generic.DateLayout)}
	filter, filterArgs := inClause("user_id", userIDs)
	query += filter + " ORDER BY date ASC, start_minute ASC, id ASC"
	args = append(args, filterArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []generic.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (generic.TimeEntry, error) {
	var (
		e                        generic.TimeEntry
		date                     string
		start, end               int
		otWeekday, otWeekend, tr string
		perDiem                  string
	)
	err := rows.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.ProjectID, &date, &start, &end, &e.BreakMinutes,
		&otWeekday, &otWeekend, &tr, &e.SaveTravelCompensation, &perDiem, &e.Attested)
	if err != nil {
		return generic.TimeEntry{}, fmt.Errorf("failed to scan entry: %w", err)
	}

	if e.Date, err = generic.ParseDate(date); err != nil {
		return generic.TimeEntry{}, err
	}
	e.StartTime = generic.ClockTime(start)
	e.EndTime = generic.ClockTime(end)
	e.PerDiemType = generic.PerDiemType(perDiem)
	if e.OvertimeWeekdayHours, err = decimal.NewFromString(otWeekday); err != nil {
		return generic.TimeEntry{}, err
	}
	if e.OvertimeWeekendHours, err = decimal.NewFromString(otWeekend); err != nil {
		return generic.TimeEntry{}, err
	}
	if e.TravelTimeHours, err = decimal.NewFromString(tr); err != nil {
		return generic.TimeEntry{}, err
	}
	return e, nil
}

// =============================================================================
// PROFILE STORE (generic.ProfileStore interface)
// =============================================================================

func (s *Store) SaveProfile(ctx context.Context, p generic.EmployeeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO employee_profiles
		(company_id, user_id, full_name, hourly_wage, tax_table, employee_number, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var number sql.NullString
	if p.EmployeeNumber != nil {
		number = nullString(*p.EmployeeNumber)
	}
	_, err := s.db.ExecContext(ctx, query,
		p.CompanyID, p.UserID, p.FullName,
		p.HourlyWage.String(), p.TaxTable.String(), number,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Store) ListProfiles(ctx context.Context, companyID generic.CompanyID, userIDs []generic.UserID) ([]generic.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT company_id, user_id, full_name, hourly_wage, tax_table, employee_number
		FROM employee_profiles
		WHERE company_id = ?
	`
	args := []any{companyID}
	filter, filterArgs := inClause("user_id", userIDs)
	query += filter + " ORDER BY user_id"
	args = append(args, filterArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []generic.EmployeeProfile
	for rows.Next() {
		var (
			p         generic.EmployeeProfile
			wage, tbl string
			number    sql.NullString
		)
		if err := rows.Scan(&p.CompanyID, &p.UserID, &p.FullName, &wage, &tbl, &number); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if p.HourlyWage, err = decimal.NewFromString(wage); err != nil {
			return nil, err
		}
		if p.TaxTable, err = decimal.NewFromString(tbl); err != nil {
			return nil, err
		}
		if number.Valid {
			n := number.String
			p.EmployeeNumber = &n
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// MAPPING STORE (generic.MappingStore interface)
// =============================================================================

func (s *Store) ListMappings(ctx context.Context, companyID generic.CompanyID) ([]generic.CompanyMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT company_id, salary_code, external_code, updated_at
		FROM company_mappings
		WHERE company_id = ?
		ORDER BY salary_code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var out []generic.CompanyMapping
	for rows.Next() {
		var m generic.CompanyMapping
		var updated string
		if err := rows.Scan(&m.CompanyID, &m.SalaryCode, &m.ExternalCode, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveMapping upserts by (company, salary code).
func (s *Store) SaveMapping(ctx context.Context, m generic.CompanyMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO company_mappings (company_id, salary_code, external_code, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company_id, salary_code) DO UPDATE SET
			external_code = excluded.external_code,
			updated_at = excluded.updated_at
	`, m.CompanyID, m.SalaryCode, m.ExternalCode, m.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// =============================================================================
// EXPORT LOG STORE (generic.ExportLogStore interface)
// =============================================================================

func (s *Store) AppendExportLog(ctx context.Context, l generic.ExportLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO export_logs
		(id, company_id, period_start, period_end, employee_count, entry_count, filename, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID,
		l.CompanyID,
		l.PeriodStart.Format(generic.DateLayout),
		l.PeriodEnd.Format(generic.DateLayout),
		l.EmployeeCount,
		l.EntryCount,
		l.Filename,
		l.CreatedBy,
		l.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("export log %s already exists: %w", l.ID, err)
		}
		return fmt.Errorf("failed to append export log: %w", err)
	}
	return nil
}

// ListExportLogs returns the newest logs first. limit <= 0 returns all.
func (s *Store) ListExportLogs(ctx context.Context, companyID generic.CompanyID, limit int) ([]generic.ExportLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, period_start, period_end, employee_count, entry_count, filename, created_by, created_at
		FROM export_logs
		WHERE company_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{companyID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export logs: %w", err)
	}
	defer rows.Close()

	var out []generic.ExportLog
	for rows.Next() {
		var l generic.ExportLog
		var start, end, created string
		if err := rows.Scan(&l.ID, &l.CompanyID, &start, &end, &l.EmployeeCount, &l.EntryCount, &l.Filename, &l.CreatedBy, &created); err != nil {
			return nil, fmt.Errorf("failed to scan export log: %w", err)
		}
		l.PeriodStart, _ = generic.ParseDate(start)
		l.PeriodEnd, _ = generic.ParseDate(end)
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Reset clears all data except export logs.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"time_entries", "employee_profiles", "company_mappings", "companies"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// inClause returns " AND col IN (?, ...)" for a non-empty id list.
func inClause(col string, ids []generic.UserID) (string, []any) {
	if len(ids) == 0 {
		return "", nil
	}
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return " AND " + col + " IN (" + strings.Join(marks, ", ") + ")", args
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ generic.EntryStore     = (*Store)(nil)
	_ generic.ProfileStore   = (*Store)(nil)
	_ generic.MappingStore   = (*Store)(nil)
	_ generic.ExportLogStore = (*Store)(nil)
	_ settings.Store         = (*Store)(nil)
)
