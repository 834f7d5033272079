/*
store.go - Persistence interfaces consumed around the engine

PURPOSE:
  Defines the interface between the pure computation and the database.
  Stores are read before the computation and written after it, never in
  between. Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  EntryStore:     Attested time entries per company and period
  ProfileStore:   Wage, tax table and employee number per user
  MappingStore:   Company-specific salary-code mappings (admin-editable)
  ExportLogStore: Append-only log of produced export files

APPEND-ONLY CONTRACT:
  ExportLogStore has no Update or Delete. Every export run appends a new
  record; re-running an export is expected and never deduplicated.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - settings/settings.go: SettingsStore for the per-company bundle
  - export/exporter.go: Uses ExportLogStore
*/
package generic

import "context"

// =============================================================================
// READ SIDE - Inputs consumed from collaborators
// =============================================================================

// EntryStore loads time entries.
type EntryStore interface {
	// ListAttestedEntries returns attested entries dated inside the period,
	// ordered by user, date and start time. An empty userIDs means all users.
	ListAttestedEntries(ctx context.Context, companyID CompanyID, period Period, userIDs []UserID) ([]TimeEntry, error)
}

// ProfileStore loads employee profiles.
type ProfileStore interface {
	// ListProfiles returns profiles for the given users. An empty userIDs
	// means every profile of the company.
	ListProfiles(ctx context.Context, companyID CompanyID, userIDs []UserID) ([]EmployeeProfile, error)
}

// MappingStore loads and saves salary-code mappings.
type MappingStore interface {
	ListMappings(ctx context.Context, companyID CompanyID) ([]CompanyMapping, error)
	SaveMapping(ctx context.Context, m CompanyMapping) error
}

// =============================================================================
// WRITE SIDE - Audit of produced exports
// =============================================================================

// ExportLogStore is append-only.
type ExportLogStore interface {
	AppendExportLog(ctx context.Context, log ExportLog) error
	ListExportLogs(ctx context.Context, companyID CompanyID, limit int) ([]ExportLog, error)
}
