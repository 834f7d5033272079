// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements every store interface the engine consumes.
type Memory struct {
	mu       sync.RWMutex
	entries  map[generic.CompanyID][]generic.TimeEntry
	profiles map[generic.CompanyID]map[generic.UserID]generic.EmployeeProfile
	mappings map[generic.CompanyID]map[string]generic.CompanyMapping
	logs     map[generic.CompanyID][]generic.ExportLog
	settings map[generic.CompanyID]settings.CompanySettings
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[generic.CompanyID][]generic.TimeEntry),
		profiles: make(map[generic.CompanyID]map[generic.UserID]generic.EmployeeProfile),
		mappings: make(map[generic.CompanyID]map[string]generic.CompanyMapping),
		logs:     make(map[generic.CompanyID][]generic.ExportLog),
		settings: make(map[generic.CompanyID]settings.CompanySettings),
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

// AddEntries stores entries as delivered; unattested ones are kept but never listed.
func (m *Memory) AddEntries(_ context.Context, entries ...generic.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.CompanyID] = append(m.entries[e.CompanyID], e)
	}
	return nil
}

func (m *Memory) ListAttestedEntries(_ context.Context, companyID generic.CompanyID, period generic.Period, userIDs []generic.UserID) ([]generic.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := userSet(userIDs)
	var out []generic.TimeEntry
	for _, e := range m.entries[companyID] {
		if !e.Attested || !period.Contains(e.Date) {
			continue
		}
		if want != nil && !want[e.UserID] {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// =============================================================================
// PROFILES
// =============================================================================

func (m *Memory) SaveProfile(_ context.Context, p generic.EmployeeProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.profiles[p.CompanyID]
	if !ok {
		byUser = make(map[generic.UserID]generic.EmployeeProfile)
		m.profiles[p.CompanyID] = byUser
	}
	byUser[p.UserID] = p
	return nil
}

func (m *Memory) ListProfiles(_ context.Context, companyID generic.CompanyID, userIDs []generic.UserID) ([]generic.EmployeeProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := userSet(userIDs)
	var out []generic.EmployeeProfile
	for id, p := range m.profiles[companyID] {
		if want != nil && !want[id] {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// =============================================================================
// MAPPINGS
// =============================================================================

func (m *Memory) ListMappings(_ context.Context, companyID generic.CompanyID) ([]generic.CompanyMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.CompanyMapping, 0, len(m.mappings[companyID]))
	for _, mp := range m.mappings[companyID] {
		out = append(out, mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SalaryCode < out[j].SalaryCode })
	return out, nil
}

// SaveMapping upserts by (company, salary code).
func (m *Memory) SaveMapping(_ context.Context, mp generic.CompanyMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCode, ok := m.mappings[mp.CompanyID]
	if !ok {
		byCode = make(map[string]generic.CompanyMapping)
		m.mappings[mp.CompanyID] = byCode
	}
	if mp.UpdatedAt.IsZero() {
		mp.UpdatedAt = time.Now().UTC()
	}
	byCode[mp.SalaryCode] = mp
	return nil
}

// =============================================================================
// EXPORT LOGS - Append-only
// =============================================================================

func (m *Memory) AppendExportLog(_ context.Context, log generic.ExportLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[log.CompanyID] = append(m.logs[log.CompanyID], log)
	return nil
}

// ListExportLogs returns the newest logs first. limit <= 0 returns all.
func (m *Memory) ListExportLogs(_ context.Context, companyID generic.CompanyID, limit int) ([]generic.ExportLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.logs[companyID]
	out := make([]generic.ExportLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSettings(_ context.Context, companyID generic.CompanyID) (settings.CompanySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[companyID]
	if !ok {
		return settings.CompanySettings{}, generic.ErrCompanyNotFound
	}
	return s, nil
}

func (m *Memory) SaveSettings(_ context.Context, s settings.CompanySettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.CompanyID] = s
	return nil
}

func userSet(ids []generic.UserID) map[generic.UserID]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[generic.UserID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

var (
	_ generic.EntryStore     = (*Memory)(nil)
	_ generic.ProfileStore   = (*Memory)(nil)
	_ generic.MappingStore   = (*Memory)(nil)
	_ generic.ExportLogStore = (*Memory)(nil)
	_ settings.Store         = (*Memory)(nil)
)
