/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the compensation and export pipeline via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Companies:
    GET    /api/companies                          List companies
    GET    /api/companies/{cid}/settings           Get settings bundle
    PUT    /api/companies/{cid}/settings           Replace settings (YAML or JSON document)

  Ingestion:
    POST   /api/companies/{cid}/entries            Add time entries
    GET    /api/companies/{cid}/employees          List profiles
    PUT    /api/companies/{cid}/employees/{uid}    Save profile

  Mappings:
    GET    /api/companies/{cid}/salary-codes       Catalog with mapping status
    GET    /api/companies/{cid}/mappings           List mappings
    PUT    /api/companies/{cid}/mappings/{code}    Save mapping

  Payroll:
    GET    /api/companies/{cid}/payroll/period        Pay cycle around ?date=
    GET    /api/companies/{cid}/payroll/readiness     Latest scheduled readiness check
    GET    /api/companies/{cid}/payroll/summary       Review summary (?start=&end=&user_id=)
    GET    /api/companies/{cid}/payroll/summary.xlsx  Review workbook
    POST   /api/companies/{cid}/payroll/validate      Validation result
    POST   /api/companies/{cid}/payroll/export        Download export XML
    GET    /api/companies/{cid}/payroll/exports       Export logs (?limit=)

  Previews:
    POST   /api/companies/{cid}/classify/payroll   Classify one shift (OB schedule)
    POST   /api/companies/{cid}/classify/billing   Classify and price one shift
    POST   /api/tax/estimate                       Simplified tax estimate

  Scenarios:
    GET    /api/scenarios                          List demo scenarios
    GET    /api/scenarios/current                  Loaded scenario
    POST   /api/scenarios/load                     Reset and load a scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed request, invalid settings, invalid tax input
  - 404: Unknown company or employee
  - 422: Invalid time entries, export blocked by validation issues
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. The actor of an export is taken
  from the request body.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - export/exporter.go: The pipeline behind the payroll endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Exporter *export.Exporter
	Logger   *logrus.Logger

	// ExportDir receives a copy of each export file when non-empty.
	ExportDir string
	// Scheduler, when set, serves cached readiness results.
	Scheduler *ReadinessScheduler

	validate        *validator.Validate
	currentScenario string
}

// NewHandler wires the exporter to the store.
func NewHandler(store *sqlite.Store, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	exporter := export.NewExporter(export.Stores{
		Entries:  store,
		Profiles: store,
		Mappings: store,
		Logs:     store,
		Settings: store,
	}, logger)

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{Store: store, Exporter: exporter, Logger: logger, validate: v}
}

// =============================================================================
// COMPANY / SETTINGS HANDLERS
// =============================================================================

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}
	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = CompanyDTO{ID: string(c.ID), Name: c.Name, UpdatedAt: c.UpdatedAt.Format(time.RFC3339)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Store.GetSettings(r.Context(), companyID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cs))
}

// PutSettings accepts a settings document (settings/yaml.go schema). The
// company id in the URL wins over the document.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	cs, err := settings.ParseOne(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	cs.CompanyID = companyID(r)
	if err := h.Store.SaveSettings(r.Context(), cs); err != nil {
		writeDomainError(w, err)
		return
	}
	h.Logger.WithField("company_id", cs.CompanyID).Info("settings saved")
	writeJSON(w, http.StatusOK, toSettingsDTO(cs))
}

// =============================================================================
// INGESTION HANDLERS
// =============================================================================

func (h *Handler) AddEntries(w http.ResponseWriter, r *http.Request) {
	var req AddEntriesRequest
	if !h.decode(w, r, &req) {
		return
	}
	cid := companyID(r)
	if !h.requireCompany(w, r, cid) {
		return
	}

	entries := make([]generic.TimeEntry, 0, len(req.Entries))
	ids := make([]string, 0, len(req.Entries))
	for i, er := range req.Entries {
		e, err := toTimeEntry(cid, er)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid entry %d", i), err)
			return
		}
		entries = append(entries, e)
		ids = append(ids, string(e.ID))
	}

	if err := h.Store.AddEntries(r.Context(), entries...); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entries", err)
		return
	}
	writeJSON(w, http.StatusCreated, AddEntriesResponse{Added: len(entries), IDs: ids})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context(), companyID(r), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	cid := companyID(r)
	if !h.requireCompany(w, r, cid) {
		return
	}

	p := generic.EmployeeProfile{
		UserID:         generic.UserID(chi.URLParam(r, "userID")),
		CompanyID:      cid,
		FullName:       req.FullName,
		HourlyWage:     req.HourlyWage,
		TaxTable:       req.TaxTable,
		EmployeeNumber: req.EmployeeNumber,
	}
	if p.HourlyWage.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourly_wage must not be negative", nil)
		return
	}
	if p.TaxTable.IsNegative() || p.TaxTable.GreaterThan(decimal.NewFromInt(100)) {
		writeError(w, http.StatusBadRequest, "tax_table must be within 0-100", nil)
		return
	}
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// =============================================================================
// MAPPING HANDLERS
// =============================================================================

func (h *Handler) ListSalaryCodes(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.Store.ListMappings(r.Context(), companyID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list mappings", err)
		return
	}
	table := export.NewMappingTable(mappings)

	catalog := h.Exporter.Catalog()
	dtos := make([]SalaryCodeDTO, len(catalog))
	for i, def := range catalog {
		ext, ok := table[def.Code]
		dtos[i] = SalaryCodeDTO{CodeDefinition: def, ExternalCode: ext, Mapped: ok}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.Store.ListMappings(r.Context(), companyID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list mappings", err)
		return
	}
	dtos := make([]MappingDTO, len(mappings))
	for i, m := range mappings {
		dtos[i] = MappingDTO{SalaryCode: m.SalaryCode, ExternalCode: m.ExternalCode, UpdatedAt: m.UpdatedAt.Format(time.RFC3339)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveMapping only accepts codes from the catalog.
func (h *Handler) SaveMapping(w http.ResponseWriter, r *http.Request) {
	var req SaveMappingRequest
	if !h.decode(w, r, &req) {
		return
	}
	code := export.SalaryCode(strings.ToUpper(chi.URLParam(r, "code")))
	if _, ok := h.Exporter.Catalog().Lookup(code); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown salary code %q", code), nil)
		return
	}
	cid := companyID(r)
	if !h.requireCompany(w, r, cid) {
		return
	}

	m := generic.CompanyMapping{
		CompanyID:    cid,
		SalaryCode:   string(code),
		ExternalCode: strings.TrimSpace(req.ExternalCode),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := h.Store.SaveMapping(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save mapping", err)
		return
	}
	writeJSON(w, http.StatusOK, MappingDTO{SalaryCode: m.SalaryCode, ExternalCode: m.ExternalCode, UpdatedAt: m.UpdatedAt.Format(time.RFC3339)})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req, err := summaryRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	sum, err := h.Exporter.Summary(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *Handler) GetSummaryWorkbook(w http.ResponseWriter, r *http.Request) {
	req, err := summaryRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	sum, err := h.Exporter.Summary(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	content, err := export.WriteSummaryWorkbook(sum)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	name := fmt.Sprintf("summary_%s_%s.xlsx", req.Period.Start.Format("20060102"), req.Period.End.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Handler) ValidateExport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.exportRequest(w, r)
	if !ok {
		return
	}
	batch, err := h.Exporter.Prepare(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch.Result())
}

// Export returns the XML file. A failed export-log write is reported in the
// X-Export-Warning header and does not fail the download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := h.exportRequest(w, r)
	if !ok {
		return
	}
	res, err := h.Exporter.Export(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.ExportDir != "" {
		path := filepath.Join(h.ExportDir, res.Filename)
		if err := os.WriteFile(path, res.Content, 0o644); err != nil {
			h.Logger.WithError(err).WithField("path", path).Warn("failed to archive export file")
		}
	}

	if res.Warning != nil {
		w.Header().Set("X-Export-Warning", res.Warning.Error())
	}
	w.Header().Set("X-Export-Log-ID", res.Log.ID)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Content)
}

// GetPayPeriod resolves the company's pay cycle around ?date= (default today).
func (h *Handler) GetPayPeriod(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Store.GetSettings(r.Context(), companyID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	date := time.Now().UTC()
	if s := r.URL.Query().Get("date"); s != "" {
		if date, err = generic.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}
	pc := cs.PayPeriod
	current := pc.PeriodFor(date)
	writeJSON(w, http.StatusOK, PeriodResponse{
		Type:       string(pc.Type),
		Current:    toPeriodDTO(current),
		Previous:   toPeriodDTO(pc.Previous(current)),
		Next:       toPeriodDTO(pc.Next(current)),
		LastClosed: toPeriodDTO(pc.LastClosed(date)),
	})
}

func (h *Handler) ListExportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}
	logs, err := h.Store.ListExportLogs(r.Context(), companyID(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list export logs", err)
		return
	}
	dtos := make([]ExportLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = ExportLogDTO{
			ID:            l.ID,
			PeriodStart:   l.PeriodStart.Format(generic.DateLayout),
			PeriodEnd:     l.PeriodEnd.Format(generic.DateLayout),
			EmployeeCount: l.EmployeeCount,
			EntryCount:    l.EntryCount,
			Filename:      l.Filename,
			CreatedBy:     l.CreatedBy,
			CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PREVIEW HANDLERS
// =============================================================================

func (h *Handler) ClassifyPayroll(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	cs, err := h.Store.GetSettings(r.Context(), companyID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	classifier, err := cs.PayrollClassifier()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	b, err := classifier.ClassifyClock(date, req.StartTime, req.EndTime, req.BreakMinutes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ClassifyBilling(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	cs, err := h.Store.GetSettings(r.Context(), companyID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	classifier, err := cs.BillingClassifier()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	start, err := generic.ParseClockTime(req.StartTime)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	end, err := generic.ParseClockTime(req.EndTime)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	b, err := classifier.Classify(date, start, end, req.BreakMinutes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := BillingPreviewResponse{Hours: b}
	if req.HourlyRate.IsPositive() {
		resp.Lines = classifier.Invoice(b, req.HourlyRate)
		for _, l := range resp.Lines {
			resp.Total = resp.Total.Add(l.Amount)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) EstimateTax(w http.ResponseWriter, r *http.Request) {
	var req TaxEstimateRequest
	if !h.decode(w, r, &req) {
		return
	}
	threshold := tax.DefaultMonthlyThreshold
	if req.MonthlyThreshold != nil {
		threshold = *req.MonthlyThreshold
	}
	est, err := tax.Estimate(req.GrossPay, req.TaxTable, threshold)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

func companyID(r *http.Request) generic.CompanyID {
	return generic.CompanyID(chi.URLParam(r, "companyID"))
}

// requireCompany writes 404 when the company has no settings.
func (h *Handler) requireCompany(w http.ResponseWriter, r *http.Request, cid generic.CompanyID) bool {
	if _, err := h.Store.GetSettings(r.Context(), cid); err != nil {
		writeDomainError(w, err)
		return false
	}
	return true
}

// decode reads a JSON body into dst and runs struct validation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", errors.New(formatBindingError(err)))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", errors.New(formatBindingError(err)))
		return false
	}
	return true
}

func (h *Handler) exportRequest(w http.ResponseWriter, r *http.Request) (export.Request, bool) {
	var body ExportRequest
	if !h.decode(w, r, &body) {
		return export.Request{}, false
	}
	period, err := parsePeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return export.Request{}, false
	}
	return export.Request{
		CompanyID: companyID(r),
		Period:    period,
		UserIDs:   toUserIDs(body.UserIDs),
		Actor:     body.Actor,
	}, true
}

func summaryRequest(r *http.Request) (export.Request, error) {
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("start"), q.Get("end"))
	if err != nil {
		return export.Request{}, err
	}
	return export.Request{
		CompanyID: companyID(r),
		Period:    period,
		UserIDs:   toUserIDs(q["user_id"]),
	}, nil
}

func parsePeriod(start, end string) (generic.Period, error) {
	s, err := generic.ParseDate(start)
	if err != nil {
		return generic.Period{}, fmt.Errorf("start: %w", err)
	}
	e, err := generic.ParseDate(end)
	if err != nil {
		return generic.Period{}, fmt.Errorf("end: %w", err)
	}
	return generic.NewPeriod(s, e)
}

func toUserIDs(ids []string) []generic.UserID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]generic.UserID, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, generic.UserID(id))
		}
	}
	return out
}

func toTimeEntry(cid generic.CompanyID, req TimeEntryRequest) (generic.TimeEntry, error) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return generic.TimeEntry{}, err
	}
	start, err := generic.ParseClockTime(req.StartTime)
	if err != nil {
		return generic.TimeEntry{}, err
	}
	end, err := generic.ParseClockTime(req.EndTime)
	if err != nil {
		return generic.TimeEntry{}, err
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	perDiem := generic.PerDiemType(req.PerDiemType)
	if perDiem == "" {
		perDiem = generic.PerDiemNone
	}
	return generic.TimeEntry{
		ID:                     generic.EntryID(id),
		CompanyID:              cid,
		UserID:                 generic.UserID(req.UserID),
		ProjectID:              generic.ProjectID(req.ProjectID),
		Date:                   date,
		StartTime:              start,
		EndTime:                end,
		BreakMinutes:           req.BreakMinutes,
		OvertimeWeekdayHours:   req.OvertimeWeekdayHours,
		OvertimeWeekendHours:   req.OvertimeWeekendHours,
		TravelTimeHours:        req.TravelTimeHours,
		SaveTravelCompensation: req.SaveTravelCompensation,
		PerDiemType:            perDiem,
		Attested:               req.Attested,
	}, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func toSettingsDTO(cs settings.CompanySettings) SettingsDTO {
	return SettingsDTO{
		CompanyID:                string(cs.CompanyID),
		CompanyName:              cs.CompanyName,
		OrgNumber:                cs.OrgNumber,
		Shifts:                   cs.Shifts.Rows(),
		Billing:                  cs.Billing,
		Rates:                    cs.Rates,
		PayPeriod:                toPayPeriodDTO(cs.PayPeriod),
		StateTaxMonthlyThreshold: cs.StateTaxMonthlyThreshold,
	}
}

func toPayPeriodDTO(pc generic.PayPeriodConfig) PayPeriodDTO {
	dto := PayPeriodDTO{Type: string(pc.Type)}
	if !pc.Anchor.IsZero() {
		dto.Anchor = pc.Anchor.Format(generic.DateLayout)
	}
	return dto
}

func toPeriodDTO(p generic.Period) PeriodDTO {
	return PeriodDTO{Start: p.Start.Format(generic.DateLayout), End: p.End.Format(generic.DateLayout), Days: p.Days()}
}

func toProfileDTO(p generic.EmployeeProfile) ProfileDTO {
	return ProfileDTO{
		UserID:         string(p.UserID),
		FullName:       p.FullName,
		HourlyWage:     p.HourlyWage,
		TaxTable:       p.TaxTable,
		EmployeeNumber: p.EmployeeNumber,
	}
}

func toSummaryResponse(sum *export.Summary) SummaryResponse {
	resp := SummaryResponse{
		CompanyID:    string(sum.CompanyID),
		PeriodStart:  sum.Period.Start.Format(generic.DateLayout),
		PeriodEnd:    sum.Period.End.Format(generic.DateLayout),
		Employees:    make([]EmployeeSummaryDTO, 0, len(sum.Employees)),
		Projects:     make([]ProjectBillingDTO, 0, len(sum.Projects)),
		TotalHours:   sum.TotalHours,
		TaxableGross: sum.TaxableGross,
		TotalPayable: sum.TotalPayable,
		EntryErrors:  splitErrors(sum.EntryErrors),

		StateTaxThreshold: sum.StateTaxThreshold,
	}
	for _, e := range sum.Employees {
		hrs := e.Hours
		resp.Employees = append(resp.Employees, EmployeeSummaryDTO{
			UserID:         string(e.UserID),
			FullName:       e.FullName,
			EmployeeNumber: e.EmployeeNumber,
			ProfileMissing: e.ProfileMissing,
			Hours: HoursDTO{
				TotalHours:       hrs.TotalHours,
				Classified:       hrs.Classified,
				Adjusted:         hrs.Adjusted,
				OvertimeWeekday:  hrs.OvertimeWeekday,
				OvertimeWeekend:  hrs.OvertimeWeekend,
				TravelHours:      hrs.TravelHours,
				SavedTravelHours: hrs.SavedTravelHours,
				PerDiemFullDays:  hrs.PerDiemFullDays,
				PerDiemHalfDays:  hrs.PerDiemHalfDays,
				EntryCount:       hrs.EntryCount,
			},
			Compensation: e.Compensation,
			Tax:          e.Tax,
		})
	}
	for _, p := range sum.Projects {
		resp.Projects = append(resp.Projects, ProjectBillingDTO{ProjectID: string(p.ProjectID), Hours: p.Hours})
	}
	return resp
}

// splitErrors flattens an errors.Join result.
func splitErrors(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var issues *export.IssuesError
	switch {
	case errors.As(err, &issues):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   issues.Error(),
			Code:    string(issues.Result.State),
			Details: issues.Result,
		})
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsDataQuality(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Invalid time entries",
			Code:    "INVALID_ENTRIES",
			Details: splitErrors(err),
		})
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
