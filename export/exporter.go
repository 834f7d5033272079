package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/settings"
)

// =============================================================================
// EXPORTER - Store-backed orchestration around the pure pipeline
// =============================================================================

// Stores groups the collaborators the exporter reads from and writes to.
type Stores struct {
	Entries  generic.EntryStore
	Profiles generic.ProfileStore
	Mappings generic.MappingStore
	Logs     generic.ExportLogStore
	Settings settings.Store
}

// Exporter loads period data, runs the pipeline and records export logs.
// All I/O happens before or after the computation.
type Exporter struct {
	stores  Stores
	catalog Catalog
	logger  *logrus.Logger
	now     func() time.Time
}

type Option func(*Exporter)

// WithCatalog replaces the default salary-code catalog.
func WithCatalog(c Catalog) Option { return func(x *Exporter) { x.catalog = c } }

// WithClock is used by tests to pin timestamps.
func WithClock(now func() time.Time) Option { return func(x *Exporter) { x.now = now } }

func NewExporter(stores Stores, logger *logrus.Logger, opts ...Option) *Exporter {
	x := &Exporter{
		stores:  stores,
		catalog: DefaultCatalog(),
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(x)
	}
	if x.logger == nil {
		x.logger = logrus.New()
	}
	return x
}

func (x *Exporter) Catalog() Catalog { return x.catalog }

// Request selects what to export. Empty UserIDs means every employee with
// attested entries in the period.
type Request struct {
	CompanyID generic.CompanyID
	Period    generic.Period
	UserIDs   []generic.UserID
	Actor     string
}

// periodData is everything loaded for one request.
type periodData struct {
	settings    settings.CompanySettings
	entries     []generic.TimeEntry
	profiles    []generic.EmployeeProfile
	hours       map[generic.UserID]*compensation.PeriodHours
	entryErrors error
}

func (x *Exporter) load(ctx context.Context, req Request) (*periodData, error) {
	cs, err := x.stores.Settings.GetSettings(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	entries, err := x.stores.Entries.ListAttestedEntries(ctx, req.CompanyID, req.Period, req.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	profiles, err := x.stores.Profiles.ListProfiles(ctx, req.CompanyID, req.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	classifier, err := cs.PayrollClassifier()
	if err != nil {
		return nil, err
	}
	hours, entryErrs := compensation.Aggregate(entries, classifier)

	return &periodData{
		settings:    cs,
		entries:     entries,
		profiles:    profiles,
		hours:       hours,
		entryErrors: entryErrs,
	}, nil
}

// Summary builds the review view. Invalid entries are reported in
// Summary.EntryErrors instead of failing the call.
func (x *Exporter) Summary(ctx context.Context, req Request) (*Summary, error) {
	data, err := x.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return Summarize(data.settings, req.Period, data.entries, data.profiles, data.hours, data.entryErrors)
}

// Prepare collects and validates a batch. The batch is returned even when
// blocked so callers can inspect the issues.
func (x *Exporter) Prepare(ctx context.Context, req Request) (*Batch, error) {
	data, err := x.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if data.entryErrors != nil {
		return nil, data.entryErrors
	}
	return x.prepare(ctx, req, data)
}

func (x *Exporter) prepare(ctx context.Context, req Request, data *periodData) (*Batch, error) {
	header := Header{
		CompanyID:   data.settings.CompanyID,
		CompanyName: data.settings.CompanyName,
		OrgNumber:   data.settings.OrgNumber,
	}
	batch := NewBatch(header, req.Period, x.catalog)
	if err := batch.Collect(data.hours, data.profiles, req.UserIDs); err != nil {
		return nil, err
	}

	mappings, err := x.stores.Mappings.ListMappings(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	if _, err := batch.Validate(NewMappingTable(mappings)); err != nil {
		return nil, err
	}
	return batch, nil
}

// Result is a produced export file.
type Result struct {
	Filename string
	Content  []byte
	Document Document
	Log      generic.ExportLog
	// Warning is set when the file is valid but the export log could not
	// be written.
	Warning error
}

// Export runs the full pipeline. It fails closed on invalid entries and on
// validation issues (*IssuesError), and fails open on the export log.
func (x *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	log := x.logger.WithFields(logrus.Fields{
		"company_id": req.CompanyID,
		"period":     req.Period.String(),
		"actor":      req.Actor,
	})

	data, err := x.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if data.entryErrors != nil {
		log.WithError(data.entryErrors).Info("export rejected: invalid time entries")
		return nil, data.entryErrors
	}

	batch, err := x.prepare(ctx, req, data)
	if err != nil {
		return nil, err
	}
	if res := batch.Result(); !res.Ready() {
		log.WithField("state", res.State).Info("export blocked")
		return nil, &IssuesError{Result: res}
	}

	records, err := batch.Build()
	if err != nil {
		return nil, err
	}

	now := x.now().UTC()
	doc := NewDocument(batch, records, now)
	content, err := Marshal(doc)
	if err != nil {
		return nil, err
	}

	entry := generic.ExportLog{
		ID:            uuid.NewString(),
		CompanyID:     req.CompanyID,
		PeriodStart:   req.Period.Start,
		PeriodEnd:     req.Period.End,
		EmployeeCount: len(records),
		EntryCount:    LineCount(records),
		Filename:      Filename(data.settings.CompanyName, req.Period, now),
		CreatedBy:     req.Actor,
		CreatedAt:     now,
	}

	res := &Result{Filename: entry.Filename, Content: content, Document: doc, Log: entry}
	if err := x.stores.Logs.AppendExportLog(ctx, entry); err != nil {
		log.WithError(err).WithField("filename", entry.Filename).Warn("export log write failed")
		res.Warning = fmt.Errorf("export log not written: %w", err)
	} else {
		log.WithFields(logrus.Fields{
			"filename":  entry.Filename,
			"employees": entry.EmployeeCount,
			"lines":     entry.EntryCount,
		}).Info("payroll export created")
	}
	return res, nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// Filename names an export file. The timestamp keeps reruns apart.
func Filename(companyName string, period generic.Period, at time.Time) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(companyName), "-"), "-")
	if slug == "" {
		slug = "company"
	}
	return fmt.Sprintf("paxml_%s_%s_%s_%s.xml",
		slug,
		period.Start.Format("20060102"),
		period.End.Format("20060102"),
		at.UTC().Format("20060102T150405"),
	)
}
