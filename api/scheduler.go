/*
scheduler.go - Automated export readiness checks

PURPOSE:
  Periodically validates the last closed pay period of every company so
  that missing salary-code mappings and employee numbers surface before
  someone tries to export.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Resolves each company's last closed period from its pay cycle
  - Skips periods that already have an export log
  - Keeps the latest result per company in memory for the readiness endpoint

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReadinessScheduler(store, exporter, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ValidateExport endpoint (manual validation)
  - export/validate.go: Blocked states
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/store/sqlite"
)

// Readiness is the outcome of one scheduled check.
type Readiness struct {
	CompanyID generic.CompanyID
	Period    generic.Period
	// State is the validation state, or EXPORTED when a log already exists.
	State     export.State
	Result    export.ValidationResult
	Err       error
	CheckedAt time.Time
}

// ReadinessScheduler validates closed pay periods in the background.
type ReadinessScheduler struct {
	Store         *sqlite.Store
	Exporter      *export.Exporter
	Logger        *logrus.Logger
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	resultsMu sync.RWMutex
	results   map[generic.CompanyID]Readiness
}

// NewReadinessScheduler creates a new scheduler.
func NewReadinessScheduler(store *sqlite.Store, exporter *export.Exporter, logger *logrus.Logger) *ReadinessScheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReadinessScheduler{
		Store:         store,
		Exporter:      exporter,
		Logger:        logger,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           func() time.Time { return time.Now().UTC() },
		results:       make(map[generic.CompanyID]Readiness),
	}
}

// Start begins the scheduler.
func (rs *ReadinessScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("readiness scheduler disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run()

	rs.Logger.WithField("interval", rs.CheckInterval).Info("readiness scheduler started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (rs *ReadinessScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Logger.Info("readiness scheduler stopped")
	}
}

func (rs *ReadinessScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAll(context.Background())

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAll(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// RunNow triggers an immediate check of every company.
func (rs *ReadinessScheduler) RunNow(ctx context.Context) {
	rs.checkAll(ctx)
}

func (rs *ReadinessScheduler) checkAll(ctx context.Context) {
	companies, err := rs.Store.ListCompanies(ctx)
	if err != nil {
		rs.Logger.WithError(err).Error("readiness: listing companies failed")
		return
	}

	blocked := 0
	for _, c := range companies {
		res := rs.check(ctx, c.ID)
		rs.resultsMu.Lock()
		rs.results[c.ID] = res
		rs.resultsMu.Unlock()

		entry := rs.Logger.WithFields(logrus.Fields{
			"company_id": c.ID,
			"period":     res.Period.String(),
			"state":      res.State,
		})
		switch {
		case res.Err != nil:
			entry.WithError(res.Err).Warn("readiness check failed")
		case res.State == export.StateBlockedOnMapping || res.State == export.StateBlockedOnEmployeeNumber:
			blocked++
			entry.Warn("closed pay period is blocked for export")
		default:
			entry.Debug("readiness checked")
		}
	}
	rs.Logger.WithFields(logrus.Fields{"companies": len(companies), "blocked": blocked}).Info("readiness check completed")
}

func (rs *ReadinessScheduler) check(ctx context.Context, cid generic.CompanyID) Readiness {
	res := Readiness{CompanyID: cid, CheckedAt: rs.Now()}

	cs, err := rs.Store.GetSettings(ctx, cid)
	if err != nil {
		res.Err = err
		return res
	}
	res.Period = cs.PayPeriod.LastClosed(res.CheckedAt)

	done, err := rs.alreadyExported(ctx, cid, res.Period)
	if err != nil {
		res.Err = err
		return res
	}
	if done {
		res.State = export.StateExported
		return res
	}

	batch, err := rs.Exporter.Prepare(ctx, export.Request{CompanyID: cid, Period: res.Period})
	if err != nil {
		res.Err = err
		return res
	}
	res.Result = batch.Result()
	res.State = res.Result.State
	return res
}

func (rs *ReadinessScheduler) alreadyExported(ctx context.Context, cid generic.CompanyID, p generic.Period) (bool, error) {
	logs, err := rs.Store.ListExportLogs(ctx, cid, 0)
	if err != nil {
		return false, err
	}
	for _, l := range logs {
		if l.PeriodStart.Equal(p.Start) && l.PeriodEnd.Equal(p.End) {
			return true, nil
		}
	}
	return false, nil
}

// Latest returns the last result for a company.
func (rs *ReadinessScheduler) Latest(cid generic.CompanyID) (Readiness, bool) {
	rs.resultsMu.RLock()
	defer rs.resultsMu.RUnlock()
	r, ok := rs.results[cid]
	return r, ok
}

// GetReadiness serves the scheduler's latest result. Without a scheduler, or
// before its first run, the company is checked on demand.
func (h *Handler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	if !h.requireCompany(w, r, cid) {
		return
	}
	sched := h.Scheduler
	if sched == nil {
		sched = NewReadinessScheduler(h.Store, h.Exporter, h.Logger)
	}
	res, ok := sched.Latest(cid)
	if !ok {
		res = sched.check(r.Context(), cid)
	}

	dto := ReadinessDTO{
		CompanyID:   string(cid),
		PeriodStart: res.Period.Start.Format(generic.DateLayout),
		PeriodEnd:   res.Period.End.Format(generic.DateLayout),
		State:       string(res.State),
		CheckedAt:   res.CheckedAt.Format(time.RFC3339),
	}
	for _, c := range res.Result.MissingMappings {
		dto.MissingMappings = append(dto.MissingMappings, string(c))
	}
	for _, m := range res.Result.MissingEmployeeNumbers {
		dto.MissingNumbers = append(dto.MissingNumbers, string(m.UserID))
	}
	if res.Err != nil {
		dto.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, dto)
}
