/*
Package settings holds the per-company configuration bundle.

PURPOSE:
  Every engine entry point receives a CompanySettings value instead of
  fetching configuration itself. The bundle carries the payroll OB schedule,
  the billing schedule, flat rates, the pay cycle and the state-tax threshold, plus the
  company header data the payroll export needs.

SOURCES:
  - YAML/JSON files (yaml.go) for seeding and admin uploads
  - The SQLite store, which persists the same YAML document per company

SEE ALSO:
  - yaml.go: Document schema and parsing
  - payroll/types.go: ShiftConfig
  - billing/classifier.go: Config
*/
package settings

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/billing"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

// CompanySettings is read-only to the engine.
type CompanySettings struct {
	CompanyID   generic.CompanyID
	CompanyName string
	// OrgNumber is optional in the export header.
	OrgNumber string

	Shifts  payroll.ShiftConfig
	Billing billing.Config
	Rates   compensation.Rates

	PayPeriod generic.PayPeriodConfig

	StateTaxMonthlyThreshold decimal.Decimal
}

// Default returns the seeded configuration for a new company.
func Default(companyID generic.CompanyID, name string) CompanySettings {
	return CompanySettings{
		CompanyID:                companyID,
		CompanyName:              name,
		Shifts:                   payroll.DefaultShiftConfig(),
		Billing:                  billing.DefaultConfig(),
		Rates:                    compensation.DefaultRates(),
		PayPeriod:                generic.DefaultPayPeriod(),
		StateTaxMonthlyThreshold: tax.DefaultMonthlyThreshold,
	}
}

// Validate checks every part of the bundle.
func (s CompanySettings) Validate() error {
	if s.CompanyID == "" {
		return &generic.ConfigError{Field: "company_id", Message: "is required"}
	}
	if s.CompanyName == "" {
		return &generic.ConfigError{Field: "company_name", Message: "is required"}
	}
	if err := s.Shifts.Validate(); err != nil {
		return err
	}
	if err := s.Billing.Validate(); err != nil {
		return err
	}
	if err := s.Rates.Validate(); err != nil {
		return err
	}
	if err := s.PayPeriod.Validate(); err != nil {
		return err
	}
	if s.StateTaxMonthlyThreshold.IsNegative() {
		return &generic.ConfigError{Field: "state_tax_monthly_threshold", Message: "must not be negative"}
	}
	return nil
}

// PayrollClassifier builds the OB classifier for this company.
func (s CompanySettings) PayrollClassifier() (*payroll.Classifier, error) {
	return payroll.NewClassifier(s.Shifts)
}

// BillingClassifier builds the invoice classifier for this company.
func (s CompanySettings) BillingClassifier() (*billing.Classifier, error) {
	return billing.NewClassifier(s.Billing)
}

// =============================================================================
// STORE
// =============================================================================

// Store persists settings bundles. GetSettings returns
// generic.ErrCompanyNotFound for unknown companies.
type Store interface {
	GetSettings(ctx context.Context, companyID generic.CompanyID) (CompanySettings, error)
	SaveSettings(ctx context.Context, s CompanySettings) error
}
