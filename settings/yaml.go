package settings

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/billing"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML SCHEMA
// =============================================================================
//
//   companies:
//     - company_id: acme
//       company_name: ACME Bygg AB
//       org_number: 556677-8899
//       shifts:
//         - {shift_type: day, start_hour: 7, end_hour: 18, multiplier: 1}
//         - {shift_type: evening, start_hour: 18, end_hour: 22, multiplier: 1.25}
//         - {shift_type: night, start_hour: 22, end_hour: 7, multiplier: 1.4}
//         - {shift_type: weekend, start_hour: 18, end_hour: 7, multiplier: 1.7}
//         - {shift_type: overtime_day, multiplier: 1.64}
//         - {shift_type: overtime_weekend, multiplier: 2.24}
//       billing:
//         day: {start_hour: 6, end_hour: 18, multiplier: 1}
//         night: {start_hour: 18, end_hour: 6, multiplier: 1.5}
//         weekend: {start_hour: 18, end_hour: 6, multiplier: 2}
//       rates:
//         flat_travel_rate: 150
//         per_diem_full_rate: 290
//         per_diem_half_rate: 145
//       pay_period:
//         type: biweekly
//         anchor: 2024-01-01
//       tax:
//         state_tax_monthly_threshold: 51158
//
// JSON is accepted too, since YAML is a superset. Omitted sections keep the
// defaults from Default(). A weekend row without start_hour and end_hour, or a
// shifts list without a weekend row, runs the weekend from Friday at the evening
// start to Monday at the day start.

// Document is the top-level settings file.
type Document struct {
	Companies []CompanyYAML `yaml:"companies"`
}

type CompanyYAML struct {
	CompanyID   string       `yaml:"company_id"`
	CompanyName string       `yaml:"company_name"`
	OrgNumber   string       `yaml:"org_number,omitempty"`
	Shifts      []ShiftYAML  `yaml:"shifts,omitempty"`
	Billing     *BillingYAML `yaml:"billing,omitempty"`
	Rates       *RatesYAML   `yaml:"rates,omitempty"`
	PayPeriod   *PeriodYAML  `yaml:"pay_period,omitempty"`
	Tax         *TaxYAML     `yaml:"tax,omitempty"`
}

type ShiftYAML struct {
	ShiftType  string  `yaml:"shift_type"`
	StartHour  *int    `yaml:"start_hour,omitempty"`
	EndHour    *int    `yaml:"end_hour,omitempty"`
	Multiplier float64 `yaml:"multiplier"`
}

type RateYAML struct {
	StartHour  int     `yaml:"start_hour"`
	EndHour    int     `yaml:"end_hour"`
	Multiplier float64 `yaml:"multiplier"`
}

type BillingYAML struct {
	Day     RateYAML `yaml:"day"`
	Night   RateYAML `yaml:"night"`
	Weekend RateYAML `yaml:"weekend"`
}

type RatesYAML struct {
	FlatTravelRate  *float64 `yaml:"flat_travel_rate,omitempty"`
	PerDiemFullRate *float64 `yaml:"per_diem_full_rate,omitempty"`
	PerDiemHalfRate *float64 `yaml:"per_diem_half_rate,omitempty"`
}

type PeriodYAML struct {
	Type   string `yaml:"type"`
	Anchor string `yaml:"anchor,omitempty"`
}

type TaxYAML struct {
	StateTaxMonthlyThreshold *float64 `yaml:"state_tax_monthly_threshold,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a settings file holding one or more companies.
func Parse(data []byte) ([]CompanySettings, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid settings document: %w", err)
	}
	if len(doc.Companies) == 0 {
		// Single-company documents without the companies wrapper.
		var single CompanyYAML
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("invalid settings document: %w", err)
		}
		if single.CompanyID == "" {
			return nil, &generic.ConfigError{Field: "companies", Message: "no company defined"}
		}
		doc.Companies = []CompanyYAML{single}
	}

	out := make([]CompanySettings, 0, len(doc.Companies))
	for _, c := range doc.Companies {
		s, err := c.toSettings()
		if err != nil {
			return nil, fmt.Errorf("company %q: %w", c.CompanyID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseOne reads a document that must describe exactly one company.
func ParseOne(data []byte) (CompanySettings, error) {
	all, err := Parse(data)
	if err != nil {
		return CompanySettings{}, err
	}
	if len(all) != 1 {
		return CompanySettings{}, &generic.ConfigError{Field: "companies", Message: fmt.Sprintf("expected one company, got %d", len(all))}
	}
	return all[0], nil
}

func (c CompanyYAML) toSettings() (CompanySettings, error) {
	s := Default(generic.CompanyID(c.CompanyID), c.CompanyName)
	s.OrgNumber = c.OrgNumber

	if len(c.Shifts) > 0 {
		rows := make([]payroll.ShiftRule, len(c.Shifts))
		weekendHours := false
		for i, r := range c.Shifts {
			rows[i] = payroll.ShiftRule{
				Type:       payroll.ShiftType(r.ShiftType),
				StartHour:  intValue(r.StartHour),
				EndHour:    intValue(r.EndHour),
				Multiplier: decimal.NewFromFloat(r.Multiplier),
			}
			if rows[i].Type == payroll.ShiftWeekend && (r.StartHour != nil || r.EndHour != nil) {
				weekendHours = true
			}
		}
		cfg, err := payroll.ShiftConfigFromRows(rows)
		if err != nil {
			return CompanySettings{}, err
		}
		if !weekendHours {
			cfg = cfg.WithScheduleWeekend()
		}
		s.Shifts = cfg
	}

	if c.Billing != nil {
		s.Billing = billing.Config{
			Day:     c.Billing.Day.toRate(),
			Night:   c.Billing.Night.toRate(),
			Weekend: c.Billing.Weekend.toRate(),
		}
	}

	if c.Rates != nil {
		setDecimal(&s.Rates.FlatTravelRate, c.Rates.FlatTravelRate)
		setDecimal(&s.Rates.PerDiemFullRate, c.Rates.PerDiemFullRate)
		setDecimal(&s.Rates.PerDiemHalfRate, c.Rates.PerDiemHalfRate)
	}

	if c.PayPeriod != nil {
		s.PayPeriod = generic.PayPeriodConfig{Type: generic.PayPeriodType(c.PayPeriod.Type)}
		if c.PayPeriod.Anchor != "" {
			anchor, err := generic.ParseDate(c.PayPeriod.Anchor)
			if err != nil {
				return CompanySettings{}, &generic.ConfigError{Field: "pay_period.anchor", Message: err.Error()}
			}
			s.PayPeriod.Anchor = anchor
		}
	}

	if c.Tax != nil {
		setDecimal(&s.StateTaxMonthlyThreshold, c.Tax.StateTaxMonthlyThreshold)
	}

	return s, s.Validate()
}

func (r RateYAML) toRate() billing.Rate {
	return billing.Rate{StartHour: r.StartHour, EndHour: r.EndHour, Multiplier: decimal.NewFromFloat(r.Multiplier)}
}

func setDecimal(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}

// =============================================================================
// MARSHALING
// =============================================================================

// Marshal writes one company as a settings document. Parse(Marshal(s))
// yields s again.
func Marshal(s CompanySettings) ([]byte, error) {
	c := CompanyYAML{
		CompanyID:   string(s.CompanyID),
		CompanyName: s.CompanyName,
		OrgNumber:   s.OrgNumber,
		Billing: &BillingYAML{
			Day:     fromRate(s.Billing.Day),
			Night:   fromRate(s.Billing.Night),
			Weekend: fromRate(s.Billing.Weekend),
		},
		Rates: &RatesYAML{
			FlatTravelRate:  floatPtr(s.Rates.FlatTravelRate),
			PerDiemFullRate: floatPtr(s.Rates.PerDiemFullRate),
			PerDiemHalfRate: floatPtr(s.Rates.PerDiemHalfRate),
		},
		PayPeriod: &PeriodYAML{Type: string(s.PayPeriod.Type)},
		Tax:       &TaxYAML{StateTaxMonthlyThreshold: floatPtr(s.StateTaxMonthlyThreshold)},
	}
	if !s.PayPeriod.Anchor.IsZero() {
		c.PayPeriod.Anchor = s.PayPeriod.Anchor.Format(generic.DateLayout)
	}
	for _, r := range s.Shifts.Rows() {
		row := ShiftYAML{ShiftType: string(r.Type), Multiplier: r.Multiplier.InexactFloat64()}
		if r.Type != payroll.ShiftOvertimeDay && r.Type != payroll.ShiftOvertimeWeekend {
			row.StartHour, row.EndHour = intPtr(r.StartHour), intPtr(r.EndHour)
		}
		c.Shifts = append(c.Shifts, row)
	}
	return yaml.Marshal(Document{Companies: []CompanyYAML{c}})
}

func fromRate(r billing.Rate) RateYAML {
	return RateYAML{StartHour: r.StartHour, EndHour: r.EndHour, Multiplier: r.Multiplier.InexactFloat64()}
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func intPtr(v int) *int { return &v }

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
