package export

import (
	"github.com/warp/payroll-engine/generic"
)

// SalaryCode identifies an internal compensation category.
type SalaryCode string

const (
	CodeWork            SalaryCode = "ARBETE"
	CodeOvertimeWeekday SalaryCode = "OVERTID_VARDAG"
	CodeOvertimeWeekend SalaryCode = "OVERTID_HELG"
	CodeOBEvening       SalaryCode = "OB_KVALL"
	CodeOBNight         SalaryCode = "OB_NATT"
	CodeOBWeekend       SalaryCode = "OB_HELG"
	CodeTravel          SalaryCode = "RESTID"
	CodePerDiemFull     SalaryCode = "TRAKTAMENTE_HEL"
	CodePerDiemHalf     SalaryCode = "TRAKTAMENTE_HALV"
)

// Unit tells whether a code carries hours or a count.
type Unit string

const (
	UnitHours    Unit = "hours"
	UnitQuantity Unit = "quantity"
)

// CodeDefinition is one row of the salary-code catalog. SuggestedExternal
// is shown to admins as a hint and never used without an explicit mapping.
type CodeDefinition struct {
	Code              SalaryCode `json:"code"`
	Label             string     `json:"label"`
	SuggestedExternal string     `json:"suggested_external_code"`
	Unit              Unit       `json:"unit"`
}

// Catalog is an ordered set of code definitions. Export lines follow its order.
type Catalog []CodeDefinition

// DefaultCatalog returns the built-in codes.
func DefaultCatalog() Catalog {
	return Catalog{
		{Code: CodeWork, Label: "Arbetad tid", SuggestedExternal: "11", Unit: UnitHours},
		{Code: CodeOvertimeWeekday, Label: "Övertid vardag", SuggestedExternal: "310", Unit: UnitHours},
		{Code: CodeOvertimeWeekend, Label: "Övertid helg", SuggestedExternal: "320", Unit: UnitHours},
		{Code: CodeOBEvening, Label: "OB kväll", SuggestedExternal: "410", Unit: UnitHours},
		{Code: CodeOBNight, Label: "OB natt", SuggestedExternal: "420", Unit: UnitHours},
		{Code: CodeOBWeekend, Label: "OB helg", SuggestedExternal: "430", Unit: UnitHours},
		{Code: CodeTravel, Label: "Restid", SuggestedExternal: "510", Unit: UnitHours},
		{Code: CodePerDiemFull, Label: "Traktamente heldag", SuggestedExternal: "710", Unit: UnitQuantity},
		{Code: CodePerDiemHalf, Label: "Traktamente halvdag", SuggestedExternal: "720", Unit: UnitQuantity},
	}
}

// Lookup returns the definition for code.
func (c Catalog) Lookup(code SalaryCode) (CodeDefinition, bool) {
	for _, d := range c {
		if d.Code == code {
			return d, true
		}
	}
	return CodeDefinition{}, false
}

func (c Catalog) index(code SalaryCode) int {
	for i, d := range c {
		if d.Code == code {
			return i
		}
	}
	return len(c)
}

// MappingTable resolves salary codes to a company's external codes.
type MappingTable map[SalaryCode]string

// NewMappingTable ignores mappings with an empty external code.
func NewMappingTable(mappings []generic.CompanyMapping) MappingTable {
	t := make(MappingTable, len(mappings))
	for _, m := range mappings {
		if m.ExternalCode == "" {
			continue
		}
		t[SalaryCode(m.SalaryCode)] = m.ExternalCode
	}
	return t
}
