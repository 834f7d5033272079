package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a complete payroll import file.
type Document struct {
	CompanyName string
	OrgNumber   string
	Period      generic.Period
	CreatedAt   time.Time
	Employees   []PayrollExportEmployee
}

// NewDocument assembles a document from a built batch.
func NewDocument(b *Batch, records []PayrollExportEmployee, createdAt time.Time) Document {
	return Document{
		CompanyName: b.Header.CompanyName,
		OrgNumber:   b.Header.OrgNumber,
		Period:      b.Period,
		CreatedAt:   createdAt,
		Employees:   records,
	}
}

// =============================================================================
// WIRE FORMAT
// =============================================================================
//
//   <paxml>
//     <header>
//       <format>LÖNIN</format>
//       <version>2.0</version>
//       <datum>2024-02-01T08:00:00Z</datum>
//       <foretagnamn>ACME Bygg AB</foretagnamn>
//       <foretagorgnr>556677-8899</foretagorgnr>
//       <periodstart>2024-01-01</periodstart>
//       <periodslut>2024-01-31</periodslut>
//     </header>
//     <anstallda>
//       <anstalld anstid="1001">
//         <namn>Anna Svensson</namn>
//         <lonetransaktioner>
//           <lonetrans><datum>2024-01-01</datum><lonart>11</lonart><timmar>120.50</timmar></lonetrans>
//           <lonetrans><datum>2024-01-01</datum><lonart>710</lonart><antal>3</antal></lonetrans>
//         </lonetransaktioner>
//       </anstalld>
//     </anstallda>
//   </paxml>

const (
	paxmlFormat  = "LÖNIN"
	paxmlVersion = "2.0"
)

type xmlDocument struct {
	XMLName   xml.Name      `xml:"paxml"`
	Header    xmlHeader     `xml:"header"`
	Employees []xmlEmployee `xml:"anstallda>anstalld"`
}

type xmlHeader struct {
	Format      string `xml:"format"`
	Version     string `xml:"version"`
	Created     string `xml:"datum"`
	CompanyName string `xml:"foretagnamn"`
	OrgNumber   string `xml:"foretagorgnr,omitempty"`
	PeriodStart string `xml:"periodstart"`
	PeriodEnd   string `xml:"periodslut"`
}

type xmlEmployee struct {
	Number string    `xml:"anstid,attr"`
	Name   string    `xml:"namn"`
	Lines  []xmlLine `xml:"lonetransaktioner>lonetrans"`
}

type xmlLine struct {
	Date     string  `xml:"datum"`
	PayType  string  `xml:"lonart"`
	Hours    *string `xml:"timmar,omitempty"`
	Quantity *string `xml:"antal,omitempty"`
}

// Marshal serializes the document. Hours are written with two decimals;
// quantities as whole numbers.
func Marshal(doc Document) ([]byte, error) {
	out := xmlDocument{
		Header: xmlHeader{
			Format:      paxmlFormat,
			Version:     paxmlVersion,
			Created:     doc.CreatedAt.UTC().Format(time.RFC3339),
			CompanyName: doc.CompanyName,
			OrgNumber:   doc.OrgNumber,
			PeriodStart: doc.Period.Start.Format(generic.DateLayout),
			PeriodEnd:   doc.Period.End.Format(generic.DateLayout),
		},
	}

	for _, e := range doc.Employees {
		xe := xmlEmployee{Number: e.EmployeeNumber, Name: e.FullName}
		for _, l := range e.Lines {
			xl := xmlLine{Date: l.Date, PayType: l.ExternalCode}
			switch l.Unit {
			case UnitQuantity:
				if !l.Value.IsInteger() {
					return nil, fmt.Errorf("quantity %s for %s is not a whole number", l.Value, l.ExternalCode)
				}
				v := l.Value.StringFixed(0)
				xl.Quantity = &v
			default:
				v := l.Value.StringFixed(generic.HourPrecision)
				xl.Hours = &v
			}
			xe.Lines = append(xe.Lines, xl)
		}
		out.Employees = append(out.Employees, xe)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode paxml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Parse reads a document written by Marshal.
func Parse(data []byte) (Document, error) {
	var in xmlDocument
	if err := xml.Unmarshal(data, &in); err != nil {
		return Document{}, fmt.Errorf("decode paxml: %w", err)
	}

	start, err := generic.ParseDate(in.Header.PeriodStart)
	if err != nil {
		return Document{}, fmt.Errorf("period start: %w", err)
	}
	end, err := generic.ParseDate(in.Header.PeriodEnd)
	if err != nil {
		return Document{}, fmt.Errorf("period end: %w", err)
	}
	period, err := generic.NewPeriod(start, end)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		CompanyName: in.Header.CompanyName,
		OrgNumber:   in.Header.OrgNumber,
		Period:      period,
	}
	if in.Header.Created != "" {
		created, err := time.Parse(time.RFC3339, in.Header.Created)
		if err != nil {
			return Document{}, fmt.Errorf("created: %w", err)
		}
		doc.CreatedAt = created
	}

	for _, xe := range in.Employees {
		e := PayrollExportEmployee{EmployeeNumber: xe.Number, FullName: xe.Name}
		for _, xl := range xe.Lines {
			l := Line{Date: xl.Date, ExternalCode: xl.PayType}
			switch {
			case xl.Quantity != nil:
				l.Unit = UnitQuantity
				l.Value, err = decimal.NewFromString(*xl.Quantity)
			case xl.Hours != nil:
				l.Unit = UnitHours
				l.Value, err = decimal.NewFromString(*xl.Hours)
			default:
				err = fmt.Errorf("line %s has neither hours nor quantity", xl.PayType)
			}
			if err != nil {
				return Document{}, fmt.Errorf("employee %s: %w", xe.Number, err)
			}
			e.Lines = append(e.Lines, l)
		}
		doc.Employees = append(doc.Employees, e)
	}
	return doc, nil
}
