package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetEmployees = "Employees"
	SheetProjects  = "Projects"
)

var employeeColumns = []string{
	"User", "Name", "Employee number", "Total hours",
	"Day", "Evening", "Night", "Weekend",
	"Overtime weekday", "Overtime weekend", "Travel", "Saved travel",
	"Per-diem full", "Per-diem half",
	"Base pay", "OB pay", "Overtime pay", "Travel pay", "Per-diem pay",
	"Taxable gross", "Municipal tax", "State tax", "Net salary",
}

var projectColumns = []string{"Project", "Day", "Night", "Weekend", "Total"}

// WriteSummaryWorkbook renders the review summary as an .xlsx file with one
// sheet per employee totals and one for billing hours per project.
func WriteSummaryWorkbook(sum *Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEmployees); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetProjects); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, SheetEmployees, 1, toCells(employeeColumns)); err != nil {
		return nil, err
	}
	for i, e := range sum.Employees {
		h, c, t := e.Hours, e.Compensation, e.Tax
		row := []interface{}{
			string(e.UserID), e.FullName, e.EmployeeNumber, num(h.TotalHours),
			num(h.Adjusted.Day), num(h.Adjusted.Evening), num(h.Adjusted.Night), num(h.Adjusted.Weekend),
			num(h.OvertimeWeekday), num(h.OvertimeWeekend), num(h.TravelHours), num(h.SavedTravelHours),
			h.PerDiemFullDays, h.PerDiemHalfDays,
			num(c.BasePay), num(c.OBTotal), num(c.OvertimeWeekdayPay.Add(c.OvertimeWeekendPay)), num(c.TravelPay), num(c.PerDiemPay),
			num(c.TaxableGross), num(t.MunicipalTax), num(t.StateTax), num(t.NetSalary),
		}
		if err := writeRow(f, SheetEmployees, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, SheetProjects, 1, toCells(projectColumns)); err != nil {
		return nil, err
	}
	for i, p := range sum.Projects {
		row := []interface{}{string(p.ProjectID), num(p.Hours.Day), num(p.Hours.Night), num(p.Hours.Weekend), num(p.Hours.Total())}
		if err := writeRow(f, SheetProjects, i+2, row); err != nil {
			return nil, err
		}
	}

	for sheet, cols := range map[string]int{SheetEmployees: len(employeeColumns), SheetProjects: len(projectColumns)} {
		last, err := excelize.ColumnNumberToName(cols)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

// num keeps two decimals in the sheet.
func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
