// Package reports renders downloadable workbooks from cached summary data.
package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"packtrack.app/packtrack/utils"
)

const salarySheet = "Зарплата"

// SalaryRow is one day's line in a salary report.
type SalaryRow struct {
	Date     string
	Quantity float64
	Hours    float64
	Pay      float64
}

// SalaryReport is the input for the salary workbook: one employee over a
// span of days, plus the base salary when known.
type SalaryReport struct {
	Employee string
	PayType  string
	Salary   string
	Rows     []SalaryRow
}

// Workbook renders the report as an xlsx file. The caller owns closing it.
func (r SalaryReport) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(salarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	cells := [][]interface{}{
		{"Сотрудник", r.Employee},
		{"Тип оплаты", r.PayType},
	}
	if r.Salary != "" {
		cells = append(cells, []interface{}{"Оклад", r.Salary})
	}
	row := 1
	for _, line := range cells {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(salarySheet, cell, &line); err != nil {
			return nil, err
		}
		row++
	}
	row++

	titleCell, _ := excelize.CoordinatesToCellName(1, row)
	titles := []interface{}{"Дата", "Количество", "Часы", "Оплата"}
	if err := f.SetSheetRow(salarySheet, titleCell, &titles); err != nil {
		return nil, err
	}
	endCell, _ := excelize.CoordinatesToCellName(len(titles), row)
	if err := f.SetCellStyle(salarySheet, titleCell, endCell, header); err != nil {
		return nil, err
	}
	row++

	var totalQuantity, totalHours, totalPay float64
	for _, line := range r.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{utils.FormatDisplayDate(line.Date), line.Quantity, line.Hours, line.Pay}
		if err := f.SetSheetRow(salarySheet, cell, &values); err != nil {
			return nil, err
		}
		totalQuantity += line.Quantity
		totalHours += line.Hours
		totalPay += line.Pay
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []interface{}{"Итого", totalQuantity, totalHours, totalPay}
	if err := f.SetSheetRow(salarySheet, totalCell, &totals); err != nil {
		return nil, err
	}
	totalEnd, _ := excelize.CoordinatesToCellName(len(totals), row)
	if err := f.SetCellStyle(salarySheet, totalCell, totalEnd, header); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(salarySheet, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(salarySheet, "B", "D", 12); err != nil {
		return nil, err
	}
	return f, nil
}

// Filename returns the suggested attachment name.
func (r SalaryReport) Filename() string {
	return fmt.Sprintf("salary_%s.xlsx", r.Employee)
}
