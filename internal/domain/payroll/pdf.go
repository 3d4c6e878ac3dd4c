package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF streams a PDF rendering of a payslip record. Amounts are printed
// with an NGN prefix because the naira glyph is not in the core PDF fonts.
func RenderPDF(w io.Writer, rec Record) error {
	amount := func(k Kobo) string {
		return fmt.Sprintf("NGN %d.%02d", int64(k)/100, int64(k)%100)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", rec.EmployeeName, rec.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", rec.Period))
	pdf.Ln(10)

	slip := rec.Slip
	rows := []struct {
		label string
		value Kobo
	}{
		{"Basic", slip.Basic},
		{"Housing allowance", slip.Housing},
		{"Transport allowance", slip.Transport},
		{"Other allowances", slip.Other},
		{"Gross", slip.Gross},
		{"Pension (employee)", slip.PensionEmployee},
		{"NHF", slip.NHF},
		{"PAYE tax", slip.PAYE},
		{"Total deductions", slip.TotalDeductions()},
	}
	for _, row := range rows {
		pdf.Cell(90, 7, row.label)
		pdf.CellFormat(60, 7, amount(row.value), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(90, 8, "Net pay")
	pdf.CellFormat(60, 8, amount(slip.Net), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Employer pension contribution: %s", amount(slip.PensionEmployer)))
	if slip.Prorated {
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Prorated for %d of %d days", slip.WorkedDays, slip.PeriodDays))
	}

	return pdf.Output(w)
}
