package payroll

import (
	"fmt"
	"strings"
)

// FormatPayslip renders a payslip record as WhatsApp-ready text. Lines are
// kept short; the transport layer never has to split inside one.
func FormatPayslip(rec Record) string {
	slip := rec.Slip
	thin := strings.Repeat("─", 25)
	thick := strings.Repeat("━", 25)

	var b strings.Builder
	fmt.Fprintf(&b, "\U0001f4c4 *PAYSLIP - %s*\n", rec.Period)
	fmt.Fprintf(&b, "*%s* (%s)\n\n", rec.EmployeeName, rec.EmployeeCode)

	b.WriteString("*EARNINGS*\n")
	fmt.Fprintf(&b, "Basic: %s\n", FormatNaira(slip.Basic))
	fmt.Fprintf(&b, "Housing: %s\n", FormatNaira(slip.Housing))
	fmt.Fprintf(&b, "Transport: %s\n", FormatNaira(slip.Transport))
	fmt.Fprintf(&b, "Other: %s\n", FormatNaira(slip.Other))
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "*Gross: %s*\n\n", FormatNaira(slip.Gross))

	b.WriteString("*DEDUCTIONS*\n")
	fmt.Fprintf(&b, "Pension: %s\n", FormatNaira(slip.PensionEmployee))
	fmt.Fprintf(&b, "NHF: %s\n", FormatNaira(slip.NHF))
	fmt.Fprintf(&b, "PAYE Tax: %s\n", FormatNaira(slip.PAYE))
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "*Total Deductions: %s*\n\n", FormatNaira(slip.TotalDeductions()))

	b.WriteString(thick + "\n")
	fmt.Fprintf(&b, "*NET PAY: %s*\n", FormatNaira(slip.Net))
	b.WriteString(thick)

	if slip.Prorated {
		fmt.Fprintf(&b, "\n_Prorated for %d/%d days_", slip.WorkedDays, slip.PeriodDays)
	}
	return b.String()
}
