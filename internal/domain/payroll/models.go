package payroll

import "time"

// SalaryStructure is an employee's monthly salary split, in kobo.
type SalaryStructure struct {
	Basic     Kobo `json:"basic"`
	Housing   Kobo `json:"housing"`
	Transport Kobo `json:"transport"`
	Other     Kobo `json:"other"`
}

func (s SalaryStructure) Gross() Kobo {
	return s.Basic + s.Housing + s.Transport + s.Other
}

// Payslip is the computed snapshot for one employee and one pay period. It is
// never mutated after Compute returns it; re-running payroll produces a new
// snapshot.
type Payslip struct {
	Basic     Kobo `json:"basic"`
	Housing   Kobo `json:"housing"`
	Transport Kobo `json:"transport"`
	Other     Kobo `json:"other"`

	Gross           Kobo `json:"gross"`
	PensionEmployee Kobo `json:"pensionEmployee"`
	PensionEmployer Kobo `json:"pensionEmployer"`
	NHF             Kobo `json:"nhf"`
	Relief          Kobo `json:"relief"`
	TaxableIncome   Kobo `json:"taxableIncome"`
	PAYE            Kobo `json:"paye"`
	Net             Kobo `json:"net"`

	PeriodDays int  `json:"periodDays"`
	WorkedDays int  `json:"workedDays"`
	Prorated   bool `json:"prorated"`
}

func (p Payslip) TotalDeductions() Kobo {
	return p.PensionEmployee + p.NHF + p.PAYE
}

// Run is one payroll execution for a tenant.
type Run struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Period    string    `json:"period"`
	RunBy     string    `json:"runBy"`
	TotalNet  Kobo      `json:"totalNet"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is a persisted payslip snapshot tied to an employee and a run.
type Record struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	RunID        string    `json:"runId"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeCode string    `json:"employeeCode"`
	EmployeeName string    `json:"employeeName"`
	Period       string    `json:"period"`
	Slip         Payslip   `json:"slip"`
	CreatedAt    time.Time `json:"createdAt"`
}
