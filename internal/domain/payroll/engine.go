package payroll

// Compute turns a salary structure and a pay period into a payslip snapshot
// under cfg. It is a pure function: no I/O, no mutation of its inputs, and
// identical inputs always produce identical output.
//
// The pipeline, all in integer kobo with half-up rounding on every rate
// multiplication:
//
//	gross          = proratio * (basic + housing + transport + other)
//	pensionBase    = proratio * (basic + housing + transport)
//	pension        = pensionBase * employeeRate (employer share analogous)
//	nhf            = proratio * basic * nhfRate
//	relief         = min(reliefRate * gross, reliefCapAnnual * proratio)
//	taxable        = max(0, gross - pension - nhf - relief)
//	paye           = progressive bracket walk over taxable
//	net            = gross - pension - nhf - paye
func Compute(structure SalaryStructure, periodDays, workedDays int, cfg StatutoryConfig) (Payslip, error) {
	if structure.Basic < 0 || structure.Housing < 0 || structure.Transport < 0 || structure.Other < 0 {
		return Payslip{}, ErrNegativeComponent
	}
	if periodDays <= 0 || workedDays < 0 {
		return Payslip{}, ErrInvalidPeriod
	}
	if workedDays > periodDays {
		return Payslip{}, ErrWorkedExceedsDays
	}
	if err := cfg.validate(); err != nil {
		return Payslip{}, err
	}

	basic := prorate(structure.Basic, workedDays, periodDays)
	housing := prorate(structure.Housing, workedDays, periodDays)
	transport := prorate(structure.Transport, workedDays, periodDays)
	other := prorate(structure.Other, workedDays, periodDays)

	gross := prorate(structure.Gross(), workedDays, periodDays)
	pensionBase := prorate(structure.Basic+structure.Housing+structure.Transport, workedDays, periodDays)

	pensionEmployee := applyRate(pensionBase, cfg.PensionEmployeeBp)
	pensionEmployer := applyRate(pensionBase, cfg.PensionEmployerBp)

	nhf := Kobo(0)
	if basic >= cfg.NHFMinBasic {
		nhf = applyRate(basic, cfg.NHFBp)
	}

	relief := applyRate(gross, cfg.ReliefBp)
	if cap := prorate(cfg.ReliefCapAnnual, workedDays, periodDays); relief > cap {
		relief = cap
	}

	taxable := gross - pensionEmployee - nhf - relief
	if taxable < 0 {
		taxable = 0
	}

	paye := progressiveTax(taxable, cfg.Brackets)

	return Payslip{
		Basic:           basic,
		Housing:         housing,
		Transport:       transport,
		Other:           other,
		Gross:           gross,
		PensionEmployee: pensionEmployee,
		PensionEmployer: pensionEmployer,
		NHF:             nhf,
		Relief:          relief,
		TaxableIncome:   taxable,
		PAYE:            paye,
		Net:             gross - pensionEmployee - nhf - paye,
		PeriodDays:      periodDays,
		WorkedDays:      workedDays,
		Prorated:        workedDays < periodDays,
	}, nil
}

// progressiveTax walks the bracket table in order, taxing
// min(remaining, bandWidth) at each band's marginal rate.
func progressiveTax(taxable Kobo, brackets []TaxBracket) Kobo {
	var tax Kobo
	remaining := taxable
	prev := Kobo(0)
	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		width := b.UpperBound - prev
		take := remaining
		if take > width {
			take = width
		}
		tax += applyRate(take, b.RateBp)
		remaining -= take
		prev = b.UpperBound
	}
	return tax
}
