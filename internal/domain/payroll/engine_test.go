package payroll

import (
	"errors"
	"math/rand"
	"testing"
)

func flatTaxConfig(rateBp int64) StatutoryConfig {
	cfg := DefaultStatutoryConfig()
	cfg.Brackets = []TaxBracket{{UpperBound: 1_000_000_000_000, RateBp: rateBp}}
	return cfg
}

func TestComputeFullPeriodGrossEqualsComponentSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := DefaultStatutoryConfig()

	for i := 0; i < 500; i++ {
		s := SalaryStructure{
			Basic:     Kobo(rng.Int63n(100_000_000)),
			Housing:   Kobo(rng.Int63n(50_000_000)),
			Transport: Kobo(rng.Int63n(50_000_000)),
			Other:     Kobo(rng.Int63n(50_000_000)),
		}
		slip, err := Compute(s, 30, 30, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slip.Gross != s.Basic+s.Housing+s.Transport+s.Other {
			t.Fatalf("gross %d != component sum for %+v", slip.Gross, s)
		}
		if slip.Prorated {
			t.Fatal("full period must not be marked prorated")
		}
	}
}

func TestComputeNetIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cfg := DefaultStatutoryConfig()

	for i := 0; i < 500; i++ {
		s := SalaryStructure{
			Basic:     Kobo(rng.Int63n(200_000_000)),
			Housing:   Kobo(rng.Int63n(100_000_000)),
			Transport: Kobo(rng.Int63n(100_000_000)),
			Other:     Kobo(rng.Int63n(100_000_000)),
		}
		period := 28 + rng.Intn(4)
		worked := rng.Intn(period + 1)

		slip, err := Compute(s, period, worked, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slip.Net != slip.Gross-slip.PensionEmployee-slip.NHF-slip.PAYE {
			t.Fatalf("net identity violated: %+v", slip)
		}
		if slip.Gross != prorate(s.Gross(), worked, period) {
			t.Fatalf("gross not prorated component sum: %+v", slip)
		}
		if slip.TaxableIncome < 0 {
			t.Fatalf("negative taxable income: %+v", slip)
		}
	}
}

func TestComputeZeroWorkedDaysZeroesEverything(t *testing.T) {
	s := SalaryStructure{Basic: 30_000_000, Housing: 10_000_000, Transport: 5_000_000}
	slip, err := Compute(s, 30, 0, DefaultStatutoryConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slip.Gross != 0 || slip.PAYE != 0 || slip.Net != 0 {
		t.Fatalf("expected all-zero payslip, got %+v", slip)
	}
}

func TestProgressiveTaxMonotonic(t *testing.T) {
	brackets := DefaultStatutoryConfig().Brackets
	prev := Kobo(-1)
	for income := Kobo(0); income <= 6_000_000_000; income += 7_777_777 {
		tax := progressiveTax(income, brackets)
		if tax < prev {
			t.Fatalf("tax decreased at income %d: %d < %d", income, tax, prev)
		}
		prev = tax
	}
}

func TestProgressiveTaxContinuousAtBoundaries(t *testing.T) {
	brackets := DefaultStatutoryConfig().Brackets
	for _, b := range brackets[:len(brackets)-1] {
		at := progressiveTax(b.UpperBound, brackets)
		after := progressiveTax(b.UpperBound+1, brackets)
		if diff := after - at; diff < 0 || diff > 1 {
			t.Fatalf("jump of %d kobo at boundary %d", diff, b.UpperBound)
		}
	}
}

func TestProgressiveTaxZeroBand(t *testing.T) {
	brackets := DefaultStatutoryConfig().Brackets
	if tax := progressiveTax(brackets[0].UpperBound, brackets); tax != 0 {
		t.Fatalf("expected zero tax inside the zero-rate band, got %d", tax)
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := SalaryStructure{Basic: 31_234_567, Housing: 12_345_678, Transport: 4_567_890, Other: 111_111}
	cfg := DefaultStatutoryConfig()
	first, err := Compute(s, 31, 17, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute(s, 31, 17, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs produced different payslips:\n%+v\n%+v", first, second)
	}
}

func TestComputeKnownValues(t *testing.T) {
	// basic 300k, housing 100k, transport 50k naira under a flat 10% PAYE:
	// gross 450k, pension 36k, NHF 7.5k, relief 90k, taxable 316,500,
	// PAYE 31,650, net 374,850 naira.
	s := SalaryStructure{Basic: 30_000_000, Housing: 10_000_000, Transport: 5_000_000, Other: 0}
	slip, err := Compute(s, 30, 30, flatTaxConfig(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  Kobo
		want Kobo
	}{
		{"gross", slip.Gross, 45_000_000},
		{"pensionEmployee", slip.PensionEmployee, 3_600_000},
		{"pensionEmployer", slip.PensionEmployer, 4_500_000},
		{"nhf", slip.NHF, 750_000},
		{"relief", slip.Relief, 9_000_000},
		{"taxable", slip.TaxableIncome, 31_650_000},
		{"paye", slip.PAYE, 3_165_000},
		{"net", slip.Net, 37_485_000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
}

func TestComputeReliefCap(t *testing.T) {
	// 20% of a very large gross exceeds the annual cap; the cap wins.
	s := SalaryStructure{Basic: 1_000_000_000}
	cfg := flatTaxConfig(1000)
	slip, err := Compute(s, 30, 30, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slip.Relief != cfg.ReliefCapAnnual {
		t.Fatalf("expected relief capped at %d, got %d", cfg.ReliefCapAnnual, slip.Relief)
	}
}

func TestComputeValidation(t *testing.T) {
	cfg := DefaultStatutoryConfig()
	base := SalaryStructure{Basic: 10_000_000}

	cases := []struct {
		name      string
		structure SalaryStructure
		period    int
		worked    int
		cfg       StatutoryConfig
		want      error
	}{
		{"negative basic", SalaryStructure{Basic: -1}, 30, 30, cfg, ErrNegativeComponent},
		{"negative other", SalaryStructure{Other: -5}, 30, 30, cfg, ErrNegativeComponent},
		{"zero period", base, 0, 0, cfg, ErrInvalidPeriod},
		{"negative worked", base, 30, -1, cfg, ErrInvalidPeriod},
		{"worked exceeds period", base, 30, 31, cfg, ErrWorkedExceedsDays},
		{"empty brackets", base, 30, 30, StatutoryConfig{}, ErrEmptyBrackets},
		{"unsorted brackets", base, 30, 30, StatutoryConfig{Brackets: []TaxBracket{
			{UpperBound: 200, RateBp: 0}, {UpperBound: 100, RateBp: 1500},
		}}, ErrUnsortedBrackets},
		{"rate above 100%", base, 30, 30, StatutoryConfig{Brackets: []TaxBracket{
			{UpperBound: 100, RateBp: 10_001},
		}}, ErrInvalidRate},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Compute(c.structure, c.period, c.worked, c.cfg)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		num, den int64
		want     Kobo
	}{
		{1, 2, 1},
		{1, 3, 0},
		{2, 3, 1},
		{5, 10, 1},
		{4, 10, 0},
		{0, 7, 0},
	}
	for _, c := range cases {
		if got := roundHalfUpDiv(c.num, c.den); got != c.want {
			t.Fatalf("roundHalfUpDiv(%d, %d): expected %d, got %d", c.num, c.den, c.want, got)
		}
	}
}

func TestFormatNaira(t *testing.T) {
	cases := []struct {
		amount Kobo
		want   string
	}{
		{0, "₦0.00"},
		{45_000_000, "₦450,000.00"},
		{123_456_789, "₦1,234,567.89"},
		{-150, "-₦1.50"},
	}
	for _, c := range cases {
		if got := FormatNaira(c.amount); got != c.want {
			t.Fatalf("FormatNaira(%d): expected %q, got %q", c.amount, c.want, got)
		}
	}
}

func TestParseBrackets(t *testing.T) {
	brackets, err := ParseBrackets(`[{"upperBound":80000000,"rateBp":0},{"upperBound":300000000,"rateBp":1500}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(brackets) != 2 || brackets[1].RateBp != 1500 {
		t.Fatalf("unexpected brackets: %+v", brackets)
	}

	if _, err := ParseBrackets("{not json"); err == nil {
		t.Fatal("expected error for malformed json")
	}

	brackets, err = ParseBrackets("")
	if err != nil || brackets != nil {
		t.Fatalf("empty input should return nil, nil; got %v, %v", brackets, err)
	}
}
