package payroll

import "encoding/json"

// TaxBracket is one band of the progressive PAYE table. UpperBound is the
// cumulative taxable-income ceiling for the band in kobo; RateBp is the
// marginal rate in basis points. Brackets must be sorted ascending by
// UpperBound. Income above the final bound is not taxed further, so the last
// bound of a statutory table should be set beyond any plausible income.
type TaxBracket struct {
	UpperBound Kobo  `json:"upperBound"`
	RateBp     int64 `json:"rateBp"`
}

// StatutoryConfig carries every rate and threshold the engine needs. Rates
// change by statute, so nothing here is ever embedded in the computation as
// a literal.
type StatutoryConfig struct {
	PensionEmployeeBp int64
	PensionEmployerBp int64
	NHFBp             int64
	// NHFMinBasic disables the NHF deduction below this prorated basic
	// salary. Zero means no threshold.
	NHFMinBasic     Kobo
	ReliefBp        int64
	ReliefCapAnnual Kobo
	Brackets        []TaxBracket
}

// DefaultStatutoryConfig returns the 2026 FIRS/PenCom/NHF parameters:
// 8%/10% pension, 2.5% NHF, 20% rent relief capped at ₦500,000/year, and the
// six-band annual PAYE table.
func DefaultStatutoryConfig() StatutoryConfig {
	return StatutoryConfig{
		PensionEmployeeBp: 800,
		PensionEmployerBp: 1000,
		NHFBp:             250,
		NHFMinBasic:       0,
		ReliefBp:          2000,
		ReliefCapAnnual:   50_000_000,
		Brackets: []TaxBracket{
			{UpperBound: 80_000_000, RateBp: 0},
			{UpperBound: 300_000_000, RateBp: 1500},
			{UpperBound: 1_200_000_000, RateBp: 1800},
			{UpperBound: 2_500_000_000, RateBp: 2100},
			{UpperBound: 5_000_000_000, RateBp: 2300},
			{UpperBound: 10_000_000_000_000, RateBp: 2500},
		},
	}
}

// ParseBrackets decodes a JSON bracket table, e.g.
// [{"upperBound":80000000,"rateBp":0},...]. An empty input returns nil so
// callers can fall back to the default table.
func ParseBrackets(raw string) ([]TaxBracket, error) {
	if raw == "" {
		return nil, nil
	}
	var brackets []TaxBracket
	if err := json.Unmarshal([]byte(raw), &brackets); err != nil {
		return nil, err
	}
	return brackets, nil
}

func (c StatutoryConfig) validate() error {
	if len(c.Brackets) == 0 {
		return ErrEmptyBrackets
	}
	prev := Kobo(0)
	for _, b := range c.Brackets {
		if b.UpperBound <= prev {
			return ErrUnsortedBrackets
		}
		if b.RateBp < 0 || b.RateBp > 10_000 {
			return ErrInvalidRate
		}
		prev = b.UpperBound
	}
	for _, bp := range []int64{c.PensionEmployeeBp, c.PensionEmployerBp, c.NHFBp, c.ReliefBp} {
		if bp < 0 || bp > 10_000 {
			return ErrInvalidRate
		}
	}
	if c.ReliefCapAnnual < 0 || c.NHFMinBasic < 0 {
		return ErrInvalidRate
	}
	return nil
}
