package payroll

import "strconv"

// Kobo is a monetary amount in Nigerian minor currency units. All payroll
// arithmetic stays in integer kobo; no field ever passes through a float.
type Kobo int64

// roundHalfUpDiv divides num by den rounding half-up. num must be
// non-negative and den positive. Every statutory rate multiplication funnels
// through here so all fields round identically.
func roundHalfUpDiv(num, den int64) Kobo {
	return Kobo((2*num + den) / (2 * den))
}

// applyRate multiplies amount by a basis-point rate, rounding half-up.
func applyRate(amount Kobo, bp int64) Kobo {
	return roundHalfUpDiv(int64(amount)*bp, 10_000)
}

// prorate scales amount by workedDays/periodDays, rounding half-up. The
// ratio is clamped to [0, 1].
func prorate(amount Kobo, workedDays, periodDays int) Kobo {
	if workedDays >= periodDays {
		return amount
	}
	if workedDays <= 0 {
		return 0
	}
	return roundHalfUpDiv(int64(amount)*int64(workedDays), int64(periodDays))
}

// FormatNaira renders a kobo amount as a naira string with thousands
// grouping, e.g. 45000000 -> "₦450,000.00".
func FormatNaira(amount Kobo) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	naira := int64(amount) / 100
	kobo := int64(amount) % 100

	digits := strconv.FormatInt(naira, 10)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}

	cents := strconv.FormatInt(kobo, 10)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + "₦" + string(grouped) + "." + cents
}
