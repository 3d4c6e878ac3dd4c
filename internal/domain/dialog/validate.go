package dialog

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"sawa/internal/domain/payroll"
)

var errBadAmount = errors.New("invalid amount")

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	controlChars   = regexp.MustCompile(`[\x00-\x09\x0b-\x1f\x7f]`)
	nonDigitChars  = regexp.MustCompile(`\D`)
	maxAmountNaira = float64(1_000_000_000)
)

// Sanitize strips control characters (newlines survive) and enforces the
// input length cap before anything else looks at the message.
func Sanitize(text string, maxLength int) string {
	cleaned := controlChars.ReplaceAllString(text, "")
	// Truncate on rune boundaries so multi-byte input stays valid UTF-8.
	if runes := []rune(cleaned); len(runes) > maxLength {
		cleaned = string(runes[:maxLength])
	}
	return strings.TrimSpace(cleaned)
}

func validEmail(text string) bool {
	return emailPattern.MatchString(text)
}

// normalizePhone keeps digits only.
func normalizePhone(text string) string {
	return nonDigitChars.ReplaceAllString(text, "")
}

func validPhone(text string) bool {
	n := len(normalizePhone(text))
	return n >= 7 && n <= 15
}

func validPIN(text string) bool {
	if len(text) != 4 {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseAmount reads a monetary amount in naira and returns kobo.
// Accepts the shorthand people actually type: "200k", "3.5m", "₦250,000".
func parseAmount(text string) (payroll.Kobo, error) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "₦", "")
	cleaned = strings.TrimSpace(cleaned)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "k"):
		multiplier = 1_000
		cleaned = strings.TrimSuffix(cleaned, "k")
	case strings.HasSuffix(cleaned, "m"):
		multiplier = 1_000_000
		cleaned = strings.TrimSuffix(cleaned, "m")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, errBadAmount
	}
	naira := value * multiplier
	if naira < 0 || naira > maxAmountNaira || math.IsNaN(naira) {
		return 0, errBadAmount
	}
	return payroll.Kobo(math.Round(naira * 100)), nil
}

// Yes/no phrase matching for confirmation states.
var yesPhrases = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "sure": {}, "go ahead": {},
	"looks good": {}, "confirm": {}, "ok": {}, "okay": {}, "yea": {},
	"y": {}, "do it": {}, "post it": {}, "lgtm": {},
}

var noPhrases = map[string]struct{}{
	"no": {}, "nah": {}, "nope": {}, "stop": {}, "don't": {}, "abort": {}, "n": {},
}

var skipPhrases = map[string]struct{}{
	"skip": {}, "none": {}, "n/a": {}, "na": {}, "rather not": {},
	"no salary": {}, "not specified": {}, "-": {}, "pass": {},
}

func isYes(text string) bool {
	_, ok := yesPhrases[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func isNo(text string) bool {
	_, ok := noPhrases[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func isSkip(text string) bool {
	_, ok := skipPhrases[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// parseSelection reads a 1-based list selection, reporting whether the text
// is numeric at all and whether it falls in range.
func parseSelection(text string, size int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if n < 1 || n > size {
		return 0, false
	}
	return n, true
}
