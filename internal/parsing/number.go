package parsing

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when no digit sequence can be recovered from a
// token. Callers treat it as a local failure and leave the field absent.
var ErrNotNumeric = errors.New("no numeric value recovered")

// Amount converts a noisy monetary token like "Rs. 135,000.00" to its decimal
// value. Thousands separators, currency symbols and surrounding OCR noise are
// stripped. A lone "-" is the blank-field placeholder some invoices print for
// unused values (e.g. discount) and normalizes to zero.
func Amount(token string) (float64, error) {
	t := strings.TrimSpace(token)
	if t == "-" {
		return 0, nil
	}
	return parseDecimal(t)
}

// Rate converts a percent token like "0.00%" to its literal numeric value.
// The value is NOT divided by 100: "18%" yields 18. A lone "-" normalizes to
// zero, matching Amount.
func Rate(token string) (float64, error) {
	t := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(token), "%"))
	if t == "-" {
		return 0, nil
	}
	return parseDecimal(t)
}

// parseDecimal strips everything outside the numeric alphabet and parses what
// remains. A leading minus sign is kept; any later ones are OCR noise.
func parseDecimal(token string) (float64, error) {
	var b strings.Builder
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if !strings.ContainsAny(s, "0123456789") {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// More than one dot means a stray OCR mark; keep only the last as
		// the decimal point and retry.
		if strings.Count(s, ".") > 1 {
			last := strings.LastIndex(s, ".")
			s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
			if v, err = strconv.ParseFloat(s, 64); err == nil {
				return v, nil
			}
		}
		return 0, ErrNotNumeric
	}
	return v, nil
}
