package currency

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyMarks are stripped from text-rendered amounts before parsing.
var currencyMarks = []string{"₽", "руб.", "руб", "р.", "RUB", "$", "USD", "UZS", "сум"}

// spaceRunes are used as thousands separators by spreadsheet locales.
var spaceRunes = []string{" ", "\u00a0", "\u202f", "\u2009", "'"}

// ParseText parses a locale-formatted amount such as "64 547,36 ₽",
// "1.234,56", "1,234.56" or "4498000". The empty string parses as zero.
func ParseText(s string) (decimal.Decimal, error) {
	orig := s
	s = strings.TrimSpace(s)
	for _, m := range currencyMarks {
		s = strings.ReplaceAll(s, m, "")
	}
	for _, r := range spaceRunes {
		s = strings.ReplaceAll(s, r, "")
	}
	if s == "" {
		return decimal.Zero, nil
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	return d, nil
}

// normalizeSeparators rewrites the decimal separator to '.' and drops
// thousands separators. The rightmost of ',' and '.' is taken as the decimal
// separator when both appear; a lone ',' is always decimal.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// ParseAmount parses user input and rejects negative values.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseText(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// FromFloat converts a finite float64 to a decimal.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, f)
	}
	return decimal.NewFromFloat(f), nil
}
