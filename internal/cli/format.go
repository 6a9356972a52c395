// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	return groupThousands(s)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDecimal formats d with comma separators and a fixed number of places.
// e.g., (1452300, 2) -> "1,452,300.00"
func FormatDecimal(d decimal.Decimal, places int32) string {
	if d.IsNegative() {
		return "-" + FormatDecimal(d.Neg(), places)
	}

	s := d.StringFixed(places)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatRUB formats a home-currency amount in kopecks, e.g. "64,547.36 ₽".
func FormatRUB(d decimal.Decimal) string {
	return FormatDecimal(d, 2) + " ₽"
}

// FormatRUBWhole formats a home-currency amount in whole rubles.
func FormatRUBWhole(d decimal.Decimal) string {
	return FormatDecimal(d, 0) + " ₽"
}

// FormatSignedRUB formats a delta with an explicit sign.
func FormatSignedRUB(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatRUB(d)
	}
	return "+" + FormatRUB(d)
}

// FormatAmount formats an amount in its own currency.
func FormatAmount(d decimal.Decimal, cur model.Currency) string {
	switch cur {
	case model.USD:
		return "$" + FormatDecimal(d, 0)
	case model.UZS:
		return FormatDecimal(d, 0) + " сум"
	}
	return FormatRUB(d)
}

// FormatPercent formats a 0-100 decimal percentage, e.g. "24.01%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatDate formats a calendar date as dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimestamp formats a rate snapshot time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "now"
	}
	return t.Format("2006-01-02 15:04")
}

// FormatMonths formats a month count.
func FormatMonths(n int64) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}
