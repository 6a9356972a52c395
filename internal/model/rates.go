package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one of the currencies the tracker understands.
type Currency string

const (
	RUB Currency = "RUB" // home currency
	USD Currency = "USD"
	UZS Currency = "UZS"
)

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case RUB, USD, UZS:
		return c, nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// RateSnapshot holds home-currency rates per single unit of foreign currency.
// UZS and UZSPrevious are nil when the feed does not quote UZS.
type RateSnapshot struct {
	USD         decimal.Decimal
	USDPrevious decimal.Decimal
	UZS         *decimal.Decimal
	UZSPrevious *decimal.Decimal
	Timestamp   time.Time
}

// HasUZS reports whether the snapshot carries a UZS rate.
func (s RateSnapshot) HasUZS() bool {
	return s.UZS != nil
}
