package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is the user's savings target. Amounts are in the home currency.
type Goal struct {
	Target      decimal.Decimal
	MonthlyPlan decimal.Decimal
	Start       time.Time
}

// Holdings are pre-existing foreign-currency savings counted as starting capital.
type Holdings struct {
	USD decimal.Decimal
	UZS decimal.Decimal
}

// Amounts is one contribution split by the currency it was entered in.
type Amounts struct {
	RUB decimal.Decimal
	USD decimal.Decimal
	UZS decimal.Decimal
}

// IsZero reports whether every part of the contribution is zero.
func (a Amounts) IsZero() bool {
	return a.RUB.IsZero() && a.USD.IsZero() && a.UZS.IsZero()
}
