// Package currency converts USD, UZS and RUB amounts into the home currency.
//
// Rates are per single unit of foreign currency (see rates.Client), so every
// conversion is a plain multiplication. Nothing here rounds except
// Contribution, which rounds its final sum to kopecks.
package currency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

var (
	// ErrInvalidAmount is returned for negative or unparseable amounts.
	ErrInvalidAmount = errors.New("currency: invalid amount")
	// ErrRateUnavailable is returned when a conversion needs a rate the snapshot lacks.
	ErrRateUnavailable = errors.New("currency: rate unavailable")
	// ErrUnknownCurrency is returned for currencies outside RUB/USD/UZS.
	ErrUnknownCurrency = errors.New("currency: unknown currency")
)

// Places is the number of decimal places money is rounded to when persisted.
const Places = 2

// ToHome converts amount of cur into the home currency without rounding.
func ToHome(amount decimal.Decimal, cur model.Currency, snap model.RateSnapshot) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}

	switch cur {
	case model.RUB:
		return amount, nil
	case model.USD:
		if !snap.USD.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: USD", ErrRateUnavailable)
		}
		return amount.Mul(snap.USD), nil
	case model.UZS:
		if snap.UZS == nil {
			return decimal.Zero, fmt.Errorf("%w: UZS", ErrRateUnavailable)
		}
		return amount.Mul(*snap.UZS), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, cur)
}

// Capital is the home-currency value of the pre-existing holdings.
type Capital struct {
	FromUSD decimal.Decimal
	FromUZS decimal.Decimal
	Total   decimal.Decimal
	// UZSMissing is set when UZS holdings could not be valued for lack of a rate.
	UZSMissing bool
}

// StartingCapital values h at the snapshot's rates. UZS holdings without a
// UZS rate count as zero and set UZSMissing.
func StartingCapital(h model.Holdings, snap model.RateSnapshot) (Capital, error) {
	var c Capital

	fromUSD, err := ToHome(h.USD, model.USD, snap)
	if err != nil {
		return Capital{}, err
	}
	c.FromUSD = fromUSD

	fromUZS, err := ToHome(h.UZS, model.UZS, snap)
	switch {
	case errors.Is(err, ErrRateUnavailable):
		c.UZSMissing = !h.UZS.IsZero()
	case err != nil:
		return Capital{}, err
	default:
		c.FromUZS = fromUZS
	}

	c.Total = c.FromUSD.Add(c.FromUZS)
	return c, nil
}

// Contribution sums a multi-currency contribution in the home currency and
// rounds the result to Places half-up. Parts that are zero need no rate.
func Contribution(a model.Amounts, snap model.RateSnapshot) (decimal.Decimal, error) {
	total := decimal.Zero
	parts := []struct {
		amount decimal.Decimal
		cur    model.Currency
	}{
		{a.RUB, model.RUB},
		{a.USD, model.USD},
		{a.UZS, model.UZS},
	}
	for _, p := range parts {
		if p.amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s %s is negative", ErrInvalidAmount, p.amount, p.cur)
		}
		if p.amount.IsZero() {
			continue
		}
		v, err := ToHome(p.amount, p.cur, snap)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return Round(total), nil
}

// Round rounds to Places. For the non-negative amounts used here
// decimal's half-away-from-zero is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}
