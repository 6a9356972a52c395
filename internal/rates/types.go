package rates

import "github.com/shopspring/decimal"

// dailyResponse is the raw CBR daily_json payload.
type dailyResponse struct {
	Date   string                `json:"Date"`
	Valute map[string]valuteRate `json:"Valute"`
}

// valuteRate quotes Nominal units of a currency in rubles.
// UZS, for instance, is quoted per 10,000 sum.
type valuteRate struct {
	CharCode string          `json:"CharCode"`
	Nominal  decimal.Decimal `json:"Nominal"`
	Value    decimal.Decimal `json:"Value"`
	Previous decimal.Decimal `json:"Previous"`
}

// perUnit divides a quoted value by the quote's nominal.
func (v valuteRate) perUnit(x decimal.Decimal) decimal.Decimal {
	if v.Nominal.IsZero() || v.Nominal.Equal(decimal.NewFromInt(1)) {
		return x
	}
	return x.DivRound(v.Nominal, divPrecision)
}

// divPrecision keeps per-unit UZS rates (~1e-2 RUB) exact to well past the cent.
const divPrecision = 16
