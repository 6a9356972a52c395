package store

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
)

// ParseAmount reads a stored cell into an amount rounded to kopecks.
//
// Backends hand back whatever their wire form produces: float64 from the
// Sheets API and SQLite, strings from Redis and text-formatted sheet cells,
// json.Number from the file backend. Nil and empty strings read as zero.
func ParseAmount(raw any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		d = v
	case float64:
		d, err = currency.FromFloat(v)
	case float32:
		d, err = currency.FromFloat(float64(v))
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		d, err = currency.ParseText(v.String())
	case string:
		d, err = currency.ParseText(v)
	case []byte:
		d, err = currency.ParseText(string(v))
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported cell type %T", ErrMalformedRow, raw)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", ErrMalformedRow, d)
	}
	return currency.Round(d), nil
}
