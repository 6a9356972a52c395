package pipeline

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/rates"
)

// UZSDisplayUnit is how many sum the UZS rate and its delta are shown for.
const UZSDisplayUnit = 10000

// Inputs is everything one render pass reads.
type Inputs struct {
	Rates    rates.Provider
	Ledger   *ledger.Ledger
	Goal     model.Goal
	Holdings model.Holdings
	// Warnings carried in from earlier steps, e.g. a failed ledger load.
	Warnings []string
}

// RateLine is one row of the rates board.
type RateLine struct {
	Currency  model.Currency
	Unit      int64
	Rate      decimal.Decimal // home currency per Unit
	Delta     decimal.Decimal // Rate minus the previous day's rate, per Unit
	Available bool
}

// PeriodRow compares plan against actual for one period.
type PeriodRow struct {
	Index  int
	Label  string
	Start  time.Time
	Plan   decimal.Decimal
	Actual decimal.Decimal
	Diff   decimal.Decimal
	Met    bool
}

// Slice is one segment of the goal composition: starting capital, each
// period with a contribution, and what remains.
type Slice struct {
	Label  string
	Amount decimal.Decimal
}

// Dashboard is the view model every surface renders.
type Dashboard struct {
	Snapshot    model.RateSnapshot
	RateLines   []RateLine
	Goal        model.Goal
	Holdings    model.Holdings
	Capital     currency.Capital
	Progress    model.ProgressSnapshot
	LedgerTotal decimal.Decimal
	Rows        []PeriodRow
	Composition []Slice
	Warnings    []string
}

// Build runs one render pass: fetch rates, value the holdings, recalculate
// progress and assemble the view model. A rate failure aborts the pass and
// no figures are produced.
func Build(ctx context.Context, in Inputs) (Dashboard, error) {
	snap, err := in.Rates.Fetch(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	capital, err := currency.StartingCapital(in.Holdings, snap)
	if err != nil {
		return Dashboard{}, err
	}

	values := in.Ledger.Values()
	progress := Recalculate(values, capital.Total, in.Goal)

	d := Dashboard{
		Snapshot:    snap,
		RateLines:   RateLines(snap),
		Goal:        in.Goal,
		Holdings:    in.Holdings,
		Capital:     capital,
		Progress:    progress,
		LedgerTotal: decimal.Sum(decimal.Zero, values...),
		Warnings:    append([]string(nil), in.Warnings...),
	}

	if !snap.HasUZS() {
		if capital.UZSMissing {
			d.Warnings = append(d.Warnings, "UZS rate unavailable: UZS holdings are counted as zero")
		} else {
			d.Warnings = append(d.Warnings, "UZS rate unavailable")
		}
	}

	periods := in.Ledger.Periods()
	d.Rows = make([]PeriodRow, len(periods))
	for i, p := range periods {
		actual := values[i]
		d.Rows[i] = PeriodRow{
			Index:  i,
			Label:  p,
			Start:  model.PeriodStart(in.Goal.Start, i),
			Plan:   in.Goal.MonthlyPlan,
			Actual: actual,
			Diff:   actual.Sub(in.Goal.MonthlyPlan),
			Met:    actual.GreaterThanOrEqual(in.Goal.MonthlyPlan),
		}
	}

	d.Composition = composition(capital.Total, periods, values, progress.Remaining)
	return d, nil
}

// RateLines renders a snapshot for the rates board. UZS is shown per
// UZSDisplayUnit sum.
func RateLines(snap model.RateSnapshot) []RateLine {
	lines := []RateLine{{
		Currency:  model.USD,
		Unit:      1,
		Rate:      snap.USD,
		Delta:     snap.USD.Sub(snap.USDPrevious),
		Available: snap.USD.IsPositive(),
	}}

	uzs := RateLine{Currency: model.UZS, Unit: UZSDisplayUnit}
	if snap.UZS != nil {
		unit := decimal.NewFromInt(UZSDisplayUnit)
		uzs.Available = true
		uzs.Rate = snap.UZS.Mul(unit)
		if snap.UZSPrevious != nil {
			uzs.Delta = snap.UZS.Sub(*snap.UZSPrevious).Mul(unit)
		}
	}
	return append(lines, uzs)
}

func composition(capital decimal.Decimal, periods []string, values []decimal.Decimal, remaining decimal.Decimal) []Slice {
	slices := []Slice{{Label: "Starting capital", Amount: capital}}
	for i, p := range periods {
		if values[i].IsPositive() {
			slices = append(slices, Slice{Label: p, Amount: values[i]})
		}
	}
	return append(slices, Slice{Label: "Remaining", Amount: remaining})
}
