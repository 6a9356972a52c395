package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/store"
)

type stubProvider struct {
	snap model.RateSnapshot
	err  error
}

func (s stubProvider) Fetch(context.Context) (model.RateSnapshot, error) {
	return s.snap, s.err
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixtureSnapshot() model.RateSnapshot {
	return model.RateSnapshot{
		USD:         dec("90"),
		USDPrevious: dec("89.5"),
		UZS:         decPtr("0.0073"),
		UZSPrevious: decPtr("0.0072"),
		Timestamp:   testStart,
	}
}

func newInputs(t *testing.T, p rates.Provider) Inputs {
	t.Helper()
	l, err := ledger.Load(context.Background(), store.NewMemory(), model.Periods(testStart), nil)
	if err != nil {
		t.Fatalf("ledger.Load: %v", err)
	}
	return Inputs{
		Rates:    p,
		Ledger:   l,
		Goal:     model.Goal{Target: dec("4498000"), MonthlyPlan: dec("271634"), Start: testStart},
		Holdings: model.Holdings{USD: dec("12000"), UZS: dec("51000000")},
	}
}

func TestBuild_AssemblesDashboard(t *testing.T) {
	in := newInputs(t, stubProvider{snap: fixtureSnapshot()})
	ctx := context.Background()
	if err := in.Ledger.Add(ctx, "August 2025", dec("300000")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	d, err := Build(ctx, in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !d.Capital.Total.Equal(dec("1452300")) {
		t.Errorf("Capital.Total = %s, want 1452300", d.Capital.Total)
	}
	if !d.Progress.Accumulated.Equal(dec("1752300")) {
		t.Errorf("Accumulated = %s, want 1752300", d.Progress.Accumulated)
	}
	if len(d.Rows) != model.PeriodCount {
		t.Fatalf("len(Rows) = %d, want %d", len(d.Rows), model.PeriodCount)
	}
	aug := d.Rows[1]
	if aug.Label != "August 2025" || !aug.Met || !aug.Diff.Equal(dec("28366")) {
		t.Errorf("Rows[1] = %+v, want August 2025 met by 28366", aug)
	}
	if d.Rows[0].Met {
		t.Error("Rows[0].Met = true for empty period")
	}
	if len(d.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", d.Warnings)
	}

	// capital + one active period + remaining
	if len(d.Composition) != 3 {
		t.Fatalf("Composition = %+v, want 3 slices", d.Composition)
	}
	if d.Composition[1].Label != "August 2025" {
		t.Errorf("Composition[1] = %+v", d.Composition[1])
	}
}

func TestBuild_RateLines(t *testing.T) {
	d, err := Build(context.Background(), newInputs(t, stubProvider{snap: fixtureSnapshot()}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.RateLines) != 2 {
		t.Fatalf("len(RateLines) = %d, want 2", len(d.RateLines))
	}
	usd, uzs := d.RateLines[0], d.RateLines[1]
	if !usd.Delta.Equal(dec("0.5")) {
		t.Errorf("USD delta = %s, want 0.5", usd.Delta)
	}
	if !uzs.Rate.Equal(dec("73")) || !uzs.Delta.Equal(dec("1")) {
		t.Errorf("UZS line = %+v, want 73 per 10000 with delta 1", uzs)
	}
}

func TestBuild_FetchFailureWithholdsFigures(t *testing.T) {
	fail := stubProvider{err: rates.ErrFetch}
	d, err := Build(context.Background(), newInputs(t, fail))
	if !errors.Is(err, rates.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if len(d.Rows) != 0 || !d.Progress.Accumulated.IsZero() {
		t.Fatalf("dashboard carries figures after fetch failure: %+v", d)
	}
}

func TestBuild_MissingUZSWarns(t *testing.T) {
	snap := fixtureSnapshot()
	snap.UZS, snap.UZSPrevious = nil, nil

	d, err := Build(context.Background(), newInputs(t, stubProvider{snap: snap}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !d.Capital.UZSMissing {
		t.Error("Capital.UZSMissing = false")
	}
	if len(d.Warnings) != 1 || !strings.Contains(d.Warnings[0], "UZS") {
		t.Fatalf("Warnings = %v, want one UZS warning", d.Warnings)
	}
	if d.RateLines[1].Available {
		t.Error("UZS rate line marked available")
	}
}

func TestBuild_CarriesInputWarnings(t *testing.T) {
	in := newInputs(t, stubProvider{snap: fixtureSnapshot()})
	in.Warnings = []string{"could not read saved contributions"}

	d, err := Build(context.Background(), in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want 1", d.Warnings)
	}
}
