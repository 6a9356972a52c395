package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testStart = time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC)

type countingRates struct {
	calls int
	err   error
}

func (c *countingRates) Fetch(context.Context) (model.RateSnapshot, error) {
	c.calls++
	if c.err != nil {
		return model.RateSnapshot{}, c.err
	}
	uzs := dec("0.0073")
	return model.RateSnapshot{USD: dec("90"), USDPrevious: dec("90"), UZS: &uzs, UZSPrevious: &uzs}, nil
}

type brokenBackend struct{ *store.Memory }

func (brokenBackend) ReadAll(context.Context) (map[string]decimal.Decimal, error) {
	return nil, errors.New("permission denied")
}

func (brokenBackend) WriteAll(context.Context, []store.Entry) error {
	return errors.New("permission denied")
}

func newSession(t *testing.T, b store.Backend, p rates.Provider) *Session {
	t.Helper()
	return New(context.Background(), Options{
		Backend:  b,
		Rates:    p,
		Goal:     model.Goal{Target: dec("4498000"), MonthlyPlan: dec("271634"), Start: testStart},
		Holdings: model.Holdings{USD: dec("12000"), UZS: dec("51000000")},
	})
}

func TestSession_AddConvertsCurrencies(t *testing.T) {
	p := &countingRates{}
	s := newSession(t, store.NewMemory(), p)

	got, err := s.Add(context.Background(), "July 2025", model.Amounts{
		RUB: dec("1000"),
		USD: dec("10"),
		UZS: dec("100000"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// 1000 + 900 + 730
	if !got.Amount.Equal(dec("2630")) {
		t.Fatalf("Amount = %s, want 2630", got.Amount)
	}
	if !got.NewValue.Equal(dec("2630")) {
		t.Fatalf("NewValue = %s, want 2630", got.NewValue)
	}
}

func TestSession_AddRUBOnlySkipsRates(t *testing.T) {
	p := &countingRates{err: rates.ErrFetch}
	s := newSession(t, store.NewMemory(), p)

	if _, err := s.Add(context.Background(), "July 2025", model.Amounts{RUB: dec("500")}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("rate fetches = %d, want 0", p.calls)
	}
}

func TestSession_AddValidatesFirst(t *testing.T) {
	p := &countingRates{}
	s := newSession(t, store.NewMemory(), p)
	ctx := context.Background()

	if _, err := s.Add(ctx, "Nowhere 2030", model.Amounts{USD: dec("1")}); !errors.Is(err, ledger.ErrUnknownPeriod) {
		t.Fatalf("err = %v, want ErrUnknownPeriod", err)
	}
	if _, err := s.Add(ctx, "July 2025", model.Amounts{USD: dec("-1")}); !errors.Is(err, currency.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if p.calls != 0 {
		t.Fatalf("rate fetches = %d, want 0 for rejected input", p.calls)
	}
}

func TestSession_AddFetchFailureLeavesLedger(t *testing.T) {
	s := newSession(t, store.NewMemory(), &countingRates{err: rates.ErrFetch})

	_, err := s.Add(context.Background(), "July 2025", model.Amounts{USD: dec("5")})
	if !errors.Is(err, rates.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if !s.Ledger().Total().IsZero() {
		t.Fatalf("Total = %s, want 0", s.Ledger().Total())
	}
}

func TestSession_BrokenBackend(t *testing.T) {
	s := newSession(t, brokenBackend{store.NewMemory()}, &countingRates{})
	ctx := context.Background()

	d, err := s.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.Warnings) != 1 || d.Warnings[0] != ReadWarning {
		t.Fatalf("Warnings = %v, want the read warning", d.Warnings)
	}

	got, err := s.Add(ctx, "July 2025", model.Amounts{RUB: dec("10")})
	if !errors.Is(err, ledger.ErrPersistenceRead) {
		t.Fatalf("err = %v, want ErrPersistenceRead", err)
	}
	if !got.NewValue.IsZero() || !s.Ledger().Total().IsZero() {
		t.Fatalf("Add recorded %s with an unreadable backend", got.NewValue)
	}

	if err := s.Reset(ctx); !errors.Is(err, ledger.ErrPersistenceWrite) {
		t.Fatalf("Reset err = %v, want ErrPersistenceWrite", err)
	}
}

func TestSession_AddAfterFailedLoadKeepsStoredHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "savings.json")
	stored := `{"July 2025": 271634.00, "August 2025": 300000.00,}`
	if err := os.WriteFile(path, []byte(stored), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := newSession(t, store.NewFile(path, nil), &countingRates{})
	if _, err := s.Add(ctx, "July 2025", model.Amounts{RUB: dec("5")}); !errors.Is(err, ledger.ErrPersistenceRead) {
		t.Fatalf("err = %v, want ErrPersistenceRead", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != stored {
		t.Fatalf("savings file rewritten to %s", got)
	}

	// Once the file is repaired the same session adds on top of it.
	if err := os.WriteFile(path, []byte(`{"July 2025": 271634.00, "August 2025": 300000.00}`), 0o600); err != nil {
		t.Fatalf("repair: %v", err)
	}
	added, err := s.Add(ctx, "July 2025", model.Amounts{RUB: dec("5")})
	if err != nil {
		t.Fatalf("Add after repair: %v", err)
	}
	if !added.NewValue.Equal(dec("271639")) {
		t.Fatalf("NewValue = %s, want 271639", added.NewValue)
	}
	if !s.Ledger().Total().Equal(dec("571639")) {
		t.Fatalf("Total = %s, want 571639", s.Ledger().Total())
	}
	d, err := s.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none after a good read", d.Warnings)
	}
}

func TestSession_NoticesReachDashboard(t *testing.T) {
	s := New(context.Background(), Options{
		Backend: store.NewMemory(),
		Rates:   &countingRates{},
		Goal:    model.Goal{Target: dec("100"), MonthlyPlan: dec("10"), Start: testStart},
		Notices: []string{SharedNotice},
	})
	d, err := s.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.Warnings) != 1 || d.Warnings[0] != SharedNotice {
		t.Fatalf("Warnings = %v, want the shared notice", d.Warnings)
	}
}

func TestSession_Reset(t *testing.T) {
	mem := store.NewMemory()
	s := newSession(t, mem, &countingRates{})
	ctx := context.Background()

	_, _ = s.Add(ctx, "July 2025", model.Amounts{RUB: dec("10")})
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	d, err := s.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !d.LedgerTotal.IsZero() {
		t.Fatalf("LedgerTotal = %s, want 0", d.LedgerTotal)
	}
}

func TestRegistry_ReusesAndExpires(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	built := 0
	r := NewRegistry(func(ctx context.Context) (*Session, error) {
		built++
		return newSession(t, store.NewMemory(), &countingRates{}), nil
	}, 30*time.Minute)
	r.SetClock(func() time.Time { return now })
	ctx := context.Background()

	id, first, err := r.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if id == "" {
		t.Fatal("Get returned empty id")
	}

	now = now.Add(10 * time.Minute)
	id2, again, _ := r.Get(ctx, id)
	if id2 != id || again != first {
		t.Fatal("Get did not reuse the live session")
	}

	now = now.Add(31 * time.Minute)
	id3, fresh, _ := r.Get(ctx, id)
	if id3 == id || fresh == first {
		t.Fatal("expired session was reused")
	}
	if built != 2 {
		t.Fatalf("sessions built = %d, want 2", built)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	r.End(id3)
	if r.Len() != 0 {
		t.Fatalf("Len after End = %d, want 0", r.Len())
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("no backend")
	r := NewRegistry(func(context.Context) (*Session, error) { return nil, boom }, time.Minute)
	if _, _, err := r.Get(context.Background(), ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSession_RefreshRatesInvalidatesCache(t *testing.T) {
	p := &countingRates{}
	s := newSession(t, store.NewMemory(), rates.NewCache(p, time.Hour))
	ctx := context.Background()

	if _, err := s.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if _, err := s.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1 (second pass cached)", p.calls)
	}

	s.RefreshRates()
	if _, err := s.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if p.calls != 2 {
		t.Fatalf("calls = %d, want 2 after refresh", p.calls)
	}
}
