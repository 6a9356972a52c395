package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

type countingProvider struct {
	calls int
	err   error
	usd   decimal.Decimal
}

func (p *countingProvider) Fetch(context.Context) (model.RateSnapshot, error) {
	p.calls++
	if p.err != nil {
		return model.RateSnapshot{}, p.err
	}
	return model.RateSnapshot{USD: p.usd}, nil
}

func TestCache_ReusesUntilExpiry(t *testing.T) {
	src := &countingProvider{usd: decimal.NewFromInt(90)}
	now := time.Date(2025, 7, 13, 10, 0, 0, 0, time.UTC)

	c := NewCache(src, time.Hour)
	c.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background()); err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1 within TTL", src.calls)
	}

	now = now.Add(time.Hour)
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch after expiry: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after expiry", src.calls)
	}
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	src := &countingProvider{err: ErrFetch}
	c := NewCache(src, time.Hour)

	if _, err := c.Fetch(context.Background()); !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	src.err = nil
	src.usd = decimal.NewFromInt(91)

	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch after recovery: %v", err)
	}
	if !snap.USD.Equal(decimal.NewFromInt(91)) {
		t.Errorf("USD = %s, want 91", snap.USD)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

func TestCache_Invalidate(t *testing.T) {
	src := &countingProvider{usd: decimal.NewFromInt(90)}
	c := NewCache(src, time.Hour)

	_, _ = c.Fetch(context.Background())
	c.Invalidate()
	if !c.FetchedAt().IsZero() {
		t.Error("FetchedAt not reset by Invalidate")
	}
	_, _ = c.Fetch(context.Background())
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after Invalidate", src.calls)
	}
}
