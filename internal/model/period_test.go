package model

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestPeriods_DefaultStart(t *testing.T) {
	got := Periods(mustDate(t, "2025-07-13"))
	want := []string{
		"July 2025", "August 2025", "September 2025", "October 2025",
		"November 2025", "December 2025", "January 2026", "February 2026",
		"March 2026", "April 2026", "May 2026", "June 2026",
	}
	if len(got) != PeriodCount {
		t.Fatalf("len(Periods) = %d, want %d", len(got), PeriodCount)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Periods[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPeriods_UniqueOnMonthCollision(t *testing.T) {
	// Jan 31 + 30d = Mar 2, +60d = Apr 1, +90d = May 1, +120d = May 31.
	got := Periods(mustDate(t, "2025-01-31"))

	seen := make(map[string]bool)
	for _, l := range got {
		if seen[l] {
			t.Fatalf("duplicate label %q in %v", l, got)
		}
		seen[l] = true
	}
	if got[3] != "May 2025" {
		t.Errorf("Periods[3] = %q, want May 2025", got[3])
	}
	if got[4] != "May 2025 (2)" {
		t.Errorf("Periods[4] = %q, want %q", got[4], "May 2025 (2)")
	}
}

func TestPeriods_Deterministic(t *testing.T) {
	start := mustDate(t, "2024-02-29")
	a := Periods(start)
	b := Periods(start)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Periods not deterministic at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestAddPeriods_FixedThirtyDays(t *testing.T) {
	start := mustDate(t, "2025-07-13")
	got := AddPeriods(start, 12)
	want := mustDate(t, "2026-07-08") // start + 360 days
	if !got.Equal(want) {
		t.Fatalf("AddPeriods(12) = %s, want %s", got.Format(DateLayout), want.Format(DateLayout))
	}
}

func TestParseCurrency(t *testing.T) {
	for _, in := range []string{"usd", " USD ", "Uzs", "rub"} {
		if _, err := ParseCurrency(in); err != nil {
			t.Errorf("ParseCurrency(%q) error: %v", in, err)
		}
	}
	if _, err := ParseCurrency("EUR"); err == nil {
		t.Error("ParseCurrency(EUR) succeeded, want error")
	}
}

func TestPeriodIndex(t *testing.T) {
	start := time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want int
	}{
		{start.AddDate(0, 0, -5), 0},
		{start, 0},
		{start.AddDate(0, 0, 29), 0},
		{start.AddDate(0, 0, 30), 1},
		{start.AddDate(0, 0, 359).Add(23 * time.Hour), 11},
		{start.AddDate(2, 0, 0), 11},
	}
	for _, tt := range tests {
		if got := PeriodIndex(start, tt.at); got != tt.want {
			t.Fatalf("PeriodIndex(%s) = %d, want %d", tt.at.Format(DateLayout), got, tt.want)
		}
	}
}
