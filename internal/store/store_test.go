package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/config"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleEntries() []Entry {
	return []Entry{
		{Period: "July 2025", Amount: dec("271634")},
		{Period: "August 2025", Amount: dec("64547.36")},
		{Period: "September 2025", Amount: dec("0")},
		{Period: "October 2025", Amount: dec("0.1")},
	}
}

func assertSameLedger(t *testing.T, got map[string]decimal.Decimal, want []Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ReadAll returned %d periods, want %d: %v", len(got), len(want), got)
	}
	for _, e := range want {
		v, ok := got[e.Period]
		if !ok {
			t.Fatalf("period %q missing from %v", e.Period, got)
		}
		if !v.Equal(e.Amount) {
			t.Errorf("%s = %s, want %s", e.Period, v, e.Amount)
		}
	}
}

type fakeValues struct {
	grid      [][]any
	failWrite error
	failRead  error
	clears    int
}

func (f *fakeValues) Get(_ context.Context, _, _ string) ([][]any, error) {
	if f.failRead != nil {
		return nil, f.failRead
	}
	if len(f.grid) <= 1 {
		return nil, nil
	}
	return f.grid[1:], nil
}

func (f *fakeValues) Clear(_ context.Context, _, _ string) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.clears++
	f.grid = nil
	return nil
}

func (f *fakeValues) Update(_ context.Context, _, _ string, rows [][]any) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.grid = rows
	return nil
}

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client, "", nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBackends_RoundTrip(t *testing.T) {
	ctx := context.Background()

	backends := map[string]func(t *testing.T) Backend{
		"file": func(t *testing.T) Backend {
			return NewFile(filepath.Join(t.TempDir(), "savings.json"), nil)
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := OpenSQLite(filepath.Join(t.TempDir(), "savings.db"), nil)
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
		"redis":  func(t *testing.T) Backend { return newTestRedis(t) },
		"memory": func(t *testing.T) Backend { return NewMemory() },
		"sheets": func(t *testing.T) Backend {
			return newSheets(&fakeValues{}, "sheet-id", "", nil)
		},
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			b := mk(t)

			empty, err := b.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll on empty backend: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("empty backend returned %v", empty)
			}

			want := sampleEntries()
			if err := b.WriteAll(ctx, want); err != nil {
				t.Fatalf("WriteAll: %v", err)
			}
			got, err := b.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			assertSameLedger(t, got, want)

			// A second write replaces rather than merges.
			short := want[:2]
			if err := b.WriteAll(ctx, short); err != nil {
				t.Fatalf("WriteAll: %v", err)
			}
			got, err = b.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			assertSameLedger(t, got, short)
		})
	}
}

func TestBackends_WriteRoundsToKopecks(t *testing.T) {
	ctx := context.Background()
	b := NewFile(filepath.Join(t.TempDir(), "savings.json"), nil)

	if err := b.WriteAll(ctx, []Entry{{Period: "July 2025", Amount: dec("10.005")}}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if v := got["July 2025"]; !v.Equal(dec("10.01")) {
		t.Fatalf("July 2025 = %s, want 10.01", v)
	}
}

func TestFile_WritesNumbersInPeriodOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.json")
	b := NewFile(path, nil)
	if err := b.WriteAll(context.Background(), sampleEntries()[:2]); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "{\n  \"July 2025\": 271634.00,\n  \"August 2025\": 64547.36\n}\n"
	if string(data) != want {
		t.Fatalf("file contents = %q, want %q", data, want)
	}
}

func TestFile_MalformedJSONIsReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path, nil).ReadAll(context.Background()); err == nil {
		t.Fatal("ReadAll() error = nil, want decode error")
	}
}

func TestFile_MalformedValueDefaultsToZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.json")
	content := `{"July 2025": "abc", "August 2025": "1 000,50", "September 2025": -5}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewFile(path, nil).ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !got["July 2025"].IsZero() {
		t.Errorf("July 2025 = %s, want 0", got["July 2025"])
	}
	if !got["August 2025"].Equal(dec("1000.5")) {
		t.Errorf("August 2025 = %s, want 1000.5", got["August 2025"])
	}
	if !got["September 2025"].IsZero() {
		t.Errorf("September 2025 = %s, want 0", got["September 2025"])
	}
}

func TestSheets_LocaleFormattedCells(t *testing.T) {
	fake := &fakeValues{grid: [][]any{
		{HeaderPeriod, HeaderAmount},
		{"July 2025", "64 547,36 ₽"},
		{"August 2025", "1.234,56"},
		{"September 2025", 271634.0},
		{"October 2025"},
		{"", 99.0},
		{},
		{"November 2025", "n/a"},
		{"December 2025", "12,345"},
		{"January 2026", 12345.0},
	}}
	b := newSheets(fake, "id", "", nil)

	got, err := b.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	want := map[string]string{
		"July 2025":      "64547.36",
		"August 2025":    "1234.56",
		"September 2025": "271634",
		"October 2025":   "0",
		"November 2025":  "0",
		"December 2025":  "12.35",
		"January 2026":   "12345",
	}
	if len(got) != len(want) {
		t.Fatalf("ReadAll returned %v, want %d periods", got, len(want))
	}
	for p, w := range want {
		if !got[p].Equal(dec(w)) {
			t.Errorf("%s = %s, want %s", p, got[p], w)
		}
	}
}

func TestSheets_WriteHeaderAndNumbers(t *testing.T) {
	fake := &fakeValues{}
	b := newSheets(fake, "id", "Nakop", nil)

	if err := b.WriteAll(context.Background(), sampleEntries()[:2]); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if fake.clears != 1 {
		t.Fatalf("clears = %d, want 1", fake.clears)
	}
	if len(fake.grid) != 3 {
		t.Fatalf("grid has %d rows, want 3", len(fake.grid))
	}
	if fake.grid[0][0] != HeaderPeriod || fake.grid[0][1] != HeaderAmount {
		t.Fatalf("header = %v", fake.grid[0])
	}
	if v, ok := fake.grid[2][1].(float64); !ok || v != 64547.36 {
		t.Fatalf("row 2 amount = %#v, want float64 64547.36", fake.grid[2][1])
	}
	if got := b.rng("A2:B"); got != "'Nakop'!A2:B" {
		t.Fatalf("rng = %q", got)
	}
}

func TestSheets_ErrorsAreWrapped(t *testing.T) {
	boom := errors.New("quota exceeded")
	b := newSheets(&fakeValues{failRead: boom, failWrite: boom}, "id", "", nil)

	if _, err := b.ReadAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("ReadAll err = %v, want wrapping %v", err, boom)
	}
	if err := b.WriteAll(context.Background(), sampleEntries()); !errors.Is(err, boom) {
		t.Errorf("WriteAll err = %v, want wrapping %v", err, boom)
	}
}

func TestRedis_StoresNumericStrings(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := OpenRedis(ctx, mr.Addr(), "test:savings", nil)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer r.Close()

	if err := r.WriteAll(ctx, sampleEntries()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if got := mr.HGet("test:savings", "August 2025"); got != "64547.36" {
		t.Fatalf("HGET August 2025 = %q, want 64547.36", got)
	}

	mr.HSet("test:savings", "July 2025", "garbage")
	got, err := r.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !got["July 2025"].IsZero() {
		t.Fatalf("malformed July 2025 = %s, want 0", got["July 2025"])
	}
}

func TestSQLite_ReplacesRowsInOneTransaction(t *testing.T) {
	ctx := context.Background()
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "savings.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer b.Close()

	if err := b.WriteAll(ctx, sampleEntries()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := b.WriteAll(ctx, sampleEntries()[:1]); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	n, err := b.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		cfg  config.StorageConfig
		name string
	}{
		{config.StorageConfig{Backend: "file", FilePath: filepath.Join(dir, "s.json")}, "file"},
		{config.StorageConfig{Backend: "SQLite", SQLitePath: filepath.Join(dir, "s.db")}, "sqlite"},
		{config.StorageConfig{Backend: "memory"}, "memory"},
	}
	for _, tc := range cases {
		b, err := Open(ctx, tc.cfg, nil)
		if err != nil {
			t.Fatalf("Open(%q): %v", tc.cfg.Backend, err)
		}
		if b.Name() != tc.name {
			t.Errorf("Open(%q).Name() = %q, want %q", tc.cfg.Backend, b.Name(), tc.name)
		}
		_ = b.Close()
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, config.StorageConfig{Backend: "dropbox"}, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend err = %v, want ErrUnknownBackend", err)
	}
	if _, err := Open(ctx, config.StorageConfig{Backend: "sheets"}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("sheets without id err = %v, want ErrNotConfigured", err)
	}
	if _, err := Open(ctx, config.StorageConfig{Backend: "redis"}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("redis without url err = %v, want ErrNotConfigured", err)
	}
}

func TestDryRun_NeverWritesThrough(t *testing.T) {
	ctx := context.Background()
	src := NewMemory()
	if err := src.WriteAll(ctx, sampleEntries()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	b := DryRun(src)
	got, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	assertSameLedger(t, got, sampleEntries())

	changed := []Entry{{Period: "July 2025", Amount: dec("1")}}
	if err := b.WriteAll(ctx, changed); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, err = b.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll after write: %v", err)
	}
	assertSameLedger(t, got, changed)

	if src.Writes() != 1 {
		t.Fatalf("source writes = %d, want only the seed write", src.Writes())
	}
	if b.Name() != "memory (dry run)" {
		t.Errorf("Name = %q", b.Name())
	}
}
