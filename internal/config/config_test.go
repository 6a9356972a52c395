package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	for _, k := range []string{"NAKOP_BACKEND", "NAKOP_SPREADSHEET_ID", "GOOGLE_APPLICATION_CREDENTIALS", "REDIS_URL", "NAKOP_RATES_URL"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Fatalf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Goal.Target != 4498000 || cfg.Goal.MonthlyPlan != 271634 {
		t.Fatalf("Goal = %+v, want 4498000/271634", cfg.Goal)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	cfg.Goal.Target = 5000000
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.SQLitePath = filepath.Join(dir, "x.db")
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Goal.Target != 5000000 {
		t.Fatalf("Goal.Target = %v, want 5000000", got.Goal.Target)
	}
	if got.Storage.ResolvedSQLitePath() != cfg.Storage.SQLitePath {
		t.Fatalf("SQLitePath = %q, want %q", got.Storage.ResolvedSQLitePath(), cfg.Storage.SQLitePath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("NAKOP_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("NAKOP_RATES_URL", "http://example.test/daily.js")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "redis" {
		t.Errorf("Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.Storage.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("RedisURL = %q", cfg.Storage.RedisURL)
	}
	if cfg.Rates.URL != "http://example.test/daily.js" {
		t.Errorf("Rates.URL = %q", cfg.Rates.URL)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("[goal\ntarget = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestGoalValue(t *testing.T) {
	cfg := DefaultConfig()
	g, err := cfg.GoalValue()
	if err != nil {
		t.Fatalf("GoalValue: %v", err)
	}
	if g.Target.String() != "4498000" {
		t.Errorf("Target = %s, want 4498000", g.Target)
	}
	if got := g.Start.Format("2006-01-02"); got != "2025-07-13" {
		t.Errorf("Start = %s, want 2025-07-13", got)
	}

	cfg.General.StartDate = "13.07.2025"
	if _, err := cfg.GoalValue(); err == nil {
		t.Error("GoalValue() with bad date: error = nil")
	}
}

func TestHoldingsValue_RejectsNegative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Holdings.USD = -1
	if _, err := cfg.HoldingsValue(); err == nil {
		t.Fatal("HoldingsValue() error = nil, want error")
	}
}

func TestDurations_FallBackOnZero(t *testing.T) {
	var cfg Config
	if got := cfg.RatesTimeout().Seconds(); got != 10 {
		t.Errorf("RatesTimeout = %vs, want 10s", got)
	}
	if got := cfg.RatesTTL().Minutes(); got != 60 {
		t.Errorf("RatesTTL = %vm, want 60m", got)
	}
	if got := cfg.SessionTTL().Minutes(); got != 30 {
		t.Errorf("SessionTTL = %vm, want 30m", got)
	}
}
