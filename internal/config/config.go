package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

// Config holds all nakop configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Goal       GoalConfig       `toml:"goal"`
	Holdings   HoldingsConfig   `toml:"holdings"`
	Rates      RatesConfig      `toml:"rates"`
	Storage    StorageConfig    `toml:"storage"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	StartDate string `toml:"start_date"`
}

// GoalConfig holds the savings target and the monthly plan in RUB.
type GoalConfig struct {
	Target      float64 `toml:"target"`
	MonthlyPlan float64 `toml:"monthly_plan"`
}

// HoldingsConfig holds pre-existing foreign-currency savings.
type HoldingsConfig struct {
	USD float64 `toml:"usd"`
	UZS float64 `toml:"uzs"`
}

// RatesConfig holds exchange-rate feed settings.
type RatesConfig struct {
	URL         string `toml:"url,omitempty"`
	TimeoutSec  int    `toml:"timeout_sec"`
	CacheTTLSec int    `toml:"cache_ttl_sec"`
	// RefreshCron schedules background refetches while serving. Empty disables.
	RefreshCron string `toml:"refresh_cron"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend         string `toml:"backend"`
	FilePath        string `toml:"file_path,omitempty"`
	SQLitePath      string `toml:"sqlite_path,omitempty"`
	SpreadsheetID   string `toml:"spreadsheet_id,omitempty"`
	SheetName       string `toml:"sheet_name,omitempty"`
	CredentialsFile string `toml:"credentials_file,omitempty"`
	RedisURL        string `toml:"redis_url,omitempty"`
	RedisKey        string `toml:"redis_key,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	SessionTTLMin int    `toml:"session_ttl_min"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Storage backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists every storage backend name in display order.
var Backends = []string{BackendFile, BackendSQLite, BackendSheets, BackendRedis, BackendMemory}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			StartDate: "2025-07-13",
		},
		Goal: GoalConfig{
			Target:      4498000,
			MonthlyPlan: 271634,
		},
		Holdings: HoldingsConfig{
			USD: 12000,
			UZS: 51000000,
		},
		Rates: RatesConfig{
			TimeoutSec:  10,
			CacheTTLSec: 3600,
			RefreshCron: "@hourly",
		},
		Storage: StorageConfig{
			Backend:  BackendFile,
			RedisKey: "nakop:savings",
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			SessionTTLMin: 30,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nakop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nakop")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory for local backends.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "nakop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "nakop")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top of whatever was read.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// ApplyEnv overrides config values from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("NAKOP_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("NAKOP_SPREADSHEET_ID"); v != "" {
		cfg.Storage.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		cfg.Storage.CredentialsFile = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("NAKOP_RATES_URL"); v != "" {
		cfg.Rates.URL = v
	}
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GoalValue converts the goal section into a model.Goal.
func (c Config) GoalValue() (model.Goal, error) {
	start, err := model.ParseDate(c.General.StartDate)
	if err != nil {
		return model.Goal{}, fmt.Errorf("general.start_date: %w", err)
	}
	return model.Goal{
		Target:      decimal.NewFromFloat(c.Goal.Target),
		MonthlyPlan: decimal.NewFromFloat(c.Goal.MonthlyPlan),
		Start:       start,
	}, nil
}

// HoldingsValue converts the holdings section into model.Holdings.
func (c Config) HoldingsValue() (model.Holdings, error) {
	if c.Holdings.USD < 0 || c.Holdings.UZS < 0 {
		return model.Holdings{}, fmt.Errorf("holdings must not be negative")
	}
	return model.Holdings{
		USD: decimal.NewFromFloat(c.Holdings.USD),
		UZS: decimal.NewFromFloat(c.Holdings.UZS),
	}, nil
}

// RatesTimeout returns the feed request timeout.
func (c Config) RatesTimeout() time.Duration {
	if c.Rates.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Rates.TimeoutSec) * time.Second
}

// RatesTTL returns how long a fetched snapshot is reused.
func (c Config) RatesTTL() time.Duration {
	if c.Rates.CacheTTLSec <= 0 {
		return time.Hour
	}
	return time.Duration(c.Rates.CacheTTLSec) * time.Second
}

// SessionTTL returns how long an idle HTTP session is kept.
func (c Config) SessionTTL() time.Duration {
	if c.Server.SessionTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Server.SessionTTLMin) * time.Minute
}

// ResolvedFilePath returns the JSON file backend location.
func (s StorageConfig) ResolvedFilePath() string {
	if s.FilePath != "" {
		return s.FilePath
	}
	return filepath.Join(DataDir(), "savings.json")
}

// ResolvedSQLitePath returns the SQLite backend location.
func (s StorageConfig) ResolvedSQLitePath() string {
	if s.SQLitePath != "" {
		return s.SQLitePath
	}
	return filepath.Join(DataDir(), "savings.db")
}
