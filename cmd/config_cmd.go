// Package cmd implements the nakop CLI commands.
package cmd

import (
	"fmt"
	"net/url"

	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/rates"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Goal]")
	fmt.Printf("    Start date:    %s\n", cfg.General.StartDate)
	fmt.Printf("    Target:        %.2f RUB\n", cfg.Goal.Target)
	fmt.Printf("    Monthly plan:  %.2f RUB\n", cfg.Goal.MonthlyPlan)
	fmt.Println()

	fmt.Println("  [Holdings]")
	fmt.Printf("    USD: %.2f\n", cfg.Holdings.USD)
	fmt.Printf("    UZS: %.2f\n", cfg.Holdings.UZS)
	fmt.Println()

	fmt.Println("  [Rates]")
	feed := cfg.Rates.URL
	if feed == "" {
		feed = rates.DefaultURL
	}
	fmt.Printf("    Feed:      %s\n", feed)
	fmt.Printf("    Timeout:   %s\n", cfg.RatesTimeout())
	fmt.Printf("    Cache TTL: %s\n", cfg.RatesTTL())
	fmt.Printf("    Refresh:   %s\n", orNotSet(cfg.Rates.RefreshCron))
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", backendName(cfg))
	switch backendName(cfg) {
	case config.BackendFile:
		fmt.Printf("    File:    %s\n", cfg.Storage.ResolvedFilePath())
	case config.BackendSQLite:
		fmt.Printf("    File:    %s\n", cfg.Storage.ResolvedSQLitePath())
	case config.BackendSheets:
		fmt.Printf("    Spreadsheet: %s\n", orNotSet(cfg.Storage.SpreadsheetID))
		fmt.Printf("    Sheet:       %s\n", orNotSet(cfg.Storage.SheetName))
		fmt.Printf("    Credentials: %s\n", orNotSet(cfg.Storage.CredentialsFile))
	case config.BackendRedis:
		fmt.Printf("    URL: %s\n", maskRedisURL(cfg.Storage.RedisURL))
		fmt.Printf("    Key: %s\n", cfg.Storage.RedisKey)
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:     %s\n", cfg.Server.Addr)
	fmt.Printf("    Session TTL: %s\n", cfg.SessionTTL())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `nakop setup` to reconfigure.")
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "not configured"
	}
	return s
}

// maskRedisURL hides the password part of a redis:// URL.
func maskRedisURL(raw string) string {
	if raw == "" {
		return "not configured"
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
