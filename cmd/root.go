package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/session"
	"github.com/theirongolddev/nakop/internal/store"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagBackend string
	flagStart   string
	flagGoal    float64
	flagPlan    float64
	flagUSD     float64
	flagUZS     float64
	flagDryRun  bool
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "nakop",
	Short:         "Savings goal tracker",
	Long:          "Track a ruble savings goal funded in rubles, dollars and sum, valued at live exchange rates.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		newLogger(config.DefaultConfig()).Debug("command failed", "err", err)
		fmt.Fprintf(os.Stderr, "  %s\n", cli.UserMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Storage backend ("+strings.Join(config.Backends, ", ")+")")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "First period start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Float64Var(&flagGoal, "goal", 0, "Savings goal in rubles")
	rootCmd.PersistentFlags().Float64Var(&flagPlan, "plan", 0, "Planned monthly contribution in rubles")
	rootCmd.PersistentFlags().Float64Var(&flagUSD, "usd", 0, "Dollars already saved")
	rootCmd.PersistentFlags().Float64Var(&flagUZS, "uzs", 0, "Sum already saved")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Read saved contributions but never write them back")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = flagBackend
	}
	if flags.Changed("start") {
		if _, err := model.ParseDate(flagStart); err != nil {
			return cfg, err
		}
		cfg.General.StartDate = flagStart
	}
	if flags.Changed("goal") {
		cfg.Goal.Target = flagGoal
	}
	if flags.Changed("plan") {
		cfg.Goal.MonthlyPlan = flagPlan
	}
	if flags.Changed("usd") {
		cfg.Holdings.USD = flagUSD
	}
	if flags.Changed("uzs") {
		cfg.Holdings.UZS = flagUZS
	}
	return cfg, nil
}

// newLogger builds the stderr logger every command passes down.
func newLogger(cfg config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	switch {
	case flagVerbose:
		level = log.DebugLevel
	case flagQuiet:
		level = log.ErrorLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "nakop",
	})
}

// newRates returns the cached feed client for cfg.
func newRates(cfg config.Config) *rates.Cache {
	client := rates.NewClient(cfg.Rates.URL, rates.WithTimeout(cfg.RatesTimeout()))
	return rates.NewCache(client, cfg.RatesTTL())
}

// openSession is the shared startup path: backend, rate feed, ledger.
func openSession(ctx context.Context, cfg config.Config, logger *log.Logger) (*session.Session, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading contributions from %s...\n", backendName(cfg))
	}
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sess, err := newSession(ctx, cfg, backend, newRates(cfg), logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return sess, nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Backend, error) {
	backend, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	if flagDryRun {
		return store.DryRun(backend), nil
	}
	return backend, nil
}

// newSession loads the ledger from an already opened backend.
func newSession(ctx context.Context, cfg config.Config, backend store.Backend, provider rates.Provider, logger *log.Logger, notices ...string) (*session.Session, error) {
	goal, err := cfg.GoalValue()
	if err != nil {
		return nil, err
	}
	holdings, err := cfg.HoldingsValue()
	if err != nil {
		return nil, err
	}
	return session.New(ctx, session.Options{
		Backend:  backend,
		Rates:    provider,
		Goal:     goal,
		Holdings: holdings,
		Logger:   logger,
		Notices:  notices,
	}), nil
}

func backendName(cfg config.Config) string {
	if cfg.Storage.Backend == "" {
		return config.BackendFile
	}
	return cfg.Storage.Backend
}
