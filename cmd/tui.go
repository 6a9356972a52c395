package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/session"
	"github.com/theirongolddev/nakop/internal/tui"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Progress lines would tear the alt screen.
	flagQuiet = true
	logger := newLogger(cfg)

	app := tui.NewApp(tui.Options{
		Config: cfg,
		Open: func(ctx context.Context, cfg config.Config) (*session.Session, error) {
			return openSession(ctx, cfg, logger)
		},
		NeedSetup: !config.Exists(),
		Logger:    logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	final, err := p.Run()
	if a, ok := final.(tui.App); ok {
		_ = a.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
