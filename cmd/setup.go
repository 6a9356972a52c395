package cmd

import (
	"fmt"

	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/tui"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()
	theme.SetActive(cfg.Appearance.Theme)

	if _, err := tui.RunSetup(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `nakop` for a summary or `nakop tui` for the dashboard.")
	fmt.Println()
	return nil
}
