package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set every period's contribution back to zero",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !flagResetYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Reset all periods in the %s backend to zero?", backendName(cfg))).
			Description("Starting capital is not affected.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("  Nothing changed.")
			return nil
		}
	}

	sess, err := openSession(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("  All periods reset to zero.")
	return nil
}
