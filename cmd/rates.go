package cmd

import (
	"fmt"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/pipeline"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show today's ruble exchange rates",
	RunE:  runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	newLogger(cfg).Debug("fetching rates", "url", cfg.Rates.URL)

	snap, err := newRates(cfg).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, 2)
	for _, l := range pipeline.RateLines(snap) {
		unit := fmt.Sprintf("%s %s", cli.FormatNumber(l.Unit), l.Currency)
		if !l.Available {
			rows = append(rows, []string{unit, "unavailable", ""})
			continue
		}
		rows = append(rows, []string{unit, cli.FormatRUB(l.Rate), cli.FormatSignedRUB(l.Delta)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Exchange rates · " + cli.FormatTimestamp(snap.Timestamp),
		Headers: []string{"Unit", "Rate", "Change"},
		Rows:    rows,
	}))
	if !snap.HasUZS() {
		fmt.Printf("  %s\n", cli.RenderWarning("The feed has no UZS rate today."))
	}
	return nil
}
