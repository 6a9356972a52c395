package cmd

import (
	"fmt"

	"github.com/theirongolddev/nakop/internal/cli"

	"github.com/spf13/cobra"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Plan vs actual contributions per period",
	RunE:  runPeriods,
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func runPeriods(cmd *cobra.Command, _ []string) error {
	d, err := loadDashboard(cmd)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(d.Rows)+2)
	actuals := make([]float64, len(d.Rows))
	maxActual := 0.0
	for i, r := range d.Rows {
		status := "short"
		switch {
		case r.Met:
			status = "met"
		case r.Actual.IsZero():
			status = "-"
		}
		rows = append(rows, []string{
			r.Label,
			cli.FormatDate(r.Start),
			cli.FormatRUB(r.Plan),
			cli.FormatRUB(r.Actual),
			cli.FormatSignedRUB(r.Diff),
			status,
		})
		actuals[i] = r.Actual.InexactFloat64()
		if actuals[i] > maxActual {
			maxActual = actuals[i]
		}
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", "", cli.FormatRUB(d.LedgerTotal), "", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Contributions per period",
		Headers: []string{"Period", "Starts", "Plan", "Actual", "Difference", "Status"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  Trend  %s\n\n", cli.RenderSparkline(actuals))
	for i, r := range d.Rows {
		fmt.Println(cli.RenderHorizontalBar(r.Label, actuals[i], maxActual, 30, r.Met))
	}

	printWarnings(d)
	return nil
}
