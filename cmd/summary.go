package cmd

import (
	"fmt"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Goal progress at today's exchange rates",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	d, err := loadDashboard(cmd)
	if err != nil {
		return err
	}

	p := d.Progress
	finish := "goal reached"
	if !p.Done() {
		finish = fmt.Sprintf("%s (~%s)", cli.FormatDate(p.EstimatedFinish), cli.FormatMonths(p.EstimatedMonths))
	}

	capitalUZS := cli.FormatRUB(d.Capital.FromUZS)
	if d.Capital.UZSMissing {
		capitalUZS = "no rate"
	}

	rows := [][]string{
		{"Goal", cli.FormatRUB(d.Goal.Target)},
		{"Monthly plan", cli.FormatRUB(d.Goal.MonthlyPlan)},
		{"Started", cli.FormatDate(d.Goal.Start)},
		{"---"},
		{"From " + cli.FormatAmount(d.Holdings.USD, model.USD), cli.FormatRUB(d.Capital.FromUSD)},
		{"From " + cli.FormatAmount(d.Holdings.UZS, model.UZS), capitalUZS},
		{"Contributions", cli.FormatRUB(d.LedgerTotal)},
		{"---"},
		{"Accumulated", cli.FormatRUB(p.Accumulated)},
		{"Remaining", cli.FormatRUB(p.Remaining)},
		{"Estimated finish", finish},
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOAL  " + cli.FormatTimestamp(d.Snapshot.Timestamp)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderProgressBar(p.PercentComplete, 40))

	printWarnings(d)
	return nil
}

// loadDashboard runs one render pass for a one-shot command.
func loadDashboard(cmd *cobra.Command) (pipeline.Dashboard, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return pipeline.Dashboard{}, err
	}
	logger := newLogger(cfg)

	sess, err := openSession(cmd.Context(), cfg, logger)
	if err != nil {
		return pipeline.Dashboard{}, err
	}
	defer func() { _ = sess.Close() }()

	return sess.Dashboard(cmd.Context())
}

func printWarnings(d pipeline.Dashboard) {
	if len(d.Warnings) == 0 {
		return
	}
	fmt.Println()
	for _, w := range d.Warnings {
		fmt.Printf("  %s\n", cli.RenderWarning(w))
	}
}
