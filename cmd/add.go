package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagAddRUB     string
	flagAddDollars string
	flagAddSum     string
)

var addCmd = &cobra.Command{
	Use:   "add [period]",
	Short: "Record a contribution against a period",
	Long: "Record a contribution in rubles, dollars and/or sum. Foreign amounts are\n" +
		"converted at today's rate. The period is its label (\"July 2025\") or its\n" +
		"number (1-12) and defaults to the current one.",
	Example: `  nakop add --rub "64 547,36"
  nakop add "August 2025" --dollars 300 --sum 1500000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddRUB, "rub", "", "Amount in rubles")
	addCmd.Flags().StringVar(&flagAddDollars, "dollars", "", "Amount in US dollars")
	addCmd.Flags().StringVar(&flagAddSum, "sum", "", "Amount in Uzbek sum")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	amounts, err := parseAddAmounts(flagAddRUB, flagAddDollars, flagAddSum)
	if err != nil {
		return err
	}
	if amounts.IsZero() {
		fmt.Println("  Nothing to add. Pass --rub, --dollars or --sum.")
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	sess, err := openSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	periods := sess.Ledger().Periods()
	period := periods[model.PeriodIndex(sess.Goal().Start, time.Now())]
	if len(args) == 1 {
		period = resolvePeriod(periods, args[0])
	}

	added, err := sess.Add(cmd.Context(), period, amounts)
	if err != nil && !errors.Is(err, ledger.ErrPersistenceWrite) {
		return err
	}

	fmt.Printf("  Added %s to %s (now %s)\n",
		cli.FormatRUB(added.Amount), added.Period, cli.FormatRUB(added.NewValue))
	return err
}

func parseAddAmounts(rub, dollars, sum string) (model.Amounts, error) {
	var a model.Amounts
	var err error
	if a.RUB, err = currency.ParseAmount(rub); err != nil {
		return a, fmt.Errorf("rubles: %w", err)
	}
	if a.USD, err = currency.ParseAmount(dollars); err != nil {
		return a, fmt.Errorf("dollars: %w", err)
	}
	if a.UZS, err = currency.ParseAmount(sum); err != nil {
		return a, fmt.Errorf("sum: %w", err)
	}
	return a, nil
}

// resolvePeriod accepts a period label, case-insensitively, or a 1-based
// period number. Anything else is passed through for the ledger to reject.
func resolvePeriod(periods []string, arg string) string {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(periods) {
		return periods[n-1]
	}
	for _, p := range periods {
		if strings.EqualFold(p, arg) {
			return p
		}
	}
	return arg
}
