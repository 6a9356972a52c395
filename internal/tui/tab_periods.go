package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/pipeline"
	"github.com/theirongolddev/nakop/internal/tui/components"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderPeriodsTab(cw int) string {
	t := theme.Active
	d := a.dash
	var b strings.Builder

	values := make([]float64, len(d.Rows))
	labels := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		values[i] = r.Actual.InexactFloat64()
		labels[i] = r.Start.Format("Jan")
	}

	chartH := 10
	if a.isCompactLayout() {
		chartH = 6
	}
	title := fmt.Sprintf("Contributions per Period (plan %s)", cli.FormatRUBWhole(d.Goal.MonthlyPlan))
	b.WriteString(components.ContentCard(title,
		components.BarChart(values, labels, d.Goal.MonthlyPlan.InexactFloat64(), t.Blue,
			components.CardInnerWidth(cw), chartH),
		cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Plan vs Actual", renderPeriodTable(d.Rows, d.LedgerTotal), cw))
	return b.String()
}

func renderPeriodTable(rows []pipeline.PeriodRow, total decimal.Decimal) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	metStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	shortStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	const rowFmt = "%-3s %-18s %-11s %16s %16s %17s  "

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf(rowFmt, "#", "Period", "Starts", "Plan", "Actual", "Difference")))
	b.WriteString(headStyle.Render("Status"))

	for _, r := range rows {
		b.WriteString("\n")
		line := fmt.Sprintf(rowFmt,
			fmt.Sprintf("%d", r.Index+1),
			r.Label,
			cli.FormatDate(r.Start),
			cli.FormatRUB(r.Plan),
			cli.FormatRUB(r.Actual),
			cli.FormatSignedRUB(r.Diff),
		)
		switch {
		case r.Met:
			b.WriteString(cellStyle.Render(line))
			b.WriteString(metStyle.Render("✓ met"))
		case r.Actual.IsZero():
			b.WriteString(dimStyle.Render(line))
			b.WriteString(dimStyle.Render("·"))
		default:
			b.WriteString(cellStyle.Render(line))
			b.WriteString(shortStyle.Render("short"))
		}
	}

	b.WriteString("\n")
	b.WriteString(headStyle.Render(fmt.Sprintf("%-34s %16s ", "Total contributions", "")))
	b.WriteString(headStyle.Render(fmt.Sprintf("%16s", cli.FormatRUB(total))))
	return b.String()
}
