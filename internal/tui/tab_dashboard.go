package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/pipeline"
	"github.com/theirongolddev/nakop/internal/tui/components"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderDashboardTab(cw int) string {
	d := a.dash
	p := d.Progress
	var b strings.Builder

	// Warnings stay above the fold.
	if len(d.Warnings) > 0 {
		b.WriteString(renderWarnings(d.Warnings, cw))
		b.WriteString("\n")
	}

	// Row 1: headline figures
	finish := "goal reached"
	if !p.Done() {
		finish = "~" + cli.FormatMonths(p.EstimatedMonths) + ", by " + cli.FormatDate(p.EstimatedFinish)
	}
	metrics := []components.Metric{
		{Label: "Goal", Value: cli.FormatRUBWhole(d.Goal.Target), Delta: cli.FormatRUBWhole(d.Goal.MonthlyPlan) + " / month"},
		{Label: "Accumulated", Value: cli.FormatRUB(p.Accumulated), Delta: "capital " + cli.FormatRUBWhole(d.Capital.Total)},
		{Label: "Remaining", Value: cli.FormatRUB(p.Remaining), Delta: finish},
		{Label: "Progress", Value: cli.FormatPercent(p.PercentComplete), Delta: "since " + cli.FormatDate(d.Goal.Start)},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: progress toward the goal
	pct := p.PercentComplete.Div(decimal.NewFromInt(100)).InexactFloat64()
	b.WriteString(components.ContentCard("Goal Progress",
		components.GoalBar(pct, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	// Row 3: rates board and starting capital
	halves := components.LayoutRow(cw, 2)
	ratesCard := components.ContentCard(
		"Exchange Rates · "+cli.FormatTimestamp(d.Snapshot.Timestamp),
		renderRateLines(d.RateLines),
		halves[0])
	capitalCard := components.ContentCard("Starting Capital",
		renderCapital(d), halves[1])
	if a.isCompactLayout() {
		b.WriteString(ratesCard)
		b.WriteString("\n")
		b.WriteString(capitalCard)
	} else {
		b.WriteString(components.CardRow([]string{ratesCard, capitalCard}))
	}
	b.WriteString("\n")

	// Row 4: what the goal is made of
	b.WriteString(components.ContentCard("Composition",
		renderComposition(d.Composition, d.Goal.Target, components.CardInnerWidth(cw)), cw))

	return b.String()
}

func renderRateLines(lines []pipeline.RateLine) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		label := fmt.Sprintf("%s %s", cli.FormatNumber(l.Unit), l.Currency)
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		if !l.Available {
			b.WriteString(dimStyle.Render("unavailable"))
			continue
		}
		b.WriteString(valueStyle.Render(cli.FormatRUB(l.Rate)))
		b.WriteString(dimStyle.Render("  "))
		b.WriteString(renderRateDelta(l.Delta))
	}
	return b.String()
}

// renderRateDelta shows the day-over-day change with an arrow.
func renderRateDelta(delta decimal.Decimal) string {
	t := theme.Active
	switch {
	case delta.IsPositive():
		return lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).
			Render("▲ " + cli.FormatSignedRUB(delta))
	case delta.IsNegative():
		return lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("▼ " + cli.FormatSignedRUB(delta))
	}
	return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("= 0.00 ₽")
}

func renderCapital(d pipeline.Dashboard) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	uzsValue := valueStyle.Render(cli.FormatRUB(d.Capital.FromUZS))
	if d.Capital.UZSMissing {
		uzsValue = warnStyle.Render("no rate")
	}

	rows := []struct{ label, value string }{
		{fmt.Sprintf("%-18s", cli.FormatAmount(d.Holdings.USD, model.USD)), valueStyle.Render(cli.FormatRUB(d.Capital.FromUSD))},
		{fmt.Sprintf("%-18s", cli.FormatAmount(d.Holdings.UZS, model.UZS)), uzsValue},
		{fmt.Sprintf("%-18s", "Total"), totalStyle.Render(cli.FormatRUB(d.Capital.Total))},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(r.value)
	}
	return b.String()
}

func renderComposition(slices []pipeline.Slice, target decimal.Decimal, innerW int) string {
	labelW := 18
	valueW := 16
	barW := innerW - labelW - valueW - 2
	if barW < 10 {
		barW = 10
	}

	var b strings.Builder
	for i, s := range slices {
		if i > 0 {
			b.WriteString("\n")
		}
		share := 0.0
		if target.IsPositive() {
			share = s.Amount.Div(target).InexactFloat64()
		}
		// The last slice is what remains; everything before it is saved.
		done := i < len(slices)-1
		b.WriteString(components.LabeledBar(s.Label, cli.FormatRUBWhole(s.Amount), share, done, labelW, barW))
	}
	return b.String()
}

func renderWarnings(warnings []string, cw int) string {
	t := theme.Active
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = warnStyle.Render("⚠ " + w)
	}
	return components.ContentCard("Warnings", strings.Join(lines, "\n"), cw)
}
