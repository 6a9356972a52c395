package components

import (
	"fmt"

	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForProgress returns red/orange/yellow/green as the goal fills up.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return t.Green
	case pct >= 0.5:
		return t.Yellow
	case pct >= 0.25:
		return t.Orange
	default:
		return t.Red
	}
}

func clampUnit(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// GoalBar renders the goal progress bar followed by the percentage.
// pct is a fraction in [0, 1]; values outside are clamped.
func GoalBar(pct float64, width int) string {
	t := theme.Active
	pct = clampUnit(pct)

	barW := width - 8
	if barW < 10 {
		barW = 10
	}

	color := ColorForProgress(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct*100))
}

// LabeledBar renders "label  [bar] value" on one line, the bar filled to
// value/limit. met switches the fill to green.
func LabeledBar(label, value string, pct float64, met bool, labelW, barW int) string {
	t := theme.Active
	pct = clampUnit(pct)

	fill := t.Accent
	if met {
		fill = t.Green
	}
	bar := progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		valueStyle.Render(value)
}
