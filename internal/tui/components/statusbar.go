package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports besides the key hints.
type Status struct {
	Backend  string
	RatesAge string // e.g. "12.10.2025 14:03", empty before the first fetch
	Busy     bool
	Message  string
	IsError  bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := hintStyle.Render(" [a]dd  [r]efresh  [R]eset  [?]help  [q]uit")

	var right []string
	switch {
	case s.Message != "" && s.IsError:
		right = append(right, lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(s.Message))
	case s.Message != "":
		right = append(right, lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render(s.Message))
	}
	if s.Busy {
		right = append(right, lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("working..."))
	}
	if s.Backend != "" {
		right = append(right, dimStyle.Render("store: ")+hintStyle.Render(s.Backend))
	}
	if s.RatesAge != "" {
		right = append(right, dimStyle.Render("rates: ")+hintStyle.Render(s.RatesAge))
	}
	rightStr := strings.Join(right, dimStyle.Render(" │ ")) + barStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 1 {
		// Drop the right side before letting the bar wrap.
		return barStyle.Width(width).Render(left)
	}

	return left + barStyle.Render(strings.Repeat(" ", padding)) + rightStr
}

// FormatAge renders how long ago something happened in whole units.
func FormatAge(seconds int64) string {
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}
