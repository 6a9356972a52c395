package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/tui/components"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	settingsFieldTheme = iota
	settingsFieldStart
	settingsFieldTarget
	settingsFieldPlan
	settingsFieldUSD
	settingsFieldUZS
	settingsFieldBackend
	settingsFieldCount // sentinel
)

var settingsLabels = [settingsFieldCount]string{
	"Theme",
	"Start date",
	"Savings goal",
	"Monthly plan",
	"USD holdings",
	"UZS holdings",
	"Storage backend",
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// settingsValue renders field for display and as the edit seed.
func settingsValue(cfg config.Config, field int) string {
	switch field {
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldStart:
		return cfg.General.StartDate
	case settingsFieldTarget:
		return formatFloat(cfg.Goal.Target)
	case settingsFieldPlan:
		return formatFloat(cfg.Goal.MonthlyPlan)
	case settingsFieldUSD:
		return formatFloat(cfg.Holdings.USD)
	case settingsFieldUZS:
		return formatFloat(cfg.Holdings.UZS)
	case settingsFieldBackend:
		return cfg.Storage.Backend
	}
	return ""
}

func settingsPlaceholder(field int) string {
	switch field {
	case settingsFieldTheme:
		return strings.Join(theme.Names(), ", ")
	case settingsFieldStart:
		return "YYYY-MM-DD"
	case settingsFieldBackend:
		return strings.Join(config.Backends, ", ")
	}
	return "amount, e.g. 271 634"
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	ti.Placeholder = settingsPlaceholder(a.settings.cursor)
	ti.SetValue(settingsValue(a.cfg, a.settings.cursor))
	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cfg, err := applySetting(a.cfg, a.settings.cursor, a.settings.input.Value())
		if err != nil {
			a.settings.saveErr = err
			return a, nil
		}
		a.settings.editing = false
		a.settings.saveErr = config.Save(cfg)
		a.settings.saved = a.settings.saveErr == nil

		changed := settingsValue(cfg, a.settings.cursor) != settingsValue(a.cfg, a.settings.cursor)
		a.cfg = cfg
		if a.settings.cursor == settingsFieldTheme {
			theme.SetActive(cfg.Appearance.Theme)
			return a, nil
		}
		if !changed || a.busy {
			return a, nil
		}
		// Goal, holdings and backend shape the session, so rebuild it.
		a.busy = true
		return a, openSessionCmd(a.open, a.cfg)
	case "esc":
		a.settings.editing = false
		a.settings.saveErr = nil
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// applySetting validates raw and writes it into the field of cfg.
func applySetting(cfg config.Config, field int, raw string) (config.Config, error) {
	val := strings.TrimSpace(raw)

	amount := func(dst *float64) error {
		d, err := parseOptionalAmount(val)
		if err != nil {
			return errAmountInput
		}
		*dst = d.InexactFloat64()
		return nil
	}

	var err error
	switch field {
	case settingsFieldTheme:
		if _, ok := theme.Lookup(val); !ok {
			return cfg, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldStart:
		if _, perr := model.ParseDate(val); perr != nil {
			return cfg, errors.New("use a YYYY-MM-DD date")
		}
		cfg.General.StartDate = val
	case settingsFieldTarget:
		err = amount(&cfg.Goal.Target)
	case settingsFieldPlan:
		err = amount(&cfg.Goal.MonthlyPlan)
	case settingsFieldUSD:
		err = amount(&cfg.Holdings.USD)
	case settingsFieldUZS:
		err = amount(&cfg.Holdings.UZS)
	case settingsFieldBackend:
		val = strings.ToLower(val)
		if !slices.Contains(config.Backends, val) {
			return cfg, fmt.Errorf("unknown backend %q", val)
		}
		cfg.Storage.Backend = val
	}
	return cfg, err
}

// displaySetting formats a field for the settings list.
func displaySetting(cfg config.Config, field int) string {
	switch field {
	case settingsFieldTarget:
		return cli.FormatRUBWhole(decimal.NewFromFloat(cfg.Goal.Target))
	case settingsFieldPlan:
		return cli.FormatRUBWhole(decimal.NewFromFloat(cfg.Goal.MonthlyPlan))
	case settingsFieldUSD:
		return cli.FormatAmount(decimal.NewFromFloat(cfg.Holdings.USD), model.USD)
	case settingsFieldUZS:
		return cli.FormatAmount(decimal.NewFromFloat(cfg.Holdings.UZS), model.UZS)
	}
	return settingsValue(cfg, field)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	var formBody strings.Builder
	for i := 0; i < settingsFieldCount; i++ {
		label := settingsLabels[i]

		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":"))
			v := selectedStyle.Render(displaySetting(a.cfg, i))
			formBody.WriteString(marker + l + v)
			used := lipgloss.Width(marker) + lipgloss.Width(l) + lipgloss.Width(v)
			if pad := components.CardInnerWidth(cw) - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
			formBody.WriteString(valueStyle.Render(displaySetting(a.cfg, i)))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Data dir:     ") + valueStyle.Render(config.DataDir()) + "\n")
	infoBody.WriteString(labelStyle.Render("Rates feed:   ") + valueStyle.Render(ratesURL(a.cfg)))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}

func ratesURL(cfg config.Config) string {
	if cfg.Rates.URL != "" {
		return cfg.Rates.URL
	}
	return rates.DefaultURL
}
