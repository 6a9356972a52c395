package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/tui/theme"
)

// setupValues backs the first-run setup form. Amounts are kept as text so
// the inputs accept locale-formatted numbers.
type setupValues struct {
	StartDate string
	Target    string
	Plan      string
	USD       string
	UZS       string
	Backend   string
	Theme     string
}

func setupValuesFrom(cfg config.Config) *setupValues {
	return &setupValues{
		StartDate: cfg.General.StartDate,
		Target:    formatFloat(cfg.Goal.Target),
		Plan:      formatFloat(cfg.Goal.MonthlyPlan),
		USD:       formatFloat(cfg.Holdings.USD),
		UZS:       formatFloat(cfg.Holdings.UZS),
		Backend:   cfg.Storage.Backend,
		Theme:     cfg.Appearance.Theme,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func validateDate(s string) error {
	_, err := model.ParseDate(strings.TrimSpace(s))
	return err
}

func newSetupForm(v *setupValues) *huh.Form {
	backends := make([]huh.Option[string], len(config.Backends))
	for i, b := range config.Backends {
		backends[i] = huh.NewOption(b, b)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to nakop!").
				Description("Track a savings goal across rubles, dollars and sum.\n\n"+
					"Enter your goal below. Everything can be changed later\n"+
					"in ~/.config/nakop/config.toml or the Settings tab."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("First period starts on").
				Description("YYYY-MM-DD").
				Value(&v.StartDate).
				Validate(validateDate),
			huh.NewInput().
				Title("Savings goal (RUB)").
				Value(&v.Target).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("Monthly plan (RUB)").
				Value(&v.Plan).
				Validate(validateOptionalAmount),
		).Title("Goal"),
		huh.NewGroup(
			huh.NewInput().
				Title("Dollars already saved").
				Value(&v.USD).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("Sum already saved").
				Value(&v.UZS).
				Validate(validateOptionalAmount),
		).Title("Starting capital"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Description("sheets and redis need extra settings in the config file.").
				Options(backends...).
				Value(&v.Backend),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
		),
	).WithShowHelp(false)
}

// applySetup copies the form answers onto cfg. The form validators have
// already checked every field.
func applySetup(cfg config.Config, v *setupValues) (config.Config, error) {
	cfg.General.StartDate = strings.TrimSpace(v.StartDate)

	fields := []struct {
		raw string
		dst *float64
	}{
		{v.Target, &cfg.Goal.Target},
		{v.Plan, &cfg.Goal.MonthlyPlan},
		{v.USD, &cfg.Holdings.USD},
		{v.UZS, &cfg.Holdings.UZS},
	}
	for _, f := range fields {
		d, err := parseOptionalAmount(f.raw)
		if err != nil {
			return cfg, err
		}
		*f.dst = d.InexactFloat64()
	}

	if v.Backend != "" {
		cfg.Storage.Backend = v.Backend
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
		theme.SetActive(v.Theme)
	}
	return cfg, nil
}

// saveSetupConfig applies the setup answers and writes the config file.
// The returned config is usable even when saving fails.
func (a *App) saveSetupConfig() error {
	cfg, err := applySetup(a.cfg, a.setupVals)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return config.Save(cfg)
}

// RunSetup shows the setup form outside the dashboard and saves the answers.
func RunSetup(cfg config.Config) (config.Config, error) {
	v := setupValuesFrom(cfg)
	if err := newSetupForm(v).Run(); err != nil {
		return cfg, err
	}
	cfg, err := applySetup(cfg, v)
	if err != nil {
		return cfg, err
	}
	return cfg, config.Save(cfg)
}
