package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/model"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formAdd
	formReset
)

var errAmountInput = errors.New("enter a non-negative number, e.g. 12 000,50")

// validateOptionalAmount accepts blank input or a non-negative amount in
// any of the locale forms the parser understands.
func validateOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := currency.ParseAmount(s); err != nil {
		return errAmountInput
	}
	return nil
}

func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return currency.ParseAmount(s)
}

// addValues backs the add-contribution form.
type addValues struct {
	Period string
	RUB    string
	USD    string
	UZS    string
}

func (v *addValues) amounts() (model.Amounts, error) {
	var a model.Amounts
	var err error
	if a.RUB, err = parseOptionalAmount(v.RUB); err != nil {
		return model.Amounts{}, err
	}
	if a.USD, err = parseOptionalAmount(v.USD); err != nil {
		return model.Amounts{}, err
	}
	if a.UZS, err = parseOptionalAmount(v.UZS); err != nil {
		return model.Amounts{}, err
	}
	return a, nil
}

func newAddForm(periods []string, v *addValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Period").
				Options(huh.NewOptions(periods...)...).
				Value(&v.Period),
			huh.NewInput().
				Title("Rubles").
				Placeholder("0").
				Value(&v.RUB).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("US dollars").
				Description("Converted at today's rate.").
				Placeholder("0").
				Value(&v.USD).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("Uzbek sum").
				Description("Converted at today's rate.").
				Placeholder("0").
				Value(&v.UZS).
				Validate(validateOptionalAmount),
		).Title("Add contribution"),
	).WithShowHelp(true)
}

// resetValues backs the reset confirmation.
type resetValues struct {
	Confirm bool
}

func newResetForm(v *resetValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all periods to zero?").
				Description("Every saved contribution is cleared in the storage backend.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&v.Confirm),
		),
	).WithShowHelp(true)
}
