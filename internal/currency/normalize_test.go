package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// Rates pinned per single unit: 1 USD = 90 RUB, 1 UZS = 0.0073 RUB.
func fixtureSnapshot() model.RateSnapshot {
	return model.RateSnapshot{
		USD:         dec("90.0"),
		USDPrevious: dec("89.5"),
		UZS:         decPtr("0.0073"),
		UZSPrevious: decPtr("0.0072"),
	}
}

func TestStartingCapital_PerUnitConvention(t *testing.T) {
	c, err := StartingCapital(model.Holdings{
		USD: dec("12000"),
		UZS: dec("51000000"),
	}, fixtureSnapshot())
	if err != nil {
		t.Fatalf("StartingCapital: %v", err)
	}

	if !c.FromUSD.Equal(dec("1080000")) {
		t.Errorf("FromUSD = %s, want 1080000", c.FromUSD)
	}
	// 51,000,000 * 0.0073, no extra /10,000 scaling.
	if !c.FromUZS.Equal(dec("372300")) {
		t.Errorf("FromUZS = %s, want 372300", c.FromUZS)
	}
	if !c.Total.Equal(dec("1452300")) {
		t.Errorf("Total = %s, want 1452300", c.Total)
	}
	if c.UZSMissing {
		t.Error("UZSMissing = true, want false")
	}
}

func TestStartingCapital_MissingUZSRate(t *testing.T) {
	snap := fixtureSnapshot()
	snap.UZS = nil

	c, err := StartingCapital(model.Holdings{USD: dec("100"), UZS: dec("1000")}, snap)
	if err != nil {
		t.Fatalf("StartingCapital: %v", err)
	}
	if !c.UZSMissing {
		t.Error("UZSMissing = false, want true")
	}
	if !c.Total.Equal(dec("9000")) {
		t.Errorf("Total = %s, want 9000 (USD only)", c.Total)
	}
}

func TestToHome(t *testing.T) {
	snap := fixtureSnapshot()
	cases := []struct {
		amount string
		cur    model.Currency
		want   string
	}{
		{"100", model.RUB, "100"},
		{"12000", model.USD, "1080000"},
		{"10000", model.UZS, "73"},
		{"0", model.USD, "0"},
	}
	for _, tc := range cases {
		got, err := ToHome(dec(tc.amount), tc.cur, snap)
		if err != nil {
			t.Fatalf("ToHome(%s %s): %v", tc.amount, tc.cur, err)
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("ToHome(%s %s) = %s, want %s", tc.amount, tc.cur, got, tc.want)
		}
	}
}

func TestToHome_Errors(t *testing.T) {
	snap := fixtureSnapshot()

	if _, err := ToHome(dec("-1"), model.RUB, snap); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount err = %v, want ErrInvalidAmount", err)
	}
	if _, err := ToHome(dec("1"), model.Currency("EUR"), snap); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("EUR err = %v, want ErrUnknownCurrency", err)
	}
	snap.UZS = nil
	if _, err := ToHome(dec("1"), model.UZS, snap); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("UZS without rate err = %v, want ErrRateUnavailable", err)
	}
}

func TestContribution_RoundsOnceHalfUp(t *testing.T) {
	snap := fixtureSnapshot()

	cases := []struct {
		name string
		in   model.Amounts
		want string
	}{
		{"rub half cent", model.Amounts{RUB: dec("0.005")}, "0.01"},
		{"rub 1.125", model.Amounts{RUB: dec("1.125")}, "1.13"},
		{"mixed", model.Amounts{RUB: dec("1000"), USD: dec("10.5"), UZS: dec("100000")}, "2675"},
		{"uzs small", model.Amounts{UZS: dec("1")}, "0.01"},
		{"zero", model.Amounts{}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Contribution(tc.in, snap)
			if err != nil {
				t.Fatalf("Contribution: %v", err)
			}
			if !got.Equal(dec(tc.want)) {
				t.Errorf("Contribution = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestContribution_ZeroPartNeedsNoRate(t *testing.T) {
	snap := fixtureSnapshot()
	snap.UZS = nil

	got, err := Contribution(model.Amounts{RUB: dec("500")}, snap)
	if err != nil {
		t.Fatalf("Contribution: %v", err)
	}
	if !got.Equal(dec("500")) {
		t.Errorf("Contribution = %s, want 500", got)
	}

	if _, err := Contribution(model.Amounts{UZS: dec("10")}, snap); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("err = %v, want ErrRateUnavailable", err)
	}
}

func TestContribution_RejectsNegative(t *testing.T) {
	_, err := Contribution(model.Amounts{USD: dec("-3")}, fixtureSnapshot())
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}
