package currency

import (
	"errors"
	"math"
	"testing"
)

func TestParseText_LocaleForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"64 547,36", "64547.36"},
		{"64547,36", "64547.36"},
		{"64 547,36 ₽", "64547.36"},
		{"64 547,36", "64547.36"},
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"1.234.567", "1234567"},
		{"4498000", "4498000"},
		{"271634.00", "271634"},
		{"$ 12,000.50", "12000.5"},
		{"12,345", "12.345"},
		{"  ", "0"},
		{"", "0"},
	}
	for _, tc := range cases {
		got, err := ParseText(tc.in)
		if err != nil {
			t.Errorf("ParseText(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("ParseText(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseText_Malformed(t *testing.T) {
	for _, in := range []string{"abc", "12,34,5x", "--5"} {
		if _, err := ParseText(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseText(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestParseAmount_RejectsNegative(t *testing.T) {
	if _, err := ParseAmount("-10"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	d, err := ParseAmount("10,5")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if !d.Equal(dec("10.5")) {
		t.Errorf("ParseAmount(10,5) = %s, want 10.5", d)
	}
}

func TestFromFloat_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FromFloat(f); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("FromFloat(%v) err = %v, want ErrInvalidAmount", f, err)
		}
	}
}
