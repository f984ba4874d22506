package finance

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":        "0.00",
		"  12.5 ": "12.50",
		"5,90":    "5.90",
		"1000":    "1000.00",
		"-3.333":  "-3.33",
		"0.005":   "0.01",
	}
	for in, want := range cases {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if got := Format(Round(d)); got != want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "1,000.50", "1.2.3"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestParseNonNegative(t *testing.T) {
	if _, err := ParseNonNegative("-1"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	d, err := ParseNonNegative("0")
	if err != nil || !d.IsZero() {
		t.Fatalf("ParseNonNegative(0) = %v, %v", d, err)
	}
}
