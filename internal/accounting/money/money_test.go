package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundHalfEven(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.00"},
		{"1.015", "1.02"},
		{"1.025", "1.02"},
		{"1083.3333", "1083.33"},
		{"416.6666", "416.67"},
		{"-2.675", "-2.68"},
	}
	for _, tc := range cases {
		got := Round(decimal.RequireFromString(tc.in))
		// Compare values, not String(): decimal trims trailing zeros.
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Round(%s) = %s, want %s", tc.in, got.StringFixed(2), tc.want)
		}
	}
}

func TestBalanced(t *testing.T) {
	d := decimal.RequireFromString("1800.00")
	if !Balanced(d, decimal.RequireFromString("1800.009")) {
		t.Error("discrepancy below tolerance should balance")
	}
	if Balanced(d, decimal.RequireFromString("1800.01")) {
		t.Error("discrepancy of exactly 0.01 must not balance")
	}
	if Balanced(d, decimal.RequireFromString("1799.98")) {
		t.Error("discrepancy above tolerance must not balance")
	}
}

func TestFromPercent(t *testing.T) {
	got := FromPercent(decimal.NewFromInt(20))
	if !got.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("FromPercent(20) = %s, want 0.2", got)
	}
}

func TestStore(t *testing.T) {
	if got := Store(decimal.RequireFromString("5")); got != "5.00" {
		t.Errorf("Store(5) = %q, want 5.00", got)
	}
}
