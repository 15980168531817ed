package journals

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineInputValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      LineInput
		wantErr bool
	}{
		{"debit only", LineInput{AccountID: 1, Debit: amt("10")}, false},
		{"credit only", LineInput{AccountID: 1, Credit: amt("10")}, false},
		{"both sides", LineInput{AccountID: 1, Debit: amt("10"), Credit: amt("10")}, true},
		{"neither side", LineInput{AccountID: 1}, true},
		{"negative debit", LineInput{AccountID: 1, Debit: amt("-1")}, true},
		{"missing account", LineInput{Debit: amt("10")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestBalancedTolerance(t *testing.T) {
	lines := []Line{
		{AccountID: 1, Debit: amt("100.00")},
		{AccountID: 2, Credit: amt("99.995")},
	}
	if !Balanced(lines) {
		t.Error("sub-tolerance discrepancy should balance")
	}
	lines[1].Credit = amt("99.99")
	if Balanced(lines) {
		t.Error("discrepancy of 0.01 must not balance")
	}
}
