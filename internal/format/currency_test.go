package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		in     float64
		symbol string
		want   string
	}{
		{3240.5, "£", "£3,240.50"},
		{-1200, "£", "£1,200.00"},
		{0, "$", "$0.00"},
		{15.99, "", "£15.99"},
		{1234567.891, "€", "€1,234,567.89"},
	}
	for _, tc := range cases {
		if got := Money(decimal.NewFromFloat(tc.in), tc.symbol); got != tc.want {
			t.Errorf("Money(%v, %q) = %q, want %q", tc.in, tc.symbol, got, tc.want)
		}
	}
}

func TestSigned(t *testing.T) {
	if got := Signed(decimal.NewFromFloat(-65.4), "£"); got != "-£65.40" {
		t.Fatalf("got %q", got)
	}
	if got := Signed(decimal.NewFromInt(3500), "£"); got != "+£3,500.00" {
		t.Fatalf("got %q", got)
	}
}

func TestAccountTypeLabel(t *testing.T) {
	cases := map[string]string{
		"credit_card": "Credit Card",
		"savings":     "Savings",
		"loan":        "Loan",
	}
	for in, want := range cases {
		if got := AccountTypeLabel(in); got != want {
			t.Errorf("AccountTypeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
