// Package format renders amounts and labels for display.
package format

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSymbol is used when no currency symbol is configured.
const DefaultSymbol = "£"

var titleCaser = cases.Title(language.BritishEnglish)

// Money renders the magnitude of amount with thousands grouping and two
// decimals, e.g. Money(-1200, "£") == "£1,200.00". The sign is dropped.
func Money(amount decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	v := amount.Abs().Round(2).InexactFloat64()
	return symbol + humanize.FormatFloat("#,###.##", v)
}

// Signed renders amount with an explicit leading sign: "-£65.40", "+£3,500.00".
func Signed(amount decimal.Decimal, symbol string) string {
	sign := "+"
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + Money(amount, symbol)
}

// Float is Money for computed float values such as projections.
func Float(v float64, symbol string) string {
	return Money(decimal.NewFromFloat(v), symbol)
}

// AccountTypeLabel turns "credit_card" into "Credit Card".
func AccountTypeLabel(t string) string {
	return titleCaser.String(strings.ReplaceAll(t, "_", " "))
}
