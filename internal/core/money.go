// Package core provides the finance domain model.
//
// This file contains helpers for rounding and signing monetary amounts.
// Amounts are decimal values with currency minor-unit precision 2.
package core

import (
	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places kept for currency amounts.
const MinorUnits = 2

func init() {
	// Documents are stored with plain JSON numbers for balances and amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Round2 rounds half away from zero to currency precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// Decimal is a convenience for building amounts from float literals.
func Decimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalPtr returns a pointer to the amount, for optional account fields.
func DecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// SignedFor forces the sign of amount to match the transaction type:
// expenses are always outflows, everything else keeps the given sign.
func SignedFor(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Abs().Neg()
	}
	return amount
}
