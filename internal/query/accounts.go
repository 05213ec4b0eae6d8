package query

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type (
	// Totals summarises account balances.
	Totals struct {
		Assets   decimal.Decimal `json:"totalAssets"`
		Debt     decimal.Decimal `json:"totalDebt"`
		NetWorth decimal.Decimal `json:"netWorth"`
	}

	// Period is the dashboard "this month" view.
	Period struct {
		Totals
		Month         string          `json:"month"`
		MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
		MonthlySpend  decimal.Decimal `json:"monthlySpend"`
	}

	// Partitions groups accounts for display. Debts may overlap the others.
	Partitions struct {
		Regular  []core.Account `json:"regular"`
		Savings  []core.Account `json:"savings"`
		Debts    []core.Account `json:"debts"`
		Pensions []core.Account `json:"pensions"`
	}

	AccountBalance struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"`
		Color   string          `json:"color"`
	}
)

// NetWorth is positive balances minus the magnitude of negative ones.
func NetWorth(accounts []core.Account) Totals {
	t := Totals{Assets: decimal.Zero, Debt: decimal.Zero}
	for _, a := range accounts {
		switch {
		case a.Balance.IsPositive():
			t.Assets = t.Assets.Add(a.Balance)
		case a.Balance.IsNegative():
			t.Debt = t.Debt.Add(a.Balance.Abs())
		}
	}
	t.NetWorth = t.Assets.Sub(t.Debt)
	return t
}

// PeriodTotals computes income and spend since the start of today's month
// plus the balance totals of accounts. today is an ISO date.
func PeriodTotals(txs []core.Transaction, accounts []core.Account, today string) Period {
	p := Period{
		Totals:        NetWorth(accounts),
		Month:         monthKey(today),
		MonthlyIncome: decimal.Zero,
		MonthlySpend:  decimal.Zero,
	}
	for _, t := range txs {
		if t.Date < p.Month {
			continue
		}
		switch {
		case t.Amount.IsPositive():
			p.MonthlyIncome = p.MonthlyIncome.Add(t.Amount)
		case t.Amount.IsNegative():
			p.MonthlySpend = p.MonthlySpend.Add(t.Amount.Abs())
		}
	}
	return p
}

// PartitionAccounts splits accounts into display groups.
func PartitionAccounts(accounts []core.Account) Partitions {
	p := Partitions{
		Regular:  []core.Account{},
		Savings:  []core.Account{},
		Debts:    []core.Account{},
		Pensions: []core.Account{},
	}
	for _, a := range accounts {
		switch a.Type {
		case core.Savings:
			p.Savings = append(p.Savings, a)
		case core.Pension:
			p.Pensions = append(p.Pensions, a)
		case core.CreditCard, core.Loan:
		default:
			p.Regular = append(p.Regular, a)
		}
		if a.Type == core.CreditCard || a.Type == core.Loan || a.Balance.IsNegative() {
			p.Debts = append(p.Debts, a)
		}
	}
	return p
}

// AccountBalances lists balances for the accounts chart.
func AccountBalances(accounts []core.Account) []AccountBalance {
	out := make([]AccountBalance, len(accounts))
	for i, a := range accounts {
		out[i] = AccountBalance{ID: a.ID, Name: a.Name, Balance: a.Balance, Color: a.Color}
	}
	return out
}

// SavingsTotal sums the balances of savings accounts.
func SavingsTotal(accounts []core.Account) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range accounts {
		if a.Type == core.Savings {
			sum = sum.Add(a.Balance)
		}
	}
	return sum
}

// GrowthAccounts returns pension and investment accounts.
func GrowthAccounts(accounts []core.Account) []core.Account {
	out := []core.Account{}
	for _, a := range accounts {
		if a.Type == core.Pension || a.Type == core.Investment {
			out = append(out, a)
		}
	}
	return out
}

// Recent returns at most n transactions from an already sorted list.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if len(txs) > n {
		txs = txs[:n]
	}
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}
