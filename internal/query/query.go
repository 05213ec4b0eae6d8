// Package query derives dashboard figures from the in-memory document.
//
// Every function is pure: inputs are never modified and repeated calls
// with the same arguments return the same result.
package query

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// All disables an account or category filter.
const All = "all"

// TrendMonths is how many monthly buckets MonthlyTrend keeps.
const TrendMonths = 6

type (
	// Filter holds the transaction list criteria chosen in the UI.
	Filter struct {
		Mode     core.Mode
		Account  string
		Category string
		Search   string
	}

	// Slice is one named share of a breakdown.
	Slice struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
	}

	MonthBucket struct {
		Month  string          `json:"month"` // YYYY-MM
		Income decimal.Decimal `json:"income"`
		Spend  decimal.Decimal `json:"spend"`
	}
)

// SelectAccounts returns the accounts belonging to mode.
func SelectAccounts(accounts []core.Account, mode core.Mode) []core.Account {
	want := mode.IsPersonal()
	out := make([]core.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsPersonal == want {
			out = append(out, a)
		}
	}
	return out
}

// SelectTransactions returns the transactions belonging to mode.
func SelectTransactions(txs []core.Transaction, mode core.Mode) []core.Transaction {
	want := mode.IsPersonal()
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsPersonal == want {
			out = append(out, t)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}

// FilterTransactions applies mode, account, category and search filters and
// sorts the result newest first by date string.
func FilterTransactions(txs []core.Transaction, f Filter) []core.Transaction {
	needle := strings.ToLower(f.Search)
	out := SelectTransactions(txs, f.Mode)
	kept := out[:0]
	for _, t := range out {
		if !isAll(f.Account) && t.AccountID != f.Account {
			continue
		}
		if !isAll(f.Category) && t.Category != f.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		kept = append(kept, t)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date > kept[j].Date
	})
	return kept
}

// CategorySpend totals outflows per category, largest first.
func CategorySpend(txs []core.Transaction) []Slice {
	return breakdown(txs, func(t core.Transaction) (string, bool) {
		if !t.Amount.IsNegative() {
			return "", false
		}
		return firstNonEmpty(t.Category), true
	})
}

// IncomeBySource totals inflows per sub-category, falling back to the
// category, largest first.
func IncomeBySource(txs []core.Transaction) []Slice {
	return breakdown(txs, func(t core.Transaction) (string, bool) {
		if !t.Amount.IsPositive() {
			return "", false
		}
		return firstNonEmpty(t.SubCategory, t.Category), true
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return core.DefaultCategory
}

func breakdown(txs []core.Transaction, key func(core.Transaction) (string, bool)) []Slice {
	sums := map[string]decimal.Decimal{}
	for _, t := range txs {
		k, ok := key(t)
		if !ok {
			continue
		}
		sums[k] = sums[k].Add(t.Amount.Abs())
	}
	out := make([]Slice, 0, len(sums))
	for name, v := range sums {
		out = append(out, Slice{Name: name, Value: core.Round2(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Total sums the values of a breakdown.
func Total(slices []Slice) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range slices {
		sum = sum.Add(s.Value)
	}
	return sum
}

// Percentages returns each slice's share of the total as a whole percent.
func Percentages(slices []Slice) []int64 {
	out := make([]int64, len(slices))
	total := Total(slices)
	if total.IsZero() {
		return out
	}
	hundred := decimal.NewFromInt(100)
	for i, s := range slices {
		out[i] = s.Value.Mul(hundred).Div(total).Round(0).IntPart()
	}
	return out
}

// MonthlyTrend buckets the mode's transactions by YYYY-MM and keeps the
// most recent TrendMonths buckets in ascending order.
func MonthlyTrend(txs []core.Transaction, mode core.Mode) []MonthBucket {
	buckets := map[string]*MonthBucket{}
	for _, t := range SelectTransactions(txs, mode) {
		m := monthKey(t.Date)
		b, ok := buckets[m]
		if !ok {
			b = &MonthBucket{Month: m, Income: decimal.Zero, Spend: decimal.Zero}
			buckets[m] = b
		}
		if t.Amount.IsPositive() {
			b.Income = b.Income.Add(t.Amount)
		} else {
			b.Spend = b.Spend.Add(t.Amount.Abs())
		}
	}
	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > TrendMonths {
		out = out[len(out)-TrendMonths:]
	}
	return out
}

func monthKey(date string) string {
	if len(date) > 7 {
		return date[:7]
	}
	return date
}
