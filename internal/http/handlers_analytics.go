package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/format"
	"fintrack/internal/query"
)

// RecentCount is how many transactions the dashboard lists.
const RecentCount = 5

type dashboard struct {
	Mode    core.Mode          `json:"mode"`
	Period  query.Period       `json:"period"`
	Recent  []core.Transaction `json:"recent"`
	Display map[string]string  `json:"display"`
}

type share struct {
	query.Slice
	Percent int64 `json:"percent"`
}

type breakdown struct {
	Total  string  `json:"total"`
	Slices []share `json:"slices"`
}

func newBreakdown(slices []query.Slice, symbol string) breakdown {
	pct := query.Percentages(slices)
	out := breakdown{Total: format.Money(query.Total(slices), symbol), Slices: make([]share, len(slices))}
	for i, s := range slices {
		out.Slices[i] = share{Slice: s, Percent: pct[i]}
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, version := s.ctrl.Snapshot()
	today := s.ctrl.Today()
	v, err := s.view("dashboard", version, []string{string(mode), today}, func() (any, error) {
		txs := query.FilterTransactions(doc.Transactions, query.Filter{Mode: mode})
		period := query.PeriodTotals(txs, query.SelectAccounts(doc.Accounts, mode), today)
		sym := doc.Settings.Currency
		return dashboard{
			Mode:   mode,
			Period: period,
			Recent: query.Recent(txs, RecentCount),
			Display: map[string]string{
				"netWorth":      format.Signed(period.NetWorth, sym),
				"totalAssets":   format.Money(period.Assets, sym),
				"totalDebt":     format.Money(period.Debt, sym),
				"monthlyIncome": format.Money(period.MonthlyIncome, sym),
				"monthlySpend":  format.Money(period.MonthlySpend, sym),
			},
		}, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := r.PathValue("view")
	doc, version := s.ctrl.Snapshot()

	var compute func() (any, error)
	switch name {
	case "spending":
		compute = func() (any, error) {
			return newBreakdown(query.CategorySpend(query.SelectTransactions(doc.Transactions, mode)), doc.Settings.Currency), nil
		}
	case "income":
		compute = func() (any, error) {
			return newBreakdown(query.IncomeBySource(query.SelectTransactions(doc.Transactions, mode)), doc.Settings.Currency), nil
		}
	case "trend":
		compute = func() (any, error) {
			return query.MonthlyTrend(doc.Transactions, mode), nil
		}
	case "accounts":
		compute = func() (any, error) {
			return query.AccountBalances(query.SelectAccounts(doc.Accounts, mode)), nil
		}
	default:
		writeError(w, r, fmt.Errorf("analytics view %q: %w", name, app.ErrNotFound))
		return
	}

	v, err := s.view("analytics/"+name, version, []string{string(mode)}, compute)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
