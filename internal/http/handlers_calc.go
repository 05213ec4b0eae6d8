package http

import (
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/calc"
	"fintrack/internal/core"
	"fintrack/internal/format"
	"fintrack/internal/query"
)

// Calculator defaults and bounds.
const (
	defaultPrincipal    = 10000
	defaultRate         = 5
	defaultYears        = 5
	defaultPensionYears = 20
	maxPensionYears     = 100
	defaultMonths       = 36
	defaultContribution = 500
	maxMonths           = 1200
)

func (s *Server) handleInterest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	principal, err := queryFloat(q, "principal", defaultPrincipal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rate, err := queryFloat(q, "rate", defaultRate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	years, err := queryFloat(q, "years", defaultYears)
	if err != nil {
		writeError(w, r, err)
		return
	}
	freq := calc.Annual
	if v := q.Get("compound"); v != "" {
		if freq, err = calc.ParseFrequency(v); err != nil {
			writeError(w, r, err)
			return
		}
	}
	result := calc.Compare(principal, rate, years, freq)
	if !result.Finite() {
		writeError(w, r, calc.ErrOverflow)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type pensionProjection struct {
	AccountID  string             `json:"accountId"`
	Name       string             `json:"name"`
	Type       core.AccountType   `json:"type"`
	Balance    float64            `json:"balance"`
	Rate       float64            `json:"rate"`
	Points     []calc.GrowthPoint `json:"points"`
	Snapshots  []calc.Snapshot    `json:"snapshots"`
	FinalValue string             `json:"finalValue"`
}

func (s *Server) handlePension(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := parseMode(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	years, err := queryInt(q, "years", defaultPensionYears)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if years > maxPensionYears {
		writeError(w, r, fmt.Errorf("%w: at most %d years", calc.ErrInvalidHorizon, maxPensionYears))
		return
	}
	startYear := time.Now().Year()
	if t, err := time.Parse(time.DateOnly, s.ctrl.Today()); err == nil {
		startYear = t.Year()
	}

	doc, _ := s.ctrl.Snapshot()
	accounts := query.GrowthAccounts(query.SelectAccounts(doc.Accounts, mode))
	out := make([]pensionProjection, 0, len(accounts))
	for _, a := range accounts {
		var rate *float64
		if a.InterestRate != nil {
			v := a.InterestRate.InexactFloat64()
			rate = &v
		}
		balance := a.Balance.InexactFloat64()
		points, err := calc.GrowthProjection(balance, rate, years, startYear)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, pensionProjection{
			AccountID:  a.ID,
			Name:       a.Name,
			Type:       a.Type,
			Balance:    balance,
			Rate:       calc.EffectiveRate(rate),
			Points:     points,
			Snapshots:  calc.GrowthSnapshots(balance, rate),
			FinalValue: format.Float(points[len(points)-1].Expected, a.Currency),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type projectionResult struct {
	Scenario    calc.Scenario     `json:"scenario"`
	Params      calc.Params       `json:"params"`
	Points      []calc.MonthPoint `json:"points"`
	Contributed float64           `json:"contributed"`
	Final       float64           `json:"final"`
	Growth      float64           `json:"growth"`
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := parseMode(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	scenario, err := calc.ParseScenario(q.Get("scenario"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	months, err := queryInt(q, "months", defaultMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if months < 0 || months > maxMonths {
		writeError(w, r, fmt.Errorf("%w: months must be between 0 and %d", calc.ErrInvalidHorizon, maxMonths))
		return
	}
	contribution, err := queryFloat(q, "contribution", defaultContribution)
	if err != nil {
		writeError(w, r, err)
		return
	}
	growth, err := queryFloat(q, "growth", defaultRate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, _ := s.ctrl.Snapshot()
	start, err := calc.StartingValue(scenario, query.SelectAccounts(doc.Accounts, mode))
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := calc.Params{
		Months:              months,
		MonthlyContribution: contribution,
		AnnualGrowthRate:    growth,
		StartingValue:       start,
	}

	full := calc.FullSeries(p)
	for _, pt := range full {
		if !calc.Finite(pt.Value) {
			writeError(w, r, calc.ErrOverflow)
			return
		}
	}
	sampled := calc.ContributionProjection(p)
	points := sampled
	if queryBool(q, "full") {
		points = full
	}
	last := sampled[len(sampled)-1]
	final := last.Value
	contributed := contribution * float64(last.Month)
	if !calc.Finite(contributed, final-start-contributed) {
		writeError(w, r, calc.ErrOverflow)
		return
	}
	writeJSON(w, http.StatusOK, projectionResult{
		Scenario:    scenario,
		Params:      p,
		Points:      points,
		Contributed: contributed,
		Final:       final,
		Growth:      final - start - contributed,
	})
}
