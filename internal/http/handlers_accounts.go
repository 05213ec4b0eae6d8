package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/format"
	"fintrack/internal/query"
)

// accountInput is the create body. IsPersonal falls back to ?mode=.
type accountInput struct {
	Name         string           `json:"name"`
	Type         core.AccountType `json:"type"`
	Balance      decimal.Decimal  `json:"balance"`
	Currency     string           `json:"currency"`
	Color        string           `json:"color"`
	IsPersonal   *bool            `json:"isPersonal"`
	InterestRate *decimal.Decimal `json:"interestRate"`
	CreditLimit  *decimal.Decimal `json:"creditLimit"`
}

func (in accountInput) account(mode core.Mode) core.Account {
	personal := mode.IsPersonal()
	if in.IsPersonal != nil {
		personal = *in.IsPersonal
	}
	return core.Account{
		Name:         sanitizeInput(in.Name),
		Type:         in.Type,
		Balance:      in.Balance,
		Currency:     in.Currency,
		Color:        in.Color,
		IsPersonal:   personal,
		InterestRate: in.InterestRate,
		CreditLimit:  in.CreditLimit,
	}
}

type accountView struct {
	core.Account
	TypeLabel string `json:"typeLabel"`
	Display   string `json:"display"`
}

func accountViews(accounts []core.Account) []accountView {
	out := make([]accountView, len(accounts))
	for i, a := range accounts {
		out[i] = accountView{
			Account:   a,
			TypeLabel: format.AccountTypeLabel(string(a.Type)),
			Display:   format.Signed(a.Balance, a.Currency),
		}
	}
	return out
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, _ := s.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, accountViews(query.SelectAccounts(doc.Accounts, mode)))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in accountInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.ctrl.AddAccount(r.Context(), in.account(mode))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var patch app.AccountPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Name != nil {
		v := sanitizeInput(*patch.Name)
		patch.Name = &v
	}
	a, err := s.ctrl.UpdateAccount(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Rate == nil {
		writeError(w, r, badRequest("rate is required"))
		return
	}
	a, err := s.ctrl.SetInterestRate(r.Context(), r.PathValue("id"), *req.Rate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handlePartitions(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, version := s.ctrl.Snapshot()
	v, err := s.view("partitions", version, []string{string(mode)}, func() (any, error) {
		return query.PartitionAccounts(query.SelectAccounts(doc.Accounts, mode)), nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
