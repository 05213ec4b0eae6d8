package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/query"
)

type transactionInput struct {
	AccountID   string               `json:"accountId"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Category    string               `json:"category"`
	SubCategory string               `json:"subCategory"`
	Type        core.TransactionType `json:"type"`
	IsPersonal  *bool                `json:"isPersonal"`
}

func (in transactionInput) transaction(mode core.Mode) core.Transaction {
	personal := mode.IsPersonal()
	if in.IsPersonal != nil {
		personal = *in.IsPersonal
	}
	return core.Transaction{
		AccountID:   in.AccountID,
		Date:        in.Date,
		Description: sanitizeInput(in.Description),
		Amount:      in.Amount,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Type:        in.Type,
		IsPersonal:  personal,
	}
}

type transactionList struct {
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := parseMode(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, _ := s.ctrl.Snapshot()
	txs := query.FilterTransactions(doc.Transactions, query.Filter{
		Mode:     mode,
		Account:  q.Get("account"),
		Category: q.Get("category"),
		Search:   q.Get("q"),
	})
	writeJSON(w, http.StatusOK, transactionList{Count: len(txs), Transactions: txs})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.ctrl.AddTransaction(r.Context(), in.transaction(mode))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch app.TransactionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Description != nil {
		v := sanitizeInput(*patch.Description)
		patch.Description = &v
	}
	t, err := s.ctrl.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
