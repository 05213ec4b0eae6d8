package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/format"
)

type potView struct {
	core.Pot
	Progress float64 `json:"progress"`
	Display  string  `json:"display"`
}

func (s *Server) handleListPots(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.ctrl.Snapshot()
	out := make([]potView, len(doc.Pots))
	for i, p := range doc.Pots {
		out[i] = potView{
			Pot:      p,
			Progress: p.Progress(),
			Display:  format.Money(p.Current, doc.Settings.Currency) + " / " + format.Money(p.Target, doc.Settings.Currency),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePot(w http.ResponseWriter, r *http.Request) {
	var p core.Pot
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.Name = sanitizeInput(p.Name)
	created, err := s.ctrl.AddPot(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type potAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleAddToPot(w http.ResponseWriter, r *http.Request) {
	var req potAmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.ctrl.AddToPot(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, potView{Pot: p, Progress: p.Progress()})
}

func (s *Server) handleDeletePot(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeletePot(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
