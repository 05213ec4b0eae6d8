package http

import (
	"bytes"
	"net/http"
	"strconv"

	"fintrack/internal/app"
	"fintrack/internal/backup"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// view serves a derived value from the cache for the current version.
func (s *Server) view(name string, version uint64, params []string, fn func() (any, error)) (any, error) {
	return cache.GetOrCompute[any](s.views, cache.Key(name, version, params...), fn)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, version := s.ctrl.Snapshot()
	NewJSONResponse(doc).Header("ETag", etag(version)).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.ctrl.Export(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", backup.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ctrl.Reset(r.Context(), req.Confirm); err != nil {
		writeError(w, r, err)
		return
	}
	doc, _ := s.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":   core.Categories.Groups(),
		"accountTypes": core.AccountTypes(),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch app.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Currency != nil {
		v := sanitizeInput(*patch.Currency)
		patch.Currency = &v
	}
	settings, err := s.ctrl.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func etag(version uint64) string {
	return `W/"v` + strconv.FormatUint(version, 10) + `"`
}
