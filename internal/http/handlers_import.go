package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
)

const maxUploadBytes = 10 << 20

type importForm struct {
	grid      [][]string
	mapping   importer.Mapping
	accountID string
	mode      core.Mode
}

// readImportForm parses the multipart upload and reads at most maxLines
// lines of the file (0 reads all of it).
func (s *Server) readImportForm(w http.ResponseWriter, r *http.Request, maxLines int) (importForm, error) {
	var f importForm
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return f, badRequest("expected a multipart form with a file field")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return f, badRequest("missing file")
	}
	defer file.Close()

	delim, err := importer.ParseDelimiter(r.FormValue("delimiter"))
	if err != nil {
		return f, badRequest(err.Error())
	}
	if f.mode, err = core.ParseMode(r.FormValue("mode")); err != nil {
		return f, err
	}
	def := importer.DefaultMapping()
	for _, col := range []struct {
		key string
		dst *int
		def int
	}{
		{"date", &f.mapping.Date, def.Date},
		{"description", &f.mapping.Description, def.Description},
		{"amount", &f.mapping.Amount, def.Amount},
	} {
		v := strings.TrimSpace(r.FormValue(col.key))
		if v == "" {
			*col.dst = col.def
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, badRequest(col.key + " must be a column index")
		}
		*col.dst = n
	}
	if err := f.mapping.Validate(); err != nil {
		return f, err
	}
	f.accountID = strings.TrimSpace(r.FormValue("account"))

	if f.grid, err = importer.ReadGrid(file, delim, maxLines); err != nil {
		return f, badRequest(err.Error())
	}
	return f, nil
}

type importPreview struct {
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
	Columns int        `json:"columns"`
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	f, err := s.readImportForm(w, r, importer.PreviewLines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := importPreview{Header: importer.Header(f.grid), Rows: [][]string{}}
	if len(f.grid) > 1 {
		p.Rows = f.grid[1:]
	}
	p.Columns = len(p.Header)
	writeJSON(w, http.StatusOK, p)
}

type importResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	f, err := s.readImportForm(w, r, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if f.accountID == "" {
		writeError(w, r, &app.ValidationError{Field: "account", Err: errors.New("account is required")})
		return
	}
	doc, _ := s.ctrl.Snapshot()
	if _, ok := doc.Account(f.accountID); !ok {
		writeError(w, r, fmt.Errorf("account %q: %w", f.accountID, app.ErrNotFound))
		return
	}

	txs := importer.Map(f.grid, f.mapping, f.accountID, f.mode, nil)
	n, err := s.ctrl.ImportTransactions(r.Context(), txs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := 0
	if len(f.grid) > 1 {
		rows = len(f.grid) - 1
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentImport).InfoContext(r.Context(), "Transactions imported",
		log.FieldOperation, log.OpImport,
		log.FieldAccountID, f.accountID,
		log.FieldCount, n)
	writeJSON(w, http.StatusOK, importResult{Imported: n, Skipped: rows - n})
}
