// Package sheets mirrors the transaction ledger into a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Header is the first row written to the mirrored range.
var Header = []any{"id", "date", "account", "description", "amount", "category", "sub_category", "type"}

const lastColumn = "H"

var ErrMissingCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")

// Values is the subset of the Sheets values API the mirror needs.
type Values interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

// Credentials selects how the service account is supplied. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, ErrMissingCredentials
	}
}

type Mirror struct {
	values        Values
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// New builds a mirror over an arbitrary Values implementation.
func New(values Values, spreadsheetID, sheet string, logger *log.Logger) (*Mirror, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheet) == "" {
		sheet = "Transactions"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Mirror{
		values:        values,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// NewGoogle connects to the Sheets API with service account credentials.
func NewGoogle(ctx context.Context, spreadsheetID, sheet string, creds Credentials, logger *log.Logger) (*Mirror, error) {
	raw, err := creds.load()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(&googleValues{svc: svc}, spreadsheetID, sheet, logger)
}

// Range is the A1 range the ledger occupies.
func (m *Mirror) Range() string {
	return fmt.Sprintf("%s!A1:%s", m.sheet, lastColumn)
}

// Sync replaces the mirrored range with the ledger in doc.
func (m *Mirror) Sync(ctx context.Context, doc *core.Document) error {
	rows := Rows(doc)
	rng := m.Range()
	if err := m.values.Clear(ctx, m.spreadsheetID, rng); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	if err := m.values.Update(ctx, m.spreadsheetID, rng, rows); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	m.logger.InfoContext(ctx, "Ledger mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldCount, len(rows)-1,
		"range", rng)
	return nil
}

// Rows renders the header and one row per transaction, in document order.
func Rows(doc *core.Document) [][]any {
	rows := make([][]any, 0, len(doc.Transactions)+1)
	rows = append(rows, Header)
	for _, t := range doc.Transactions {
		rows = append(rows, []any{
			t.ID,
			t.Date,
			doc.AccountName(t.AccountID),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.SubCategory,
			string(t.Type),
		})
	}
	return rows
}

type googleValues struct {
	svc *gsheet.Service
}

func (g *googleValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Range: rng, Values: rows}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
