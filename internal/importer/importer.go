// Package importer turns delimited bank exports into transactions.
//
// Files are split naively on line breaks and on a single delimiter. Quoted
// fields and embedded delimiters are not supported.
package importer

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	// PreviewLines is the header plus ten data rows.
	PreviewLines = 11

	DefaultDelimiter = ','

	// DefaultSubCategory marks imported rows that still need review.
	DefaultSubCategory = "Unknown"
)

var (
	ErrInvalidMapping   = errors.New("invalid column mapping")
	ErrInvalidDelimiter = errors.New("delimiter must be one character")
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Mapping holds the zero based column index of each imported field.
type Mapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Amount      int `json:"amount"`
}

// DefaultMapping is date, description, amount in the first three columns.
func DefaultMapping() Mapping {
	return Mapping{Date: 0, Description: 1, Amount: 2}
}

func (m Mapping) Validate() error {
	if m.Date < 0 || m.Description < 0 || m.Amount < 0 {
		return fmt.Errorf("%w: column indices must not be negative", ErrInvalidMapping)
	}
	return nil
}

// ParseDelimiter reads a one character delimiter. "tab" and a literal \t
// mean a tab; an empty string means DefaultDelimiter.
func ParseDelimiter(v string) (rune, error) {
	switch v {
	case "":
		return DefaultDelimiter, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, ErrInvalidDelimiter
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r, nil
}

// ReadGrid reads at most maxLines non-empty lines (0 reads everything) and
// splits each on delim.
func ReadGrid(r io.Reader, delim rune, maxLines int) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if delim == 0 {
		delim = DefaultDelimiter
	}
	sep := string(delim)

	grid := [][]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		grid = append(grid, strings.Split(line, sep))
		if maxLines > 0 && len(grid) == maxLines {
			break
		}
	}
	return grid, nil
}

// Header returns the first row of grid, or nil when grid is empty.
func Header(grid [][]string) []string {
	if len(grid) == 0 {
		return nil
	}
	return grid[0]
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseAmount strips everything except digits, dots and minus signs and
// reads the longest leading number. Anything unreadable is zero.
func ParseAmount(raw string) decimal.Decimal {
	s := nonNumeric.ReplaceAllString(raw, "")
	end := numericPrefix(s)
	if end == 0 {
		return decimal.Zero
	}
	num := s[:end]
	if strings.HasPrefix(num, "-.") {
		num = "-0" + num[1:]
	} else if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// numericPrefix returns the length of the longest prefix of s matching
// -?digits(.digits)? with at least one digit.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	end := i
	if i < len(s) && s[i] == '.' {
		i++
		frac := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			frac++
		}
		if frac > 0 {
			end = i
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	return end
}

// Map converts every data row of grid to a transaction. The header row is
// skipped and rows with an empty description or a zero amount are dropped.
func Map(grid [][]string, m Mapping, accountID string, mode core.Mode, newID func() string) []core.Transaction {
	if newID == nil {
		newID = core.NewID
	}
	out := []core.Transaction{}
	if len(grid) < 2 {
		return out
	}
	for _, row := range grid[1:] {
		amount := ParseAmount(cell(row, m.Amount))
		desc := strings.TrimSpace(cell(row, m.Description))
		if desc == "" || amount.IsZero() {
			continue
		}
		typ := core.Income
		if amount.IsNegative() {
			typ = core.Expense
		}
		out = append(out, core.Transaction{
			ID:          newID(),
			AccountID:   accountID,
			Date:        strings.TrimSpace(cell(row, m.Date)),
			Description: desc,
			Amount:      amount,
			Category:    core.DefaultCategory,
			SubCategory: DefaultSubCategory,
			Type:        typ,
			IsPersonal:  mode.IsPersonal(),
		})
	}
	return out
}
