package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("imp%d", n)
	}
}

func TestMapFiltersRows(t *testing.T) {
	grid := [][]string{
		{"h1", "h2", "h3"},
		{"2025-01-01", "Coffee", "-3.50"},
		{"", "", ""},
		{"2025-01-02", "", "10"},
	}
	got := Map(grid, Mapping{Date: 0, Description: 1, Amount: 2}, "a1", core.Personal, sequentialIDs())
	if len(got) != 1 {
		t.Fatalf("expected exactly one transaction, got %d: %+v", len(got), got)
	}
	tx := got[0]
	if tx.Description != "Coffee" || !tx.Amount.Equal(decimal.RequireFromString("-3.50")) || tx.Type != core.Expense {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if tx.ID != "imp1" || tx.AccountID != "a1" || !tx.IsPersonal || tx.Date != "2025-01-01" {
		t.Fatalf("unexpected metadata %+v", tx)
	}
	if tx.Category != core.DefaultCategory || tx.SubCategory != DefaultSubCategory {
		t.Fatalf("unexpected category %q/%q", tx.Category, tx.SubCategory)
	}
}

func TestMapBusinessAndShortRows(t *testing.T) {
	grid := [][]string{
		{"amount", "desc"},
		{"£1,250.00", " Invoice 42 "},
		{"12"},
	}
	got := Map(grid, Mapping{Date: 5, Description: 1, Amount: 0}, "a5", core.Business, sequentialIDs())
	if len(got) != 1 {
		t.Fatalf("expected one transaction, got %+v", got)
	}
	if got[0].IsPersonal || got[0].Type != core.Income || got[0].Description != "Invoice 42" || got[0].Date != "" {
		t.Fatalf("unexpected transaction %+v", got[0])
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("unexpected amount %s", got[0].Amount)
	}
}

func TestMapHeaderOnly(t *testing.T) {
	if got := Map([][]string{{"a", "b", "c"}}, DefaultMapping(), "a1", core.Personal, nil); len(got) != 0 {
		t.Fatalf("expected no transactions, got %+v", got)
	}
	if got := Map(nil, DefaultMapping(), "a1", core.Personal, nil); got == nil {
		t.Fatalf("expected empty non-nil result")
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"-3.50":     "-3.5",
		"£12.00":    "12",
		"1,234.56":  "1234.56",
		"1.2.3":     "1.2",
		"1-2":       "1",
		"-":         "0",
		".":         "0",
		"":          "0",
		"abc":       "0",
		".5":        "0.5",
		"-.25":      "-0.25",
		"7.":        "7",
		"USD -9.99": "-9.99",
	}
	for in, want := range cases {
		if got := ParseAmount(in); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestReadGrid(t *testing.T) {
	input := "date,desc,amount\r\n2025-01-01,Coffee,-3.50\n\n2025-01-02,Lunch,-8\n"
	grid, err := ReadGrid(strings.NewReader(input), ',', 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"date", "desc", "amount"},
		{"2025-01-01", "Coffee", "-3.50"},
		{"2025-01-02", "Lunch", "-8"},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Fatalf("ReadGrid() = %v, want %v", grid, want)
	}
	if h := Header(grid); !reflect.DeepEqual(h, want[0]) {
		t.Fatalf("Header() = %v", h)
	}
	if Header(nil) != nil {
		t.Fatalf("expected nil header for empty grid")
	}
}

func TestReadGridPreviewLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("date;desc;amount\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "2025-01-%02d;row %d;-%d\n", i+1, i, i+1)
	}
	grid, err := ReadGrid(strings.NewReader(b.String()), ';', PreviewLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != PreviewLines {
		t.Fatalf("expected %d lines, got %d", PreviewLines, len(grid))
	}
	if grid[1][1] != "row 0" {
		t.Fatalf("unexpected split %v", grid[1])
	}
}

func TestMappingValidate(t *testing.T) {
	if err := DefaultMapping().Validate(); err != nil {
		t.Fatalf("default mapping invalid: %v", err)
	}
	if err := (Mapping{Date: -1}).Validate(); !errors.Is(err, ErrInvalidMapping) {
		t.Fatalf("expected ErrInvalidMapping, got %v", err)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{";", ';', false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"|", '|', false},
		{";;", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDelimiter(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
