package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/app"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-file", "x.csv", "-account", "a1", "-amount", "4", "-delimiter", "tab"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if o.mapping.Amount != 4 || o.mapping.Date != 0 || o.delimiter != "tab" {
		t.Errorf("options = %+v", o)
	}
	if _, err := parseFlags([]string{"-file", "x.csv"}); err == nil {
		t.Error("missing -account should fail")
	}
	if _, err := parseFlags([]string{"-file", "x.csv", "-account", "a1", "-date", "-1"}); err == nil {
		t.Error("negative column should fail")
	}
}

func TestRun(t *testing.T) {
	st := store.NewMemory()
	ctrl := app.New(st, app.WithLogger(log.Discard()))
	path := writeFile(t, "date;desc;amount\n2025-03-01;Coffee;-2.80\n2025-03-02;;1\n2025-03-03;Refund;4\n")

	opts, err := parseFlags([]string{"-file", path, "-account", "a1", "-delimiter", ";"})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), ctrl, opts, log.Discard()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	doc, _ := ctrl.Snapshot()
	if len(doc.Transactions) != 7 {
		t.Errorf("transactions = %d, want 7", len(doc.Transactions))
	}
	if _, err := st.Get(context.Background(), store.DocumentKey); err != nil {
		t.Errorf("document not saved: %v", err)
	}
}

func TestRun_DryRunAndUnknownAccount(t *testing.T) {
	st := store.NewMemory()
	ctrl := app.New(st, app.WithLogger(log.Discard()))
	path := writeFile(t, "date,desc,amount\n2025-03-01,Coffee,-2.80\n")

	opts, _ := parseFlags([]string{"-file", path, "-account", "a1", "-dry-run"})
	if err := run(context.Background(), ctrl, opts, log.Discard()); err != nil {
		t.Fatalf("dry run error = %v", err)
	}
	if _, err := st.Get(context.Background(), store.DocumentKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("dry run saved the document: %v", err)
	}

	opts, _ = parseFlags([]string{"-file", path, "-account", "nope"})
	if err := run(context.Background(), ctrl, opts, log.Discard()); !errors.Is(err, app.ErrNotFound) {
		t.Errorf("error = %v, want app.ErrNotFound", err)
	}
}
