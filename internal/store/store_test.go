package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, DocumentKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, DocumentKey, `{"users":[]}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, DocumentKey, `{"users":[1]}`); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	got, err := s.Get(ctx, DocumentKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != `{"users":[1]}` {
		t.Errorf("Get() = %q, want last written value", got)
	}
	if _, err := s.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() of unrelated key error = %v, want ErrNotFound", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.Set(cancelled, DocumentKey, "x"); err == nil {
		t.Errorf("Set() with cancelled context should fail")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	exerciseStore(t, s)

	if _, err := os.Stat(filepath.Join(dir, DocumentKey+".json")); err != nil {
		t.Errorf("expected value file on disk: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the value file, found %d entries", len(entries))
	}

	reopened, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got, err := reopened.Get(context.Background(), DocumentKey); err != nil || got != `{"users":[1]}` {
		t.Errorf("value did not survive reopen: %q, %v", got, err)
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	s, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := s.Set(context.Background(), "../escape", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if filepath.Dir(s.path("../escape")) != s.Dir() {
		t.Errorf("key escaped the data directory: %s", s.path("../escape"))
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "fintrack.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Set(context.Background(), DocumentKey, "persisted"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if got, err := s.Get(context.Background(), DocumentKey); err != nil || got != "persisted" {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file", Config{Type: FileBackend, DataDir: filepath.Join(dir, "files")}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "kv.db")}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.Create(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Create() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			defer res.Cleanup()
			exerciseStore(t, res.Store)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "/tmp/x"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != FileBackend || cfg.DataDir != "/tmp/x" {
		t.Errorf("unexpected store config %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unsupported backend")
	}
}
