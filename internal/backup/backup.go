// Package backup writes document snapshots as JSON files.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// FileName is the attachment name of a manual export.
const FileName = "fintrack-backup.json"

const (
	prefix     = "fintrack-backup-"
	suffix     = ".json"
	stampStyle = "20060102T150405.000Z"
)

// ContentDisposition is the header value for serving an export.
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", FileName)
}

// Writer keeps a rolling set of timestamped backups in one directory.
type Writer struct {
	files  *store.File
	keep   int
	now    func() time.Time
	logger *log.Logger
}

// NewWriter creates dir if needed. keep <= 0 disables pruning.
func NewWriter(dir string, keep int, logger *log.Logger) (*Writer, error) {
	files, err := store.OpenFile(dir)
	if err != nil {
		return nil, fmt.Errorf("open backup directory: %w", err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Writer{
		files:  files,
		keep:   keep,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentBackup),
	}, nil
}

// Write stores doc as a new backup and prunes old ones. It returns the
// file name written.
func (w *Writer) Write(ctx context.Context, doc *core.Document, version uint64) (string, error) {
	data, err := doc.EncodeIndent()
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	key := fmt.Sprintf("%s%s-v%06d", prefix, w.now().UTC().Format(stampStyle), version)
	if err := w.files.Set(ctx, key, string(data)); err != nil {
		return "", err
	}

	pruned, err := w.prune()
	if err != nil {
		w.logger.WarnContext(ctx, "Backup prune failed", log.FieldError, err)
	}
	w.logger.InfoContext(ctx, "Backup written",
		log.FieldOperation, log.OpBackup,
		log.FieldVersion, version,
		"file", key+suffix,
		"size", humanize.Bytes(uint64(len(data))),
		"pruned", pruned)
	return key + suffix, nil
}

// List returns backup file names, oldest first.
func (w *Writer) List() ([]string, error) {
	entries, err := os.ReadDir(w.files.Dir())
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (w *Writer) prune() (int, error) {
	if w.keep <= 0 {
		return 0, nil
	}
	names, err := w.List()
	if err != nil {
		return 0, err
	}
	if len(names) <= w.keep {
		return 0, nil
	}
	var errs []error
	removed := 0
	for _, n := range names[:len(names)-w.keep] {
		if err := os.Remove(w.path(n)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.files.Dir(), name)
}
