// Package worker reacts to document change events outside the request path.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// BackupWriter stores a snapshot of a document version.
type BackupWriter interface {
	Write(ctx context.Context, doc *core.Document, version uint64) (string, error)
}

// Mirror publishes the document to an external ledger.
type Mirror interface {
	Sync(ctx context.Context, doc *core.Document) error
}

// SyncWorker reads the saved document after each change and hands it to
// the configured sinks. Either sink may be nil.
type SyncWorker struct {
	store   store.Store
	key     string
	backups BackupWriter
	mirror  Mirror
	logger  *log.Logger
	events  *log.StructuredLogger
}

func NewSyncWorker(s store.Store, key string, backups BackupWriter, mirror Mirror, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWorker)
	return &SyncWorker{
		store:   s,
		key:     key,
		backups: backups,
		mirror:  mirror,
		logger:  logger,
		events:  log.NewStructuredLogger(logger),
	}
}

// HandleSyncMessage processes one change event. Events for other keys are
// acknowledged and ignored.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DocumentChangedMessage) error {
	if msg.Key != w.key {
		w.logger.WarnContext(ctx, "Ignoring change for unknown document",
			log.FieldStorageKey, msg.Key, log.FieldVersion, msg.Version)
		return nil
	}
	w.logger.InfoContext(ctx, "Processing document change",
		log.FieldOperation, log.OpConsume,
		log.FieldCommand, msg.Command,
		log.FieldVersion, msg.Version)
	return w.sync(ctx, msg.Version)
}

// StartupSync pushes the stored document once so sinks catch up on events
// missed while the worker was down. A missing document is not an error.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	err := w.sync(ctx, 0)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.InfoContext(ctx, "No stored document on startup", log.FieldStorageKey, w.key)
		return nil
	}
	return err
}

func (w *SyncWorker) sync(ctx context.Context, version uint64) error {
	raw, err := w.store.Get(ctx, w.key)
	if err != nil {
		return fmt.Errorf("get document from storage: %w", err)
	}
	doc, err := core.Decode([]byte(raw))
	if err != nil {
		return err
	}

	var errs []error
	if w.backups != nil {
		if _, err := w.backups.Write(ctx, doc, version); err != nil {
			w.events.LogError(ctx, "Failed to write backup", err, log.ComponentBackup, log.OpBackup,
				log.NewFields().With(log.FieldVersion, version))
			errs = append(errs, fmt.Errorf("write backup: %w", err))
		}
	}
	if w.mirror != nil {
		if err := w.mirror.Sync(ctx, doc); err != nil {
			w.events.LogError(ctx, "Failed to mirror document", err, log.ComponentSheets, log.OpMirror,
				log.NewFields().With(log.FieldVersion, version))
			errs = append(errs, fmt.Errorf("mirror document: %w", err))
		}
	}
	return errors.Join(errs...)
}
