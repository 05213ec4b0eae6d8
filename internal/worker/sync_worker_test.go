package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

type recordingBackups struct {
	versions []uint64
	docs     []*core.Document
	err      error
}

func (r *recordingBackups) Write(_ context.Context, doc *core.Document, version uint64) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.versions = append(r.versions, version)
	r.docs = append(r.docs, doc)
	return "backup.json", nil
}

func seededStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemory()
	data, err := core.Seed().Encode()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(context.Background(), store.DocumentKey, string(data)); err != nil {
		t.Fatal(err)
	}
	return s
}

func newMirror(t *testing.T) (*sheets.Mirror, *sheets.Memory) {
	t.Helper()
	values := sheets.NewMemory()
	m, err := sheets.New(values, "sheet-1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	return m, values
}

func TestHandleSyncMessage(t *testing.T) {
	backups := &recordingBackups{}
	mirror, values := newMirror(t)
	w := NewSyncWorker(seededStore(t), store.DocumentKey, backups, mirror, nil)

	msg := amqp.NewDocumentChangedMessage(store.DocumentKey, 7, "add_pot")
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	if len(backups.versions) != 1 || backups.versions[0] != 7 {
		t.Errorf("backup versions = %v, want [7]", backups.versions)
	}
	if got := len(backups.docs[0].Transactions); got != 5 {
		t.Errorf("backed up transactions = %d, want 5", got)
	}
	rows := values.Rows("sheet-1", mirror.Range())
	if len(rows) != 6 {
		t.Errorf("mirrored rows = %d, want header plus 5", len(rows))
	}
}

func TestHandleSyncMessage_OtherKeyIgnored(t *testing.T) {
	backups := &recordingBackups{}
	w := NewSyncWorker(seededStore(t), store.DocumentKey, backups, nil, nil)

	msg := amqp.NewDocumentChangedMessage("someone_else", 1, "reset")
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if len(backups.versions) != 0 {
		t.Errorf("backups written for foreign key: %v", backups.versions)
	}
}

func TestHandleSyncMessage_MissingDocument(t *testing.T) {
	w := NewSyncWorker(store.NewMemory(), store.DocumentKey, &recordingBackups{}, nil, nil)
	err := w.HandleSyncMessage(context.Background(), amqp.NewDocumentChangedMessage(store.DocumentKey, 1, "x"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestHandleSyncMessage_BackupFailureStillMirrors(t *testing.T) {
	boom := errors.New("disk full")
	mirror, values := newMirror(t)
	w := NewSyncWorker(seededStore(t), store.DocumentKey, &recordingBackups{err: boom}, mirror, nil)

	err := w.HandleSyncMessage(context.Background(), amqp.NewDocumentChangedMessage(store.DocumentKey, 2, "x"))
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
	if len(values.Rows("sheet-1", mirror.Range())) == 0 {
		t.Error("mirror should run even when the backup fails")
	}
}

func TestStartupSync(t *testing.T) {
	backups := &recordingBackups{}
	w := NewSyncWorker(seededStore(t), store.DocumentKey, backups, nil, nil)
	if err := w.StartupSync(context.Background()); err != nil {
		t.Fatalf("StartupSync() error = %v", err)
	}
	if len(backups.versions) != 1 || backups.versions[0] != 0 {
		t.Errorf("backup versions = %v, want [0]", backups.versions)
	}

	empty := NewSyncWorker(store.NewMemory(), store.DocumentKey, backups, nil, nil)
	if err := empty.StartupSync(context.Background()); err != nil {
		t.Errorf("StartupSync() on empty store error = %v, want nil", err)
	}
}
