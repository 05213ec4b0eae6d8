// Package app owns the finance document and applies commands to it.
//
// Every command works on a deep copy of the current snapshot. When the
// command succeeds the copy becomes the current snapshot, the version is
// bumped, the document is saved and a change event is published.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Publisher announces saved document versions. Failures are logged only.
type Publisher interface {
	PublishDocumentChanged(ctx context.Context, key string, version uint64, command string) error
}

type nopPublisher struct{}

func (nopPublisher) PublishDocumentChanged(context.Context, string, uint64, string) error {
	return nil
}

// Controller serializes commands against one document.
type Controller struct {
	mu      sync.Mutex
	doc     *core.Document
	version uint64

	store     store.Store
	key       string
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	taxonomy  *core.Taxonomy
	now       func() time.Time
	newID     func() string
}

type Option func(*Controller)

// WithKey overrides store.DocumentKey.
func WithKey(key string) Option {
	return func(c *Controller) { c.key = key }
}

func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		if p != nil {
			c.publisher = p
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs sets the identifier generator.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// New returns a controller holding the seed document until Load is called.
func New(s store.Store, opts ...Option) *Controller {
	c := &Controller{
		doc:       core.Seed(),
		store:     s,
		key:       store.DocumentKey,
		publisher: nopPublisher{},
		logger:    log.New(log.DefaultConfig()),
		taxonomy:  core.Categories,
		now:       time.Now,
		newID:     core.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentApp)
	c.events = log.NewStructuredLogger(c.logger)
	return c
}

// Load replaces the current document with the stored one. A missing key
// keeps the seed. A document that cannot be decoded also leaves the seed
// in place and returns ErrCorruptDocument.
func (c *Controller) Load(ctx context.Context) error {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.InfoContext(ctx, "No stored document, starting from seed", log.FieldStorageKey, c.key)
		c.replace(core.Seed())
		return nil
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	doc, err := core.Decode([]byte(raw))
	if err != nil {
		c.replace(core.Seed())
		return fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	c.replace(doc)
	c.logger.InfoContext(ctx, "Document loaded",
		log.FieldStorageKey, c.key,
		"accounts", len(doc.Accounts),
		"transactions", len(doc.Transactions))
	return nil
}

func (c *Controller) replace(doc *core.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
}

// Snapshot returns a deep copy of the current document and its version.
func (c *Controller) Snapshot() (*core.Document, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone(), c.version
}

// Version returns the number of applied commands since start.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Key returns the storage key of the document.
func (c *Controller) Key() string {
	return c.key
}

// Export writes the document pretty printed.
func (c *Controller) Export(w io.Writer) error {
	doc, _ := c.Snapshot()
	data, err := doc.EncodeIndent()
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Save persists the current document without changing it.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persist(ctx, c.doc)
}

// apply runs fn on a copy of the document and commits the result.
func (c *Controller) apply(ctx context.Context, command string, fn func(doc *core.Document) error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.doc.Clone()
	if err := fn(next); err != nil {
		return c.version, err
	}
	c.doc = next
	c.version++
	version := c.version

	if err := c.persist(ctx, next); err != nil {
		c.events.LogError(ctx, "Failed to save document", err, log.ComponentStorage, log.OpSave,
			log.NewFields().WithCommand(command, version))
		return version, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	c.events.LogCommand(ctx, command, version, nil)

	if err := c.publisher.PublishDocumentChanged(ctx, c.key, version, command); err != nil {
		c.events.LogError(ctx, "Failed to publish document change", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithCommand(command, version))
	}
	return version, nil
}

func (c *Controller) persist(ctx context.Context, doc *core.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return c.store.Set(ctx, c.key, string(data))
}

// Today is the controller clock's date as YYYY-MM-DD.
func (c *Controller) Today() string {
	return c.now().Format(time.DateOnly)
}

// Reset replaces the document with the seed. confirm must be true.
func (c *Controller) Reset(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrResetUnconfirmed
	}
	_, err := c.apply(ctx, "reset", func(doc *core.Document) error {
		*doc = *core.Seed()
		return nil
	})
	return err
}
