// Package store persists opaque string values under string keys.
//
// The finance document is saved as one JSON blob under DocumentKey; the
// backends know nothing about its shape.
package store

import (
	"context"
	"errors"
)

// DocumentKey is where the whole finance document lives.
const DocumentKey = "fintrack_v2"

var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value contract. Get returns ErrNotFound for
// absent keys. Set overwrites, last write wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Type names a backend implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	FileBackend   Type = "file"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
