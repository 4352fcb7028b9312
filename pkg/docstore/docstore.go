// Package docstore defines the document-store surface the repositories are
// written against. Paths are slash separated: even segment counts address
// documents ("users/u1"), odd counts address collections ("users/u1/cart").
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by point reads and updates against missing documents.
var ErrNotFound = errors.New("docstore: document not found")

// ErrReadAfterWrite is returned when a transaction reads after it has buffered a write.
var ErrReadAfterWrite = errors.New("docstore: transaction reads must precede writes")

// Meta is the header every stored document carries.
type Meta struct {
	ID        string    `firestore:"id" json:"id"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// DocMeta exposes the header so generic code can stamp ids and timestamps.
func (m *Meta) DocMeta() *Meta { return m }

// Fields is a partial document used by Update. Keys may be dotted field paths.
type Fields map[string]any

// Increment is an atomic numeric transform usable as a Fields value.
type Increment int64

// Snapshot is a read document.
type Snapshot interface {
	ID() string
	Path() string
	DataTo(v any) error
}

// Tx is a read-then-write unit. Writes are buffered until the enclosing
// RunTransaction commits, and reads are not allowed once a write is buffered.
type Tx interface {
	Get(path string) (Snapshot, error)
	Query(q Query) ([]Snapshot, error)
	Set(path string, data any) error
	Update(path string, fields Fields) error
	Delete(path string) error
}

// Batch groups writes that commit together without a preceding read.
type Batch interface {
	Set(path string, data any)
	Update(path string, fields Fields)
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}

// TxFunc is the body of a transaction. It may be invoked more than once on contention.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is implemented by the Firestore adapter and the in-memory store.
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	Count(ctx context.Context, q Query) (int, error)
	Set(ctx context.Context, path string, data any) error
	Update(ctx context.Context, path string, fields Fields) error
	Delete(ctx context.Context, path string) error
	RunTransaction(ctx context.Context, fn TxFunc) error
	Batch() Batch
	Ping(ctx context.Context) error
	Close() error
}

// Join builds a path from segments, skipping empty ones.
func Join(segments ...string) string {
	clean := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(strings.TrimSpace(s), "/")
		if s == "" {
			continue
		}
		clean = append(clean, s)
	}
	return strings.Join(clean, "/")
}

// Split returns the parent collection path and the document id of a document path.
func Split(path string) (collection, id string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// CollectionID returns the last segment of a collection path.
func CollectionID(collection string) string {
	_, id := Split(collection)
	return id
}
