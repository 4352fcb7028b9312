package repo

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type writeMode int

const (
	modeDirect writeMode = iota
	modeBatched
	modeTransactional
)

// WriteContext selects how a repository operation reaches the store: directly,
// buffered in a batch, or inside a transaction. The zero value is Direct.
type WriteContext struct {
	mode  writeMode
	batch docstore.Batch
	tx    docstore.Tx
}

func Direct() WriteContext {
	return WriteContext{mode: modeDirect}
}

func Batched(b docstore.Batch) WriteContext {
	return WriteContext{mode: modeBatched, batch: b}
}

func Transactional(tx docstore.Tx) WriteContext {
	return WriteContext{mode: modeTransactional, tx: tx}
}

func (w WriteContext) IsBatched() bool       { return w.mode == modeBatched && w.batch != nil }
func (w WriteContext) IsTransactional() bool { return w.mode == modeTransactional && w.tx != nil }

func (w WriteContext) String() string {
	switch {
	case w.IsTransactional():
		return "transactional"
	case w.IsBatched():
		return "batched"
	}
	return "direct"
}

func (w WriteContext) get(ctx context.Context, store docstore.Store, path string) (docstore.Snapshot, error) {
	if w.IsTransactional() {
		return w.tx.Get(path)
	}
	return store.Get(ctx, path)
}

func (w WriteContext) query(ctx context.Context, store docstore.Store, q docstore.Query) ([]docstore.Snapshot, error) {
	if w.IsTransactional() {
		return w.tx.Query(q)
	}
	return store.Query(ctx, q)
}

func (w WriteContext) set(ctx context.Context, store docstore.Store, path string, data any) error {
	switch {
	case w.IsTransactional():
		return w.tx.Set(path, data)
	case w.IsBatched():
		w.batch.Set(path, data)
		return nil
	}
	return store.Set(ctx, path, data)
}

func (w WriteContext) update(ctx context.Context, store docstore.Store, path string, fields docstore.Fields) error {
	switch {
	case w.IsTransactional():
		return w.tx.Update(path, fields)
	case w.IsBatched():
		w.batch.Update(path, fields)
		return nil
	}
	return store.Update(ctx, path, fields)
}

func (w WriteContext) delete(ctx context.Context, store docstore.Store, path string) error {
	switch {
	case w.IsTransactional():
		return w.tx.Delete(path)
	case w.IsBatched():
		w.batch.Delete(path)
		return nil
	}
	return store.Delete(ctx, path)
}

// RunTransaction executes fn in a store transaction. Typed errors raised by fn
// propagate unchanged; anything else is reported as TRANSACTION_FAILED.
func RunTransaction(ctx context.Context, store docstore.Store, fn func(ctx context.Context, wc WriteContext) error) error {
	err := store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return fn(ctx, Transactional(tx))
	})
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Database(pkgerrors.ReasonTransactionFailed, err)
}

// Commit flushes a batch, reporting failures as TRANSACTION_FAILED.
func Commit(ctx context.Context, b docstore.Batch) error {
	if err := b.Commit(ctx); err != nil {
		return pkgerrors.Database(pkgerrors.ReasonTransactionFailed, err)
	}
	return nil
}
