package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// Entity is implemented by documents embedding docstore.Meta.
type Entity interface {
	DocMeta() *docstore.Meta
}

// Model is a typed repository over one collection.
type Model[T any, PT interface {
	*T
	Entity
}] struct {
	store      docstore.Store
	collection string
	now        func() time.Time
}

// NewModel binds a repository to the collection at path.
func NewModel[T any, PT interface {
	*T
	Entity
}](store docstore.Store, collection string) *Model[T, PT] {
	return &Model[T, PT]{
		store:      store,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy that stamps timestamps from now.
func (m *Model[T, PT]) WithClock(now func() time.Time) *Model[T, PT] {
	cp := *m
	if now != nil {
		cp.now = now
	}
	return &cp
}

func (m *Model[T, PT]) Store() docstore.Store { return m.store }
func (m *Model[T, PT]) Collection() string    { return m.collection }

// Path returns the document path for id.
func (m *Model[T, PT]) Path(id string) string {
	return docstore.Join(m.collection, id)
}

// Get returns nil, nil when the document does not exist.
func (m *Model[T, PT]) Get(ctx context.Context, wc WriteContext, id string) (*T, error) {
	snap, err := wc.get(ctx, m.store, m.Path(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, fmt.Errorf("get %s: %w", m.Path(id), err))
	}
	out, err := decode[T, PT](snap)
	if err != nil {
		return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, err)
	}
	return out, nil
}

// GetList runs spec against the collection. A nil spec returns the default page.
func (m *Model[T, PT]) GetList(ctx context.Context, wc WriteContext, spec *querybuilder.Spec) ([]T, error) {
	return m.list(ctx, wc, spec.Apply(docstore.Collection(m.collection)))
}

// All reads the whole collection without a page limit. It is meant for small
// bounded collections such as a cart, where a truncated read would be wrong.
func (m *Model[T, PT]) All(ctx context.Context, wc WriteContext) ([]T, error) {
	return m.list(ctx, wc, docstore.Collection(m.collection))
}

func (m *Model[T, PT]) list(ctx context.Context, wc WriteContext, q docstore.Query) ([]T, error) {
	snaps, err := wc.query(ctx, m.store, q)
	if err != nil {
		return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, fmt.Errorf("list %s: %w", m.collection, err))
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		item, err := decode[T, PT](snap)
		if err != nil {
			return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, err)
		}
		out = append(out, *item)
	}
	return out, nil
}

// Count returns the number of documents in the collection.
func (m *Model[T, PT]) Count(ctx context.Context) (int, error) {
	n, err := m.store.Count(ctx, docstore.Collection(m.collection))
	if err != nil {
		return 0, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, fmt.Errorf("count %s: %w", m.collection, err))
	}
	return n, nil
}

// Create assigns an id when none is set and stamps both timestamps.
func (m *Model[T, PT]) Create(ctx context.Context, wc WriteContext, entity PT) error {
	meta := entity.DocMeta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := m.now()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now

	if err := wc.set(ctx, m.store, m.Path(meta.ID), entity); err != nil {
		return pkgerrors.Database(pkgerrors.ReasonCreateFailed, fmt.Errorf("create %s: %w", m.Path(meta.ID), err))
	}
	return nil
}

// Update applies a partial write and stamps updated_at. The document must exist.
func (m *Model[T, PT]) Update(ctx context.Context, wc WriteContext, id string, fields docstore.Fields) error {
	patch := make(docstore.Fields, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["updated_at"] = m.now()

	if err := wc.update(ctx, m.store, m.Path(id), patch); err != nil {
		return pkgerrors.Database(pkgerrors.ReasonUpdateFailed, fmt.Errorf("update %s: %w", m.Path(id), err))
	}
	return nil
}

func (m *Model[T, PT]) Delete(ctx context.Context, wc WriteContext, id string) error {
	if err := wc.delete(ctx, m.store, m.Path(id)); err != nil {
		return pkgerrors.Database(pkgerrors.ReasonDeleteFailed, fmt.Errorf("delete %s: %w", m.Path(id), err))
	}
	return nil
}

// DeleteList removes every document spec matches and returns how many were queued.
// Without a batch or transaction the deletes are committed together in one batch.
func (m *Model[T, PT]) DeleteList(ctx context.Context, wc WriteContext, spec *querybuilder.Spec) (int, error) {
	snaps, err := wc.query(ctx, m.store, spec.Apply(docstore.Collection(m.collection)))
	if err != nil {
		return 0, pkgerrors.Database(pkgerrors.ReasonDeleteFailed, fmt.Errorf("list %s: %w", m.collection, err))
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	target := wc
	var own docstore.Batch
	if !wc.IsTransactional() && !wc.IsBatched() {
		own = m.store.Batch()
		target = Batched(own)
	}
	for _, snap := range snaps {
		if err := target.delete(ctx, m.store, snap.Path()); err != nil {
			return 0, pkgerrors.Database(pkgerrors.ReasonDeleteFailed, err)
		}
	}
	if own != nil {
		if err := own.Commit(ctx); err != nil {
			return 0, pkgerrors.Database(pkgerrors.ReasonDeleteFailed, err)
		}
	}
	return len(snaps), nil
}

func decode[T any, PT interface {
	*T
	Entity
}](snap docstore.Snapshot) (*T, error) {
	var out T
	if err := snap.DataTo(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Path(), err)
	}
	if meta := PT(&out).DocMeta(); meta.ID == "" {
		meta.ID = snap.ID()
	}
	return &out, nil
}
