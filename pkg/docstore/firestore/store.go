// Package firestore adapts cloud.google.com/go/firestore to docstore.Store.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcfirestore "cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const countAlias = "count"

type Store struct {
	client *gcfirestore.Client
	logg   *logger.Logger
}

var _ docstore.Store = (*Store)(nil)

// New dials Firestore for the configured project. A credentials file is
// optional; without one the client falls back to application default credentials.
func New(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firestore project id is required")
	}
	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := gcfirestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", cfg.ProjectID), "firestore client initialized")
	}
	return &Store{client: client, logg: logg}, nil
}

// Client exposes the underlying client for callers that need Firestore-only features.
func (s *Store) Client() *gcfirestore.Client {
	return s.client
}

func (s *Store) Get(ctx context.Context, path string) (docstore.Snapshot, error) {
	doc, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshot{doc: doc}, nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	fq, err := s.build(q)
	if err != nil {
		return nil, err
	}
	return collect(fq.Documents(ctx))
}

func (s *Store) Count(ctx context.Context, q docstore.Query) (int, error) {
	fq, err := s.build(q)
	if err != nil {
		return 0, err
	}
	result, err := fq.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	raw, ok := result[countAlias]
	if !ok {
		return 0, errors.New("firestore count aggregation missing result")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", raw)
	}
	return int(value.GetIntegerValue()), nil
}

func (s *Store) Set(ctx context.Context, path string, data any) error {
	_, err := s.client.Doc(path).Set(ctx, data)
	return mapError(err)
}

func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	_, err := s.client.Doc(path).Update(ctx, updates(fields))
	return mapError(err)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return mapError(err)
}

func (s *Store) RunTransaction(ctx context.Context, fn docstore.TxFunc) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		return fn(ctx, &transaction{store: s, tx: tx})
	})
	return mapError(err)
}

func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

// Ping issues a cheap read so readiness reflects credentials and network reachability.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return mapError(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) build(q docstore.Query) (gcfirestore.Query, error) {
	if q.Collection == "" {
		return gcfirestore.Query{}, errors.New("firestore query without collection")
	}
	var fq gcfirestore.Query
	if q.Group {
		fq = s.client.CollectionGroup(q.Collection).Query
	} else {
		fq = s.client.Collection(q.Collection).Query
	}

	for _, f := range q.Filters {
		fq = fq.WhereEntity(entityFilter(f))
	}
	for _, o := range q.Orders {
		dir := gcfirestore.Asc
		if o.Direction == docstore.Desc {
			dir = gcfirestore.Desc
		}
		fq = fq.OrderBy(o.Field, dir)
	}
	if len(q.Orders) == 0 && len(q.Bounds) > 0 {
		fq = fq.OrderBy(gcfirestore.DocumentID, gcfirestore.Asc)
	}
	for _, b := range q.Bounds {
		switch b.Kind {
		case docstore.StartAt:
			fq = fq.StartAt(b.Value)
		case docstore.StartAfter:
			fq = fq.StartAfter(b.Value)
		case docstore.EndAt:
			fq = fq.EndAt(b.Value)
		case docstore.EndBefore:
			fq = fq.EndBefore(b.Value)
		}
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq, nil
}

func entityFilter(f docstore.Filter) gcfirestore.EntityFilter {
	if !f.IsOr() {
		return gcfirestore.PropertyFilter{Path: f.Field, Operator: string(f.Op), Value: f.Value()}
	}
	or := gcfirestore.OrFilter{Filters: make([]gcfirestore.EntityFilter, 0, len(f.Values))}
	for _, v := range f.Values {
		or.Filters = append(or.Filters, gcfirestore.PropertyFilter{Path: f.Field, Operator: "==", Value: v})
	}
	return or
}

func updates(fields docstore.Fields) []gcfirestore.Update {
	out := make([]gcfirestore.Update, 0, len(fields))
	for path, value := range fields {
		if inc, ok := value.(docstore.Increment); ok {
			value = gcfirestore.Increment(int64(inc))
		}
		out = append(out, gcfirestore.Update{Path: path, Value: value})
	}
	return out
}

func collect(iter *gcfirestore.DocumentIterator) ([]docstore.Snapshot, error) {
	defer iter.Stop()
	var out []docstore.Snapshot
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, snapshot{doc: doc})
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	}
	return err
}

type snapshot struct {
	doc *gcfirestore.DocumentSnapshot
}

func (s snapshot) ID() string         { return s.doc.Ref.ID }
func (s snapshot) Path() string       { return relativePath(s.doc.Ref.Path) }
func (s snapshot) DataTo(v any) error { return s.doc.DataTo(v) }

// relativePath strips the "projects/<p>/databases/<d>/documents/" prefix.
func relativePath(full string) string {
	const marker = "/documents/"
	if idx := strings.Index(full, marker); idx >= 0 {
		return full[idx+len(marker):]
	}
	return full
}

type transaction struct {
	store *Store
	tx    *gcfirestore.Transaction
}

func (t *transaction) Get(path string) (docstore.Snapshot, error) {
	doc, err := t.tx.Get(t.store.client.Doc(path))
	if err != nil {
		return nil, mapError(err)
	}
	return snapshot{doc: doc}, nil
}

func (t *transaction) Query(q docstore.Query) ([]docstore.Snapshot, error) {
	fq, err := t.store.build(q)
	if err != nil {
		return nil, err
	}
	return collect(t.tx.Documents(fq))
}

func (t *transaction) Set(path string, data any) error {
	return t.tx.Set(t.store.client.Doc(path), data)
}

func (t *transaction) Update(path string, fields docstore.Fields) error {
	return t.tx.Update(t.store.client.Doc(path), updates(fields))
}

func (t *transaction) Delete(path string) error {
	return t.tx.Delete(t.store.client.Doc(path))
}

// batch buffers writes and commits them in a write-only transaction, which
// keeps them atomic without the deprecated WriteBatch API.
type batch struct {
	store *Store
	ops   []func(tx *gcfirestore.Transaction) error
}

func (b *batch) Set(path string, data any) {
	ref := b.store.client.Doc(path)
	b.ops = append(b.ops, func(tx *gcfirestore.Transaction) error {
		return tx.Set(ref, data)
	})
}

func (b *batch) Update(path string, fields docstore.Fields) {
	ref := b.store.client.Doc(path)
	ups := updates(fields)
	b.ops = append(b.ops, func(tx *gcfirestore.Transaction) error {
		return tx.Update(ref, ups)
	})
}

func (b *batch) Delete(path string) {
	ref := b.store.client.Doc(path)
	b.ops = append(b.ops, func(tx *gcfirestore.Transaction) error {
		return tx.Delete(ref)
	})
}

func (b *batch) Len() int { return len(b.ops) }

func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.store.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		for _, op := range b.ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err)
}
