// Package memory is an in-process docstore.Store used by tests and local runs.
// Transactions are optimistic: read versions are checked at commit and the
// body is retried on conflict, mirroring Firestore's contention behaviour.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
)

const maxAttempts = 5

var (
	errConflict = errors.New("memory: transaction conflict")

	// ErrContention is returned when a transaction keeps conflicting past the retry budget.
	ErrContention = errors.New("memory: too much contention on transaction")
)

type document struct {
	data    map[string]any
	version int64
}

type Store struct {
	mu       sync.RWMutex
	docs     map[string]*document
	versions map[string]int64
	seq      int64
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		docs:     map[string]*document{},
		versions: map[string]int64{},
	}
}

func validateDocPath(path string) error {
	if path == "" {
		return errors.New("memory: empty document path")
	}
	if len(strings.Split(path, "/"))%2 != 0 {
		return fmt.Errorf("memory: %q is not a document path", path)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateDocPath(path); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, _, err := s.getLocked(path)
	return snap, err
}

func (s *Store) getLocked(path string) (*snapshot, int64, error) {
	doc, ok := s.docs[path]
	if !ok {
		return nil, s.versions[path], docstore.ErrNotFound
	}
	return newSnapshot(path, doc.data), doc.version, nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps, _, err := s.queryLocked(q)
	return snaps, err
}

func (s *Store) Count(ctx context.Context, q docstore.Query) (int, error) {
	snaps, err := s.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(snaps), nil
}

func (s *Store) Set(ctx context.Context, path string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.apply([]write{{kind: writeSet, path: path, data: data}})
}

func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.apply([]write{{kind: writeUpdate, path: path, fields: fields}})
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.apply([]write{{kind: writeDelete, path: path}})
}

func (s *Store) RunTransaction(ctx context.Context, fn docstore.TxFunc) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &transaction{store: s, reads: map[string]int64{}}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		err := s.commit(tx)
		if errors.Is(err, errConflict) {
			continue
		}
		return err
	}
	return ErrContention
}

func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) commit(tx *transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, version := range tx.reads {
		current := s.versions[path]
		if doc, ok := s.docs[path]; ok {
			current = doc.version
		}
		if current != version {
			return errConflict
		}
	}
	return s.applyLocked(tx.writes)
}

func (s *Store) apply(writes []write) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(writes)
}

// applyLocked stages every write before publishing so a failing write leaves the store untouched.
func (s *Store) applyLocked(writes []write) error {
	staged := map[string]*document{}
	deleted := map[string]bool{}

	current := func(path string) (*document, bool) {
		if deleted[path] {
			return nil, false
		}
		if doc, ok := staged[path]; ok {
			return doc, true
		}
		doc, ok := s.docs[path]
		return doc, ok
	}

	for _, w := range writes {
		if err := validateDocPath(w.path); err != nil {
			return err
		}
		switch w.kind {
		case writeSet:
			data, err := normalize(w.data)
			if err != nil {
				return err
			}
			staged[w.path] = &document{data: data}
			delete(deleted, w.path)
		case writeUpdate:
			doc, ok := current(w.path)
			if !ok {
				return fmt.Errorf("update %s: %w", w.path, docstore.ErrNotFound)
			}
			data := deepCopy(doc.data).(map[string]any)
			for field, value := range w.fields {
				if err := assign(data, field, value); err != nil {
					return fmt.Errorf("update %s: %w", w.path, err)
				}
			}
			staged[w.path] = &document{data: data}
		case writeDelete:
			delete(staged, w.path)
			deleted[w.path] = true
		}
	}

	for path := range deleted {
		s.seq++
		delete(s.docs, path)
		s.versions[path] = s.seq
	}
	for path, doc := range staged {
		s.seq++
		doc.version = s.seq
		s.docs[path] = doc
		s.versions[path] = s.seq
	}
	return nil
}

func (s *Store) queryLocked(q docstore.Query) ([]docstore.Snapshot, map[string]int64, error) {
	if q.Collection == "" {
		return nil, nil, errors.New("memory: query without collection")
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, nil, err
	}

	type candidate struct {
		path    string
		data    map[string]any
		version int64
	}
	var found []candidate
	for path, doc := range s.docs {
		if !inCollection(path, q) {
			continue
		}
		ok := true
		for _, f := range filters {
			if !matches(doc.data, f) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		hasOrderFields := true
		for _, o := range q.Orders {
			if _, present := lookup(doc.data, o.Field); !present {
				hasOrderFields = false
				break
			}
		}
		if !hasOrderFields {
			continue
		}
		found = append(found, candidate{path: path, data: doc.data, version: doc.version})
	}

	sort.SliceStable(found, func(i, j int) bool {
		for _, o := range q.Orders {
			a, _ := lookup(found[i].data, o.Field)
			b, _ := lookup(found[j].data, o.Field)
			c, _ := compare(a, b)
			if c == 0 {
				continue
			}
			if o.Direction == docstore.Desc {
				return c > 0
			}
			return c < 0
		}
		return found[i].path < found[j].path
	})

	cursorValue := func(c candidate) any {
		if len(q.Orders) == 0 {
			_, id := docstore.Split(c.path)
			return id
		}
		v, _ := lookup(c.data, q.Orders[0].Field)
		return v
	}
	desc := len(q.Orders) > 0 && q.Orders[0].Direction == docstore.Desc

	bounds := make([]docstore.Bound, 0, len(q.Bounds))
	for _, b := range q.Bounds {
		v, err := normalizeValue(b.Value)
		if err != nil {
			return nil, nil, err
		}
		bounds = append(bounds, docstore.Bound{Kind: b.Kind, Value: v})
	}

	snaps := make([]docstore.Snapshot, 0, len(found))
	reads := make(map[string]int64, len(found))
	for _, c := range found {
		if !withinBounds(cursorValue(c), bounds, desc) {
			continue
		}
		snaps = append(snaps, newSnapshot(c.path, c.data))
		reads[c.path] = c.version
		if q.Limit > 0 && len(snaps) == q.Limit {
			break
		}
	}
	return snaps, reads, nil
}

func normalizeFilters(in []docstore.Filter) ([]docstore.Filter, error) {
	out := make([]docstore.Filter, 0, len(in))
	for _, f := range in {
		values := make([]any, 0, len(f.Values))
		for _, v := range f.Values {
			nv, err := normalizeValue(v)
			if err != nil {
				return nil, err
			}
			values = append(values, nv)
		}
		out = append(out, docstore.Filter{Field: f.Field, Op: f.Op, Values: values})
	}
	return out, nil
}

func inCollection(path string, q docstore.Query) bool {
	parent, _ := docstore.Split(path)
	if !q.Group {
		return parent == q.Collection
	}
	return docstore.CollectionID(parent) == q.Collection
}

// withinBounds applies cursors in sort order, so a descending query flips the comparison.
func withinBounds(value any, bounds []docstore.Bound, desc bool) bool {
	for _, b := range bounds {
		c, ok := compare(value, b.Value)
		if !ok {
			return false
		}
		if desc {
			c = -c
		}
		switch b.Kind {
		case docstore.StartAt:
			if c < 0 {
				return false
			}
		case docstore.StartAfter:
			if c <= 0 {
				return false
			}
		case docstore.EndAt:
			if c > 0 {
				return false
			}
		case docstore.EndBefore:
			if c >= 0 {
				return false
			}
		}
	}
	return true
}

type snapshot struct {
	path string
	data map[string]any
}

func newSnapshot(path string, data map[string]any) *snapshot {
	return &snapshot{path: path, data: deepCopy(data).(map[string]any)}
}

func (s *snapshot) ID() string {
	_, id := docstore.Split(s.path)
	return id
}

func (s *snapshot) Path() string { return s.path }

func (s *snapshot) DataTo(v any) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

type writeKind int

const (
	writeSet writeKind = iota
	writeUpdate
	writeDelete
)

type write struct {
	kind   writeKind
	path   string
	data   any
	fields docstore.Fields
}

type transaction struct {
	store  *Store
	reads  map[string]int64
	writes []write
}

func (t *transaction) Get(path string) (docstore.Snapshot, error) {
	if len(t.writes) > 0 {
		return nil, docstore.ErrReadAfterWrite
	}
	if err := validateDocPath(path); err != nil {
		return nil, err
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	snap, version, err := t.store.getLocked(path)
	t.reads[path] = version
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (t *transaction) Query(q docstore.Query) ([]docstore.Snapshot, error) {
	if len(t.writes) > 0 {
		return nil, docstore.ErrReadAfterWrite
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	snaps, reads, err := t.store.queryLocked(q)
	if err != nil {
		return nil, err
	}
	for path, version := range reads {
		t.reads[path] = version
	}
	return snaps, nil
}

func (t *transaction) Set(path string, data any) error {
	t.writes = append(t.writes, write{kind: writeSet, path: path, data: data})
	return nil
}

func (t *transaction) Update(path string, fields docstore.Fields) error {
	t.writes = append(t.writes, write{kind: writeUpdate, path: path, fields: fields})
	return nil
}

func (t *transaction) Delete(path string) error {
	t.writes = append(t.writes, write{kind: writeDelete, path: path})
	return nil
}

type batch struct {
	store  *Store
	writes []write
}

func (b *batch) Set(path string, data any) {
	b.writes = append(b.writes, write{kind: writeSet, path: path, data: data})
}

func (b *batch) Update(path string, fields docstore.Fields) {
	b.writes = append(b.writes, write{kind: writeUpdate, path: path, fields: fields})
}

func (b *batch) Delete(path string) {
	b.writes = append(b.writes, write{kind: writeDelete, path: path})
}

func (b *batch) Len() int { return len(b.writes) }

func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b.writes) == 0 {
		return nil
	}
	return b.store.apply(b.writes)
}
