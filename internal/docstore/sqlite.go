package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// store is the SQLite-backed Store. All bodies live in a single documents
// table; filters are evaluated in process, which is fine at friends-group
// scale.
type store struct {
	db *sql.DB
	mu sync.RWMutex

	subsMu sync.Mutex
	subs   map[int]*subscription
	nextID int
}

type subscription struct {
	collection string
	filters    []Filter
	fn         Snapshot
}

// New creates a Store backed by the given database. The documents table must
// already exist (see migrations).
func New(db *sql.DB) Store {
	return &store{
		db:   db,
		subs: make(map[int]*subscription),
	}
}

func (s *store) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(ctx, collection, id)
}

func (s *store) getLocked(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, err
	}
	return decodeDocument(id, body)
}

func (s *store) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLocked(ctx, collection, filters)
}

func (s *store) queryLocked(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM documents WHERE collection = ? ORDER BY created_at, id", collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			log.Error("Failed to scan document row", "error", err, "collection", collection)
			continue
		}
		doc, err := decodeDocument(id, body)
		if err != nil {
			log.Error("Failed to decode document body", "error", err, "collection", collection, "id", id)
			continue
		}
		if matchesAll(doc, filters) {
			docs = append(docs, doc)
		}
	}
	return docs, rows.Err()
}

func (s *store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	body, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)", collection, id, string(body),
	)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.publish(collection)
	return id, nil
}

func (s *store) Update(ctx context.Context, collection, id string, updates map[string]any) error {
	s.mu.Lock()
	err := s.updateLocked(ctx, collection, id, updates)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(collection)
	return nil
}

// updateLocked is a read-modify-write on a single document. SQLite serializes
// writers, so within one store the document cannot change between the read
// and the write.
func (s *store) updateLocked(ctx context.Context, collection, id string, updates map[string]any) error {
	doc, err := s.getLocked(ctx, collection, id)
	if err != nil {
		return err
	}

	for path, value := range updates {
		if err := applyUpdate(doc.Fields, path, value); err != nil {
			return fmt.Errorf("apply update %q to %s/%s: %w", path, collection, id, err)
		}
	}

	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated_at = unixepoch() WHERE collection = ? AND id = ?",
		string(body), collection, id,
	)
	return err
}

func (s *store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id,
	)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(collection)
	return nil
}

func (s *store) Subscribe(collection string, filters []Filter, fn Snapshot) func() {
	sub := &subscription{collection: collection, filters: filters, fn: fn}

	s.subsMu.Lock()
	s.nextID++
	subID := s.nextID
	s.subs[subID] = sub
	s.subsMu.Unlock()

	// Deliver the current result set right away so subscribers never start
	// from an empty view.
	s.deliver(sub)

	return func() {
		s.subsMu.Lock()
		delete(s.subs, subID)
		s.subsMu.Unlock()
	}
}

// publish re-runs every subscribed query on the collection and pushes the
// result. Runs after the write lock is released.
func (s *store) publish(collection string) {
	s.subsMu.Lock()
	var targets []*subscription
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.subsMu.Unlock()

	for _, sub := range targets {
		s.deliver(sub)
	}
}

func (s *store) deliver(sub *subscription) {
	docs, err := s.Query(context.Background(), sub.collection, sub.filters...)
	if err != nil {
		log.Error("Failed to run subscribed query", "error", err, "collection", sub.collection)
		return
	}
	sub.fn(docs)
}

func decodeDocument(id, body string) (Document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// applyUpdate sets a value at a dotted path, creating intermediate maps as
// needed. ArrayUnion/ArrayRemove sentinels mutate the existing array in
// place.
func applyUpdate(fields map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	target := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := target[part].(map[string]any)
		if !ok {
			if existing, present := target[part]; present && existing != nil {
				return fmt.Errorf("path segment %q is not a map", part)
			}
			next = make(map[string]any)
			target[part] = next
		}
		target = next
	}
	leaf := parts[len(parts)-1]

	switch v := value.(type) {
	case arrayUnion:
		current, err := arrayAt(target, leaf)
		if err != nil {
			return err
		}
		for _, elem := range v.values {
			norm, err := normalizeValue(elem)
			if err != nil {
				return err
			}
			if !containsValue(current, norm) {
				current = append(current, norm)
			}
		}
		target[leaf] = current
	case arrayRemove:
		current, err := arrayAt(target, leaf)
		if err != nil {
			return err
		}
		kept := current[:0]
		for _, elem := range current {
			remove := false
			for _, victim := range v.values {
				norm, err := normalizeValue(victim)
				if err != nil {
					return err
				}
				if equalValue(elem, norm) {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, elem)
			}
		}
		target[leaf] = kept
	default:
		norm, err := normalizeValue(value)
		if err != nil {
			return err
		}
		target[leaf] = norm
	}
	return nil
}

func arrayAt(target map[string]any, key string) ([]any, error) {
	existing, present := target[key]
	if !present || existing == nil {
		return nil, nil
	}
	arr, ok := existing.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not an array", key)
	}
	return arr, nil
}

// normalizeValue round-trips a value through JSON so the stored body only
// ever contains plain JSON types, regardless of what callers pass in.
func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc Document, f Filter) bool {
	field := doc.Fields[f.Field]
	switch f.Op {
	case OpEqual:
		want, err := normalizeValue(f.Value)
		if err != nil {
			return false
		}
		return equalValue(field, want)
	case OpArrayContains:
		arr, ok := field.([]any)
		if !ok {
			return false
		}
		want, err := normalizeValue(f.Value)
		if err != nil {
			return false
		}
		return containsValue(arr, want)
	case OpIn:
		candidates, err := normalizeValue(f.Value)
		if err != nil {
			return false
		}
		arr, ok := candidates.([]any)
		if !ok {
			return false
		}
		return containsValue(arr, field)
	default:
		log.Warn("Unknown filter operator", "op", f.Op, "field", f.Field)
		return false
	}
}

func containsValue(arr []any, v any) bool {
	for _, elem := range arr {
		if equalValue(elem, v) {
			return true
		}
	}
	return false
}

func equalValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
