// Package docstore provides a small document database on top of SQLite. Each
// document is a JSON body stored under a (collection, id) key. It supports
// the handful of primitives the rest of the application needs: read one,
// query by simple filters, per-document field updates with dotted paths,
// array union/remove on scalar arrays, and a push-based subscription that
// delivers the full result set of a query on every underlying change.
//
// There are no multi-document transactions. Callers that need cross-document
// consistency must order their writes carefully and keep operations
// idempotent.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Op is a filter operator.
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
	OpIn            Op = "in"
)

// Filter restricts a query to documents whose field matches a value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Document is a stored document: its ID plus the decoded JSON body.
type Document struct {
	ID     string
	Fields map[string]any
}

// DataTo unmarshals the document body into v.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// FieldsOf converts a struct (or map) into the plain JSON field map the store
// persists.
func FieldsOf(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Snapshot receives the full current result set of a subscribed query.
type Snapshot func(docs []Document)

// Store is the document database boundary.
type Store interface {
	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns all documents in a collection matching every filter.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Create inserts a new document and returns its generated ID.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Update applies partial field updates to one document. Keys may be
	// dotted paths ("jerseyNumbers.p1") and values may be ArrayUnion or
	// ArrayRemove sentinels. Sibling fields are left untouched.
	Update(ctx context.Context, collection, id string, updates map[string]any) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Subscribe registers fn for a query. fn is invoked once immediately with
	// the current result set and again after every write to the collection.
	// The returned function cancels the subscription.
	Subscribe(collection string, filters []Filter, fn Snapshot) (unsubscribe func())
}

type arrayUnion struct{ values []any }

type arrayRemove struct{ values []any }

// ArrayUnion returns an update value that appends the given elements to an
// array field, skipping elements already present.
func ArrayUnion(values ...any) any { return arrayUnion{values: values} }

// ArrayRemove returns an update value that removes all occurrences of the
// given elements from an array field.
func ArrayRemove(values ...any) any { return arrayRemove{values: values} }
