// Package store is a small document-store abstraction over named collections
// of JSON documents, with in-memory, Elasticsearch and Redis backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored record. Data holds JSON-compatible values only.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from a collection. Filters are ANDed. A zero
// Limit means no limit.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Collection is a named set of documents.
type Collection interface {
	Name() string
	Get(ctx context.Context, id string) (Document, error)
	Find(ctx context.Context, q Query) ([]Document, error)
	// Add stores data under a store-assigned id.
	Add(ctx context.Context, data map[string]any) (Document, error)
	// Update merges data into an existing document.
	Update(ctx context.Context, id string, data map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Store hands out collections.
type Store interface {
	Collection(name string) Collection
	// Driver names the backend, e.g. "memory".
	Driver() string
	Close() error
}

// Encode converts v to a JSON-compatible map.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var data map[string]any
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode fills v from a document, setting idField to the document id.
func Decode(doc Document, idField string, v any) error {
	data := make(map[string]any, len(doc.Data)+1)
	for k, val := range doc.Data {
		data[k] = val
	}
	if idField != "" {
		data[idField] = doc.ID
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}
