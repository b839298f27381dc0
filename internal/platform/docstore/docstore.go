// Package docstore provides access to the denormalized document database
// that backs the telehealth platform. Records are schemaless JSON documents
// addressed by "collection/id" paths; callers read, mutate, and subscribe to
// them through the Client interface without assuming any fixed shape.
package docstore

import (
	"context"
	"fmt"
	"strings"
)

// Document is a raw, schemaless database record.
type Document = map[string]interface{}

// EventType describes the kind of change delivered to listeners.
type EventType string

const (
	EventSet    EventType = "set"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is a change notification delivered to collection listeners.
type Event struct {
	Type EventType
	Path string
	Doc  Document
}

// UnsubscribeFunc tears down a listener registration. Safe to call more
// than once.
type UnsubscribeFunc func()

// Client is the database access surface consumed by the domain services.
//
// GetDocument returns (nil, nil) when the document is absent; an error means
// the read itself failed. Listen registers a callback for every change under
// a collection path and returns an unsubscribe handle; listener errors are
// logged, never surfaced.
type Client interface {
	GetDocument(ctx context.Context, path string) (Document, error)
	GetCollectionByFilter(ctx context.Context, collection, field string, value interface{}) ([]Document, error)
	Listen(path string, fn func(Event)) UnsubscribeFunc
	SetDocument(ctx context.Context, path string, doc Document) error
	UpdateDocument(ctx context.Context, path string, fields Document) error
	DeleteDocument(ctx context.Context, path string) error
}

// SplitPath splits a "collection/id" path into its parts.
func SplitPath(path string) (collection, id string, err error) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	return path[:i], path[i+1:], nil
}

// JoinPath builds a document path from a collection and an id.
func JoinPath(collection, id string) string {
	return strings.Trim(collection, "/") + "/" + id
}
