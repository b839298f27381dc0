package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-memory Client used by tests and local development. It
// mirrors the PG semantics: absent documents read as (nil, nil), partial
// updates merge top-level fields, and every write notifies listeners.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]Document // "collection/id" -> document
	watch *watchRegistry

	// FailReads forces every read to return an error, for exercising the
	// degraded enrichment path.
	FailReads bool
}

func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[string]Document),
		watch: newWatchRegistry(),
	}
}

func (m *Memory) GetDocument(_ context.Context, path string) (Document, error) {
	if m.FailReads {
		return nil, fmt.Errorf("read %s: store unavailable", path)
	}
	collection, id, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[JoinPath(collection, id)]
	if !ok {
		return nil, nil
	}
	return cloneDoc(doc), nil
}

func (m *Memory) GetCollectionByFilter(_ context.Context, collection, field string, value interface{}) ([]Document, error) {
	if m.FailReads {
		return nil, fmt.Errorf("query %s: store unavailable", collection)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := fmt.Sprint(value)
	var keys []string
	for key, doc := range m.docs {
		c, _, err := SplitPath(key)
		if err != nil || c != collection {
			continue
		}
		if v, ok := doc[field]; ok && fmt.Sprint(v) == want {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var docs []Document
	for _, key := range keys {
		docs = append(docs, cloneDoc(m.docs[key]))
	}
	return docs, nil
}

func (m *Memory) Listen(path string, fn func(Event)) UnsubscribeFunc {
	return m.watch.add(path, fn)
}

func (m *Memory) SetDocument(_ context.Context, path string, doc Document) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	key := JoinPath(collection, id)
	m.mu.Lock()
	m.docs[key] = cloneDoc(doc)
	m.mu.Unlock()
	m.watch.notify(Event{Type: EventSet, Path: key, Doc: cloneDoc(doc)})
	return nil
}

func (m *Memory) UpdateDocument(_ context.Context, path string, fields Document) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	key := JoinPath(collection, id)
	m.mu.Lock()
	doc, ok := m.docs[key]
	if !ok {
		doc = Document{}
	}
	merged := cloneDoc(doc)
	for k, v := range fields {
		merged[k] = v
	}
	m.docs[key] = merged
	m.mu.Unlock()
	m.watch.notify(Event{Type: EventUpdate, Path: key, Doc: cloneDoc(merged)})
	return nil
}

func (m *Memory) DeleteDocument(_ context.Context, path string) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	key := JoinPath(collection, id)
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	m.watch.notify(Event{Type: EventDelete, Path: key})
	return nil
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
