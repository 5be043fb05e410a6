package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It is used by tests and by memory:// DSNs.
type Memory struct {
	mu   sync.RWMutex
	docs map[Path]Document
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Path]Document)}
}

func (m *Memory) Get(ctx context.Context, path Path) (Document, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (m *Memory) Set(ctx context.Context, path Path, doc Document) error {
	if err := path.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = clone(doc)
	return nil
}

func (m *Memory) Delete(ctx context.Context, path Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
	return nil
}

func (m *Memory) Children(ctx context.Context, parent Path) ([]Entry, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []Entry
	for p, doc := range m.docs {
		if p.Parent() == parent {
			entries = append(entries, Entry{Key: p.Base(), Doc: clone(doc)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (m *Memory) GenerateID(ctx context.Context, parent Path) (string, error) {
	return NewID()
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// NewID returns a time-ordered unique key.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	copy(out, doc)
	return out
}
