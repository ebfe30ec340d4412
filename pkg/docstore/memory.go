package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and local development. It
// honors the same stamp-guarded upsert semantics as the redis store.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string]envelope
	indexes map[string][]string

	// FailUpserts forces every Upsert to fail; lets tests exercise the
	// eventual-consistency and checkout failure paths.
	FailUpserts bool
}

// NewMemory returns an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{
		docs:    map[string]envelope{},
		indexes: map[string][]string{},
	}
}

func (m *Memory) Upsert(ctx context.Context, key string, doc any, stamp time.Time) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpserts {
		return fmt.Errorf("docstore: upsert %s: store unavailable", key)
	}
	if cur, ok := m.docs[key]; ok && cur.StampMS > stamp.UnixMilli() {
		return nil
	}
	m.docs[key] = envelope{StampMS: stamp.UnixMilli(), Doc: raw}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	m.mu.RLock()
	env, ok := m.docs[key]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(env.Doc, dest)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) AddToIndex(ctx context.Context, index, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.indexes[index] {
		if member == key {
			return nil
		}
	}
	m.indexes[index] = append(m.indexes[index], key)
	return nil
}

func (m *Memory) RemoveFromIndex(ctx context.Context, index, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.indexes[index]
	for i, member := range members {
		if member == key {
			m.indexes[index] = append(members[:i], members[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListIndex(ctx context.Context, index string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.indexes[index]...), nil
}

// Len reports the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
