package objstore

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailFor makes uploads of the listed paths fail, to exercise
	// partial-failure handling.
	FailFor map[string]error

	// FailAll makes every upload fail, regardless of path.
	FailAll error
}

// NewMemory creates an empty in-memory object store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Upload implements Store.
func (m *Memory) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return "", m.FailAll
	}
	if err, ok := m.FailFor[path]; ok {
		return "", err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = buf
	return "mem://" + path, nil
}

// Object returns a stored object's bytes, or nil.
func (m *Memory) Object(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[path]
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
