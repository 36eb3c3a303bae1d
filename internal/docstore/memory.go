package docstore

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used by tests and local development.
// Documents are loose field maps keyed by collection/id; list fields are
// []string.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]map[string]any
	profiles map[string]Profile
}

// NewMemory creates an empty in-memory document backend.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]map[string]any),
		profiles: make(map[string]Profile),
	}
}

func key(d Domain, id string) string {
	return d.Collection() + "/" + id
}

// Put seeds a document.
func (m *Memory) Put(d Domain, id string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	m.docs[key(d, id)] = doc
}

// Get returns a copy of a document's fields, or nil when absent.
func (m *Memory) Get(d Domain, id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key(d, id)]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// PutProfile seeds a user profile.
func (m *Memory) PutProfile(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

// ApplyPatch implements Store with the same merge semantics as the
// server: array-union for multi-valued fields, replace otherwise.
func (m *Memory) ApplyPatch(ctx context.Context, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key(p.Domain, p.DocumentID)]
	if !ok {
		return ErrNotFound
	}

	switch StrategyFor(p.Field) {
	case ArrayUnion:
		list, _ := doc[p.Field].([]string)
		found := false
		for _, v := range list {
			if v == p.URL {
				found = true
				break
			}
		}
		if !found {
			doc[p.Field] = append(list, p.URL)
		}
	default:
		doc[p.Field] = p.URL
	}

	if p.Extra != nil {
		for k, v := range p.Extra.Fields() {
			doc[k] = v
		}
	}
	return nil
}

// GetProfile implements Store.
func (m *Memory) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
