// Package connectivity is the single source of truth for "can we reach
// the network". The monitor itself is signal-agnostic; a Prober feeds it
// from a captive-portal-style check URL. Backend reachability is a
// separate question the sync engine answers by trying.
package connectivity

import "sync"

type listener struct {
	id int
	fn func(online bool)
}

// Monitor tracks the online/offline state and notifies subscribers on
// transitions only.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners []listener
}

// NewMonitor creates a monitor with the given initial state. The initial
// state is not announced; only transitions are.
func NewMonitor(initial bool) *Monitor {
	return &Monitor{online: initial}
}

// IsOnline returns the current snapshot.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange registers a listener called on every transition, in
// subscription order, and returns its unsubscribe function.
// Unsubscribing one listener does not affect the others.
func (m *Monitor) OnChange(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listener{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetOnline records a new observation. Listeners run synchronously when
// the value actually changes; steady-state observations are dropped.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	// Copy so listeners may subscribe/unsubscribe from inside a callback.
	snapshot := make([]listener, len(m.listeners))
	copy(snapshot, m.listeners)
	m.mu.Unlock()

	for _, l := range snapshot {
		l.fn(online)
	}
}
