// Package identity tracks the provider the daemon is deriving
// conversations for.
package identity

import (
	"sync"
	"time"

	"github.com/matheus3301/carelink/internal/bus"
)

// Provider identifies the active care provider.
type Provider struct {
	ID   string
	Name string
}

// Manager holds the current provider and publishes identity.changed when
// it is swapped, so the sync engine re-derives against the new identity.
type Manager struct {
	mu      sync.RWMutex
	current Provider
	bus     *bus.Bus
}

// NewManager creates a manager starting with the given provider.
func NewManager(p Provider, b *bus.Bus) *Manager {
	return &Manager{current: p, bus: b}
}

// Current returns the active provider.
func (m *Manager) Current() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set swaps the active provider. A no-op when the provider is unchanged.
func (m *Manager) Set(p Provider) {
	m.mu.Lock()
	if m.current == p {
		m.mu.Unlock()
		return
	}
	m.current = p
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindIdentityChanged,
			Timestamp: time.Now(),
			Payload:   p,
		})
	}
}
