package verify

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrWorkflowOpen is returned by Start when the device already has a
// workflow that has not reached a terminal state.
var ErrWorkflowOpen = errors.New("verify: a workflow is already open")

// Manager tracks the open verification workflow per device. At most one
// workflow may be open per device at a time; the conflict decision is made
// under the registry lock so concurrent starts cannot both succeed.
type Manager struct {
	mu     sync.Mutex
	active map[string]*Workflow
}

// NewManager creates an empty workflow registry.
func NewManager() *Manager {
	return &Manager{active: make(map[string]*Workflow)}
}

// Get returns the open workflow for a device, or nil.
func (m *Manager) Get(deviceID string) *Workflow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[deviceID]
}

// Start registers a workflow for a device. It refuses with ErrWorkflowOpen
// while a non-terminal workflow holds the slot; a stale terminal workflow
// whose removal raced is replaced silently.
func (m *Manager) Start(deviceID string, w *Workflow) error {
	m.mu.Lock()
	if existing, ok := m.active[deviceID]; ok && !existing.Snapshot().State.Terminal() {
		m.mu.Unlock()
		return ErrWorkflowOpen
	}
	m.active[deviceID] = w
	m.mu.Unlock()

	slog.Info("Verification workflow started", "device_id", deviceID, "medication_id", w.Medication().ID)
	return nil
}

// Remove unregisters a workflow once it reached a terminal state. It is a
// no-op if another workflow has already taken the slot.
func (m *Manager) Remove(deviceID string, w *Workflow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.active[deviceID]; ok && current == w {
		delete(m.active, deviceID)
		slog.Info("Verification workflow closed", "device_id", deviceID)
	}
}
