package session

import "sync"

// Manager hands out the per-unit session objects. Sessions are created
// lazily on first access and live until Remove.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a unit, or nil when none exists.
func (m *Manager) Get(unitID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[unitID]
}

// GetOrCreate returns the session for a unit, creating it on first use.
func (m *Manager) GetOrCreate(unitID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[unitID]; ok {
		return existing
	}
	created := newSession(unitID)
	m.sessions[unitID] = created
	return created
}

// Remove drops a unit's session entirely.
func (m *Manager) Remove(unitID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, unitID)
}

// UnitIDs lists the units with live sessions.
func (m *Manager) UnitIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
