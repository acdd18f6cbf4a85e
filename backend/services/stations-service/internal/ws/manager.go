package ws

import "sync"

// Manager tracks one push connection per station.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewManager builds connection manager.
func NewManager() *Manager {
	return &Manager{connections: make(map[string]*Connection)}
}

// Add registers conn, closing any previous connection of the same station.
func (m *Manager) Add(conn *Connection) {
	m.mu.Lock()
	prev := m.connections[conn.StationID()]
	m.connections[conn.StationID()] = conn
	m.mu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
	}
}

// Remove drops conn if it is still the registered one.
func (m *Manager) Remove(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connections[conn.StationID()] == conn {
		delete(m.connections, conn.StationID())
	}
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// CloseAll closes every connection.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
}
