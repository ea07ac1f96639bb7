package dispatch

import (
	"sync"

	"github.com/gorilla/websocket"

	"crisis-service/internal/logging"
)

const maxConnectionsPerRole = 10

// WebSocketManager tracks handler WebSocket connections by role.
type WebSocketManager struct {
	connections map[string]map[*websocket.Conn]bool // role -> set of connections
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWebSocketManager(logger *logging.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// AddConnection registers a handler connection for a role.
func (m *WebSocketManager) AddConnection(role string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[role]; !exists {
		m.connections[role] = make(map[*websocket.Conn]bool)
	}
	if len(m.connections[role]) >= maxConnectionsPerRole {
		m.logger.Warnf("Max connections reached for role %s", role)
		return
	}
	m.connections[role][conn] = true
	m.logger.Infof("Added WebSocket connection for role %s (total: %d)", role, len(m.connections[role]))
}

// RemoveConnection drops a handler connection.
func (m *WebSocketManager) RemoveConnection(role string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if conns, exists := m.connections[role]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.connections, role)
		}
		m.logger.Infof("Removed WebSocket connection for role %s (remaining: %d)", role, len(conns))
	}
}

// SendToRole pushes a message to every connection registered for a role.
// Broken connections are dropped.
func (m *WebSocketManager) SendToRole(role string, message []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	conns, exists := m.connections[role]
	if !exists {
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("Failed to send WebSocket message to role %s: %v", role, err)
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(m.connections, role)
	}
}
