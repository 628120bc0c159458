package connection

import (
	"errors"
	"time"
)

// Manager keeps one Client open across many requests and redials after a
// transport failure, e.g. when the server dropped the connection.
type Manager struct {
	addr    string
	timeout time.Duration
	current *Client
}

// NewManager creates a manager for addr. Nothing is dialed until the first
// request.
func NewManager(addr string, timeout time.Duration) *Manager {
	return &Manager{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	return m.addr
}

// Execute sends line on the current connection, dialing first if needed.
func (m *Manager) Execute(line string) (string, error) {
	if m.current == nil {
		c := NewClient(m.addr, m.timeout)
		if err := c.Connect(); err != nil {
			return "", err
		}
		m.current = c
	}

	reply, err := m.current.Execute(line)
	var serr *ServerError
	if err != nil && !errors.As(err, &serr) && !errors.Is(err, ErrInvalidLine) {
		m.Disconnect()
	}
	return reply, err
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.current != nil {
		_ = m.current.Close()
		m.current = nil
	}
}

// IsConnected returns true if a connection is open.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
