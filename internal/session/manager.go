package session

import (
	"log/slog"
	"sync"

	"github.com/ugaemi/horsingaround-server/internal/level"
)

// Manager manages all active sessions.
type Manager struct {
	sessions map[string]*Session // code -> session
	opts     Options
	mu       sync.RWMutex
}

// NewManager creates a new session manager. Every session it creates shares opts.
func NewManager(opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// CreateSession creates a new session on lvl and returns it.
func (m *Manager) CreateSession(lvl *level.Level) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool, len(m.sessions))
	for code := range m.sessions {
		existing[code] = true
	}

	code := GenerateCode(existing)
	s, err := NewSession(code, lvl, m.opts)
	if err != nil {
		return nil, err
	}
	m.sessions[code] = s

	slog.Info("session created", "code", code, "level", lvl.Name)
	return s, nil
}

// GetSession returns a session by its code.
func (m *Manager) GetSession(code string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[code]
}

// RemoveSession stops and removes a session by its code.
func (m *Manager) RemoveSession(code string) {
	m.mu.Lock()
	s, ok := m.sessions[code]
	delete(m.sessions, code)
	m.mu.Unlock()

	if ok {
		s.Stop()
		slog.Info("session removed", "code", code)
	}
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// FindSessionByClientID finds the session a client is attached to.
func (m *Manager) FindSessionByClientID(clientID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.HasClient(clientID) {
			return s
		}
	}
	return nil
}

// StopAll stops every session's tick loop.
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.Stop()
	}
}
