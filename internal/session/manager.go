package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown session id
var ErrNotFound = errors.New("session not found")

// Manager owns every live session. Sessions live in memory only.
type Manager struct {
	deps    Deps
	idleTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. idleTTL <= 0 disables idle reaping.
func NewManager(deps Deps, idleTTL time.Duration) *Manager {
	return &Manager{
		deps:     deps,
		idleTTL:  idleTTL,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new idle session
func (m *Manager) Create() *Session {
	s := New(uuid.New().String(), m.deps)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	slog.Info("Session created", "session_id", s.ID())
	return s
}

// Get looks up a session by id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and forgets a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ReapIdle closes sessions unused since now minus the idle TTL and
// returns how many were removed.
func (m *Manager) ReapIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		slog.Info("Reaped idle sessions", "count", len(idle), "remaining", m.Len())
	}
	return len(idle)
}

// CloseAll closes every session, used on shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
