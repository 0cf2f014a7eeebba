package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// ErrNoSession is returned for an unknown session ID.
var ErrNoSession = errors.New("session not found")

// Manager tracks the open sessions.
type Manager struct {
	mu       sync.RWMutex
	registry *tool.Registry
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID

	maxHistory int
	logger     zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxHistory bounds the undo depth of every session. Zero means
// unlimited.
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxHistory = n
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a manager that opens tools from reg.
func NewManager(reg *tool.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		sessions: make(map[uuid.UUID]*Session),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "session").Logger()
	return m
}

// Registry returns the registry sessions are opened from.
func (m *Manager) Registry() *tool.Registry {
	return m.registry
}

// Open starts a new session for the tool with the given slug.
// Every call creates a fresh session with an empty history.
func (m *Manager) Open(slug string) (*Session, error) {
	t, err := m.registry.Get(slug)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	s := newSession(t, m.maxHistory, m.logger)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.order = append(m.order, s.id)
	m.mu.Unlock()

	s.logger.Debug().Msg("session opened")
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNoSession)
	}
	return s, nil
}

// Close discards a session and its history.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNoSession)
	}
	delete(m.sessions, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	s.logger.Debug().Msg("session closed")
	return nil
}

// CloseAll discards every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	n := len(m.sessions)
	m.sessions = make(map[uuid.UUID]*Session)
	m.order = nil
	m.mu.Unlock()

	if n > 0 {
		m.logger.Debug().Int("count", n).Msg("sessions closed")
	}
}

// List returns the open sessions in the order they were opened.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sessions[id])
	}
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
