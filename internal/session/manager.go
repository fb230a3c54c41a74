package session

import (
	"sync"

	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/players"
	"github.com/joslsmit/ratm-app/internal/pubsub"
)

// Manager hands out one Session per user, created on first use and kept for
// the life of the process. Sessions read through to the store, so managers on
// several instances sharing one backend stay consistent.
type Manager struct {
	mu       sync.Mutex
	store    kv.Store
	players  *players.Registry
	events   pubsub.Publisher
	sessions map[string]*Session
}

// NewManager creates a manager. events may be nil.
func NewManager(store kv.Store, registry *players.Registry, events pubsub.Publisher) *Manager {
	if registry == nil {
		registry = players.NewRegistry(players.StaticSource(nil))
	}
	return &Manager{
		store:    store,
		players:  registry,
		events:   events,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for userID, creating it if needed
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := newSession(userID, kv.WithNamespace(m.store, userID), m.players, m.events)
	m.sessions[userID] = s
	logger.Debug("Session loaded", "user", userID, "filled", s.Board.Snapshot().Filled())
	return s
}

// Players returns the shared reference registry
func (m *Manager) Players() *players.Registry {
	return m.players
}
