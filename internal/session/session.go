// Package session keeps per-session engine state for hosts that talk to the
// engine over a long-lived connection (the MCP server).
//
// The engine itself is stateless; a session is the "most recently returned
// State" a single-threaded UI would otherwise hold. Updates run under one
// lock so concurrent tool calls see last-writer-wins semantics, never a torn
// state.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/engine"
	"github.com/HendryAvila/neurosym/internal/report"
)

// ErrSessionNotFound is returned by Reset for an id that was never used.
var ErrSessionNotFound = errors.New("session not found")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Session is one analysis session: the engine state plus the last
// parameter snapshot the host validated.
type Session struct {
	ID         string            `json:"id"`
	State      engine.State      `json:"state"`
	Parameters report.Parameters `json:"parameters"`
	Revision   int               `json:"revision"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}

// Store defines session access for tools. Abstracted for testability (DIP).
type Store interface {
	Get(id string) Session
	Update(id string, fn func(Session) (Session, error)) (Session, error)
	List() []string
	Reset(id string) error
}

// Manager is the in-memory Store.
type Manager struct {
	engine *engine.Engine
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// NewManager creates a Manager whose new sessions start from eng.NewState().
func NewManager(eng *engine.Engine, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine:   eng,
		logger:   logger,
		sessions: make(map[string]Session),
	}
}

// Engine returns the engine sessions are evaluated with.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Get returns the session, creating it on first use.
func (m *Manager) Get(id string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id).clone()
}

// Update applies fn to the session atomically. If fn returns an error the
// session is left unchanged. The stored session is a copy of what fn
// returned, so callers cannot alias it afterwards.
func (m *Manager) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.getLocked(id)
	next, err := fn(current.clone())
	if err != nil {
		m.logger.Debug("session update rejected",
			zap.String("session", id),
			zap.Error(err),
		)
		return current.clone(), err
	}

	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Revision = current.Revision + 1
	next.UpdatedAt = timeNow().UTC().Format(time.RFC3339)
	m.sessions[id] = next.clone()

	m.logger.Debug("session updated",
		zap.String("session", id),
		zap.Int("revision", next.Revision),
		zap.Int("formulas", len(next.State.Formulas)),
	)
	return next.clone(), nil
}

// List returns the ids of all sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset discards a session; the next Get starts it fresh.
func (m *Manager) Reset(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Info("session reset", zap.String("session", id))
	return nil
}

func (m *Manager) getLocked(id string) Session {
	s, ok := m.sessions[id]
	if ok {
		return s
	}
	now := timeNow().UTC().Format(time.RFC3339)
	s = Session{
		ID:         id,
		State:      m.engine.NewState(),
		Parameters: report.Parameters{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.sessions[id] = s
	m.logger.Info("session started", zap.String("session", id))
	return s
}

func (s Session) clone() Session {
	s.State = s.State.Clone()
	s.Parameters = s.Parameters.Clone()
	return s
}
