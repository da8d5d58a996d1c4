// Package session keeps one FilterState per dashboard viewer over a shared,
// read-only Table. Every mutation recomputes the view and the aggregates
// before it returns.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplydash/internal/engine"
	"supplydash/internal/models"
)

// ErrSessionNotFound is returned for unknown or reaped session ids.
var ErrSessionNotFound = errors.New("session not found")

// Snapshot is the state of a session at one point in time.
type Snapshot struct {
	ID        string                `json:"id"`
	Filters   engine.FilterState    `json:"filters"`
	Dashboard *models.DashboardData `json:"dashboard"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Session owns one FilterState and the dashboard derived from it.
type Session struct {
	id    string
	table *engine.Table
	now   func() time.Time

	mu        sync.Mutex
	state     engine.FilterState
	dashboard *models.DashboardData
	touched   time.Time
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// SetProductType changes the product type filter and recomputes.
func (s *Session) SetProductType(value string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetProductType(value)
	return s.recompute()
}

// SetLocation changes the location filter and recomputes.
func (s *Session) SetLocation(value string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetLocation(value)
	return s.recompute()
}

// Apply replaces both filters and recomputes.
func (s *Session) Apply(state engine.FilterState) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = engine.NewFilterState(state.ProductType, state.Location)
	return s.recompute()
}

// Update edits the filters in place and recomputes, atomically.
func (s *Session) Update(fn func(*engine.FilterState)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.recompute()
}

// Snapshot returns the current state without recomputing.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	return s.snapshot()
}

// recompute must be called with mu held.
func (s *Session) recompute() Snapshot {
	view := engine.ComputeFilteredView(s.table, s.state)
	s.dashboard = engine.Summarize(view, s.state)
	s.touched = s.now()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Filters:   s.state,
		Dashboard: s.dashboard,
		UpdatedAt: s.touched,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Manager tracks live sessions.
type Manager struct {
	table  *engine.Table
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. A zero ttl keeps sessions until deleted.
func NewManager(table *engine.Table, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		table:    table,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session with both filters on "All".
func (m *Manager) Create() *Session {
	s := &Session{
		id:    uuid.NewString(),
		table: m.table,
		now:   m.now,
	}
	s.mu.Lock()
	s.recompute()
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Debug("Session created", zap.String("session", s.id))
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle for longer than the ttl and returns how many went.
func (m *Manager) Reap(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.logger.Info("Reaped idle sessions", zap.Int("count", n), zap.Int("live", len(m.sessions)))
	}
	return n
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			m.Reap(t)
		}
	}
}
