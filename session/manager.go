package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
	"github.com/giygas/formulary-browser/metrics"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many active sessions")
)

type entry struct {
	browser  *Browser
	lastSeen time.Time
}

// Manager owns the browsers of all clients. Idle browsers expire after ttl.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	store     interfaces.DataStore
	favorites interfaces.FavoritesStore
	opts      Options
	ttl       time.Duration
	max       int
	now       func() time.Time
}

// NewManager creates an empty manager. max <= 0 means no limit.
func NewManager(store interfaces.DataStore, favs interfaces.FavoritesStore, opts Options, ttl time.Duration, max int) *Manager {
	return &Manager{
		sessions:  make(map[string]*entry),
		store:     store,
		favorites: favs,
		opts:      opts,
		ttl:       ttl,
		max:       max,
		now:       time.Now,
	}
}

// Create starts a browser under a fresh id.
func (m *Manager) Create() (*Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	b := NewBrowser(id, m.store, m.favorites, m.opts)
	m.sessions[id] = &entry{browser: b, lastSeen: m.now()}
	metrics.SessionsActive.Set(float64(len(m.sessions)))

	logging.Debug("Session created", "session_id", id, "active", len(m.sessions))
	return b, nil
}

// Get returns the browser of id and marks it as seen.
func (m *Manager) Get(id string) (*Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.now()
	return e.browser, nil
}

// Delete stops and forgets the browser of id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.browser.Close()
	return nil
}

// Sweep removes the browsers idle for longer than the ttl and returns how
// many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Browser
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.browser)
			delete(m.sessions, id)
		}
	}
	active := len(m.sessions)
	m.mu.Unlock()

	for _, b := range expired {
		b.Close()
	}

	if len(expired) > 0 {
		metrics.SessionsExpired.Add(float64(len(expired)))
		logging.Info("Expired idle sessions", "expired", len(expired), "active", active)
	}
	metrics.SessionsActive.Set(float64(active))
	return len(expired)
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StopAll stops every browser, used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range sessions {
		e.browser.Close()
	}
	metrics.SessionsActive.Set(0)
}
