package editor

import (
	"log/slog"
	"sync"
)

// Manager is the registry of open sessions, one per document id. Each entry
// carries a closer that flushes any pending auto-save work when the session
// is torn down.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	closer  func()
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*entry)}
}

// Put registers a session under its document id. closer may be nil.
func (m *Manager) Put(s *Session, closer func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.DocumentID()] = &entry{session: s, closer: closer}
}

func (m *Manager) Get(documentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[documentID]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Close removes the session and runs its closer, flushing pending saves.
func (m *Manager) Close(documentID string) {
	m.mu.Lock()
	e, ok := m.sessions[documentID]
	delete(m.sessions, documentID)
	m.mu.Unlock()

	if ok && e.closer != nil {
		e.closer()
	}
}

// Discard removes the session without running its closer. Used when the
// document itself is being deleted and a trailing save would resurrect it.
func (m *Manager) Discard(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, documentID)
}

// CloseAll tears down every open session, flushing pending saves. Called on
// shutdown before the HTTP server drains.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		if e.closer != nil {
			e.closer()
		}
	}
	slog.Info("all sessions closed", "count", len(entries))
}
