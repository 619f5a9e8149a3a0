/*
Package plaza contains the core logic for plaza viewing sessions: presenting
newly seen visitors to a viewer one at a time and streaming the result.

This file defines the Manager struct, which tracks every active viewing
session, creating them on WebSocket connect and cleaning them up when their
Run loops end.
*/
package plaza

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"plaza/internal/app/presence"
	"plaza/internal/pkg/logx"
	"plaza/internal/pkg/randx"
)

// Manager coordinates all active plaza viewing sessions.
type Manager struct {
	// sessions stores active Session instances keyed by session id.
	sessions map[string]*Session

	// registrar is handed to every session for the encounter side effect.
	registrar Registrar

	// today supplies the day key handed to every session.
	today presence.DayFunc

	// dwell is the display duration for sessions this manager creates.
	dwell time.Duration

	// mu protects concurrent access to the sessions map.
	mu sync.RWMutex

	// cleanup receives notifications from sessions whose Run loop ended.
	cleanup chan SessionCleanupMsg

	// wg waits for the cleanup goroutine during shutdown.
	wg sync.WaitGroup

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager and starts its cleanup loop. A zero dwell
// falls back to DwellDuration.
func NewManager(registrar Registrar, today presence.DayFunc, dwell time.Duration) *Manager {
	managerLogger := logx.Logger().With().Str("component", "PlazaManager").Logger()

	m := &Manager{
		sessions:  make(map[string]*Session),
		registrar: registrar,
		today:     today,
		dwell:     dwell,
		cleanup:   make(chan SessionCleanupMsg, 10),
		logger:    managerLogger,
	}

	m.wg.Add(1)

	go m.runCleanupLoop()

	return m
}

// runCleanupLoop removes sessions as their Run loops report completion.
func (m *Manager) runCleanupLoop() {
	defer m.wg.Done()

	m.logger.Info().Msg("Cleanup loop started.")

	for msg := range m.cleanup {
		m.deleteSession(msg.SessionID)
	}

	m.logger.Info().Msg("Cleanup loop stopped.")
}

// deleteSession drops the session from the map if still present.
func (m *Manager) deleteSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; ok {
		delete(m.sessions, sessionID)
		m.logger.Info().Str("session_id", sessionID).Msg("Session removed.")
	}
}

// CreateSession starts a viewing session for the given viewer and returns it.
// The session's Run loop is already going when this returns.
func (m *Manager) CreateSession(viewerID string) *Session {
	sessionID := randx.SessionID()

	session := NewSession(sessionID, viewerID, m.registrar, m.today, m.dwell, m.cleanup)

	m.mu.Lock()
	m.sessions[sessionID] = session
	m.mu.Unlock()

	go session.Run()

	m.logger.Info().
		Str("session_id", sessionID).
		Str("viewer_id", viewerID).
		Msg("New viewing session created and started.")

	return session
}

// GetSession retrieves a session by id, nil when unknown.
func (m *Manager) GetSession(sessionID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	return session
}

// SessionCount reports the number of active viewing sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Shutdown stops every session, closes the cleanup channel, and waits for the
// cleanup goroutine to exit.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down Manager...")

	m.mu.Lock()

	for _, session := range m.sessions {
		session.Stop()
	}
	m.sessions = nil

	m.mu.Unlock()

	close(m.cleanup)
	m.wg.Wait()

	m.logger.Info().Msg("Manager shutdown complete.")
}
