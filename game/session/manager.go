package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/tank-battle/game/engine"
	"github.com/wricardo/tank-battle/game/match"
	"github.com/wricardo/tank-battle/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrManagerClosed        = errors.New("session manager closed")
)

// IDLength is the length of generated session ids
const IDLength = 8

// StateListener receives every state update of every session
type StateListener func(sessionID string, state *engine.GameState)

// Option configures a Manager
type Option func(*Manager)

// WithStateListener registers the listener fed by every match loop
func WithStateListener(fn StateListener) Option {
	return func(m *Manager) {
		m.listener = fn
	}
}

// WithTickInterval overrides the per-config tick interval for new sessions.
// Zero or negative disables automatic stepping.
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.interval = &d
	}
}

// Manager handles game session lifecycle. Every session runs its own match
// loop goroutine, started by Create and stopped by Delete, cleanup or Close.
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
	listener StateListener
	interval *time.Duration
	logger   *log.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		sessions: make(map[string]*service.Session),
		logger:   log.WithField("component", "session"),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetStateListener replaces the listener for sessions created afterwards
func (m *Manager) SetStateListener(fn StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = fn
}

// Create creates a new session with the given ID and configuration and
// starts its match loop. An empty id is replaced by a generated one and an
// empty configID by the config name. The returned session is a copy.
func (m *Manager) Create(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	if strings.ContainsAny(id, "/ ") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	logger := m.logger.WithField("session", id)
	opts := []match.Option{match.WithLogger(logger)}
	if m.interval != nil {
		opts = append(opts, match.WithInterval(*m.interval))
	}
	if listener := m.listener; listener != nil {
		opts = append(opts, match.WithOnUpdate(func(state *engine.GameState) {
			listener(id, state)
		}))
	}
	loop := match.New(eng, opts...)

	if configID == "" {
		configID = config.Name
	}
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Loop:           loop,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[strings.ToLower(id)] = session

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := loop.Run(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("match loop exited")
		}
	}()

	logger.WithField("config", config.Name).Debug("session started")
	return snapshot(session), nil
}

// snapshot copies session metadata; callers never share the registry's
// entries
func snapshot(session *service.Session) *service.Session {
	s := *session
	return &s
}

// Get retrieves a copy of a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, "", config)
	}

	return nil, err
}

// List returns copies of all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, snapshot(session))
	}

	return result
}

// Delete stops a session's match loop and removes it
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Loop.Stop()
	delete(m.sessions, lowerID)
	m.logger.WithField("session", session.ID).Debug("session stopped")
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions stops and removes sessions that haven't been
// accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			session.Loop.Stop()
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.WithField("removed", removed).Info("expired sessions cleaned up")
	}
	return removed
}

// StartCleanup removes expired sessions every interval until ctx is done
func (m *Manager) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpiredSessions(maxAge)
		}
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every match loop and waits for them to exit. Create fails
// afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	for id, session := range m.sessions {
		session.Loop.Stop()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// generateSessionID returns a short lowercase id derived from a random UUID
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:IDLength]
		m.mu.RLock()
		exists := m.sessionExists(id)
		m.mu.RUnlock()
		if !exists {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive). Callers hold mu.
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
