package service

import (
	"context"
	"sync"
	"time"

	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/monitoring"
	"github.com/lshigami/quizx/internal/store"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const defaultGenerationTimeout = 90 * time.Second

// SessionManager holds one live controller per client namespace.
type SessionManager interface {
	// Acquire returns the live controller for clientID, loading a fresh one
	// from the store when none is held.
	Acquire(clientID string) *SessionController
	Count() int
	Close()
}

type sessionManager struct {
	provider store.Provider
	deps     SessionDeps
	idleTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*SessionController
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSessionManager(
	lc fx.Lifecycle,
	cfg *config.Config,
	provider store.Provider,
	quizzes QuizSource,
	identity IdentityProvider,
	certificates CertificateGenerator,
) SessionManager {
	deps := SessionDeps{
		Policy:            NewQuotaPolicy(cfg),
		Quizzes:           quizzes,
		Identity:          identity,
		Certificates:      certificates,
		TickInterval:      cfg.Quiz.TickInterval,
		GenerationTimeout: defaultGenerationTimeout,
		Clock:             time.Now,
	}
	m := newSessionManager(provider, deps, cfg.Session.IdleTTL, time.Minute)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
	return m
}

func newSessionManager(provider store.Provider, deps SessionDeps, idleTTL, sweepEvery time.Duration) *sessionManager {
	m := &sessionManager{
		provider: provider,
		deps:     deps,
		idleTTL:  idleTTL,
		sessions: make(map[string]*SessionController),
		stop:     make(chan struct{}),
	}
	if idleTTL > 0 && sweepEvery > 0 {
		go m.janitor(sweepEvery)
	}
	return m
}

func (m *sessionManager) Acquire(clientID string) *SessionController {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[clientID]; ok && !c.Closed() {
		return c
	}
	c := NewSessionController(clientID, m.provider.Open(clientID), m.deps)
	m.sessions[clientID] = c
	monitoring.ActiveSessions.Set(float64(len(m.sessions)))
	log.Info().Str("sessionID", clientID).Msg("Session loaded")
	return c
}

func (m *sessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *sessionManager) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle(m.deps.Clock())
		}
	}
}

func (m *sessionManager) evictIdle(now time.Time) int {
	m.mu.Lock()
	var idle []*SessionController
	for id, c := range m.sessions {
		if now.Sub(c.LastSeen()) > m.idleTTL {
			idle = append(idle, c)
			delete(m.sessions, id)
		}
	}
	monitoring.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, c := range idle {
		c.Close()
		log.Info().Str("sessionID", c.ID()).Msg("Idle session evicted")
	}
	return len(idle)
}

func (m *sessionManager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*SessionController)
	monitoring.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
	log.Info().Int("sessions", len(sessions)).Msg("Session manager closed")
}
