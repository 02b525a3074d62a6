// Package session manages the set of live broadcast sessions hosted by
// this process, one engine per session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/audit"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/battle"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/engine"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/rng"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/pkg/scorefeed"
)

// ErrSessionNotFound is returned when a session id is unknown
var ErrSessionNotFound = errors.New("session not found")

// ManagerConfig tunes new sessions. A non-empty FeedURL wires every
// battle to the remote opponent score feed and the simulator stays off.
type ManagerConfig struct {
	Engine           engine.Config
	SimulateOpponent bool
	OpponentChance   float64
	OpponentMin      int64
	OpponentMax      int64
	FeedURL          string
	FeedAPIKey       string
	FeedPollInterval time.Duration
}

// Manager owns the live sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Engine
	cfg      ManagerConfig
	rng      *rng.Service
	feed     *scorefeed.Client
	audit    *audit.Service
}

// NewManager creates a session manager. auditSvc may be nil.
func NewManager(cfg ManagerConfig, rngSvc *rng.Service, auditSvc *audit.Service) *Manager {
	var feed *scorefeed.Client
	if cfg.FeedURL != "" {
		feed = scorefeed.NewClient(&scorefeed.ClientConfig{
			BaseURL:      cfg.FeedURL,
			APIKey:       cfg.FeedAPIKey,
			PollInterval: cfg.FeedPollInterval,
		})
		logrus.WithField("url", cfg.FeedURL).Info("opponent score feed enabled")
	}
	return &Manager{
		sessions: make(map[string]*engine.Engine),
		cfg:      cfg,
		rng:      rngSvc,
		feed:     feed,
		audit:    auditSvc,
	}
}

// Create starts a new broadcast session and returns its engine
func (m *Manager) Create(broadcaster string, hooks engine.Hooks) *engine.Engine {
	id := uuid.New().String()

	var sim *battle.Simulator
	if m.feed == nil && m.cfg.SimulateOpponent && m.rng != nil {
		sim = battle.NewSimulator(m.rng, m.cfg.OpponentChance, m.cfg.OpponentMin, m.cfg.OpponentMax)
	}

	eng := engine.New(id, broadcaster, m.cfg.Engine, sim, m.feed, m.audit, hooks)

	m.mu.Lock()
	m.sessions[id] = eng
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session":     id,
		"broadcaster": broadcaster,
	}).Info("session created")
	m.audit.Log(context.Background(), audit.EventSessionCreated, domain.SeverityInfo,
		"session created for "+broadcaster, nil, audit.WithSession(id))

	return eng
}

// Get returns a session's engine
func (m *Manager) Get(id string) (*engine.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eng, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return eng, nil
}

// Close shuts a session down and removes it
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	eng, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	eng.Close()

	logrus.WithField("session", id).Info("session closed")
	m.audit.Log(context.Background(), audit.EventSessionClosed, domain.SeverityInfo,
		"session closed", nil, audit.WithSession(id))
	return nil
}

// List returns summaries of the live sessions
func (m *Manager) List() []domain.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.SessionInfo, 0, len(m.sessions))
	for _, eng := range m.sessions {
		out = append(out, domain.SessionInfo{
			ID:          eng.ID(),
			Broadcaster: eng.Broadcaster(),
			StartedAt:   eng.StartedAt(),
			BattleMode:  eng.BattleState().Mode,
		})
	}
	return out
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ReapIdle closes sessions with no activity for longer than maxIdle.
// Returns the number of sessions reaped.
func (m *Manager) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	var stale []string
	for id, eng := range m.sessions {
		if eng.LastActivity().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.Close(id); err == nil {
			logrus.WithField("session", id).Info("idle session reaped")
		}
	}
	return len(stale)
}

// CloseAll shuts every session down, for process shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*engine.Engine)
	m.mu.Unlock()

	for _, eng := range sessions {
		eng.Close()
	}
}
