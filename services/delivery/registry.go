package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSessionIdleTimeout = 30 * time.Minute

// RegistryConfig holds the per-session engine template and reaper settings.
type RegistryConfig struct {
	Engine      EngineConfig
	IdleTimeout time.Duration
	ReapSpec    string // cron spec for the idle reaper, "@every 1m" by default
}

type cartSession struct {
	engine *Engine
	cancel context.CancelFunc
}

// Registry keeps one running Engine per live cart session.
type Registry struct {
	ctx     context.Context
	catalog CatalogProvider
	stores  StoreFactory
	cfg     RegistryConfig
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*cartSession
	cron     *cron.Cron
}

func NewRegistry(ctx context.Context, catalog CatalogProvider, stores StoreFactory, cfg RegistryConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultSessionIdleTimeout
	}
	if cfg.ReapSpec == "" {
		cfg.ReapSpec = "@every 1m"
	}
	return &Registry{
		ctx:      ctx,
		catalog:  catalog,
		stores:   stores,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*cartSession),
		cron:     cron.New(),
	}
}

// NewSessionID returns a fresh cart session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID accepts only uuid-shaped session ids.
func ValidateSessionID(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSessionID, err)
	}
	return nil
}

// Open returns the engine of sessionID, starting one if needed.
func (r *Registry) Open(sessionID string) (SessionEngine, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		select {
		case <-s.engine.Done():
			delete(r.sessions, sessionID)
		default:
			return s.engine, nil
		}
	}
	if err := r.ctx.Err(); err != nil {
		return nil, ErrEngineClosed
	}

	cfg := r.cfg.Engine
	cfg.SessionID = sessionID
	engine := NewEngine(cfg, r.catalog, r.stores(sessionID), r.logger)

	ctx, cancel := context.WithCancel(r.ctx)
	r.sessions[sessionID] = &cartSession{engine: engine, cancel: cancel}
	go engine.Run(ctx)

	r.logger.Debug("opened cart session", zap.String("sessionID", sessionID))
	return engine, nil
}

// Close tears a session down. The persisted selection survives.
func (r *Registry) Close(sessionID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.cancel()
	<-s.engine.Done()
	r.logger.Debug("closed cart session", zap.String("sessionID", sessionID))
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ReapIdle closes unobserved sessions with no interaction since now-IdleTimeout.
func (r *Registry) ReapIdle(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var idle []string
	for id, s := range r.sessions {
		if !s.engine.Observed() && s.engine.LastActive().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	reaped := 0
	for _, id := range idle {
		if r.Close(id) {
			reaped++
		}
	}
	if reaped > 0 {
		r.logger.Info("reaped idle cart sessions", zap.Int("count", reaped))
	}
	return reaped
}

// Start schedules the idle reaper.
func (r *Registry) Start() error {
	if _, err := r.cron.AddFunc(r.cfg.ReapSpec, func() { r.ReapIdle(time.Now()) }); err != nil {
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop halts the reaper and tears down every session.
func (r *Registry) Stop() {
	<-r.cron.Stop().Done()

	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Close(id)
	}
}
