package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// ErrTooManySessions is returned when the live session cap is reached.
var ErrTooManySessions = errors.New("too many active sessions")

// RegistryConfig bounds session lifetime and count.
type RegistryConfig struct {
	TTL         time.Duration
	MaxSessions int
}

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry creates, finds and expires sessions.
type Registry struct {
	cfg        RegistryConfig
	sessionCfg Config
	caps       Capabilities
	recorder   *metrics.Recorder
	logger     *slog.Logger
	base       *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

// NewRegistry wires the registry. Every session it creates talks to a remote
// client through a RelayPlayer and RelayRecognizer.
func NewRegistry(cfg RegistryConfig, sessionCfg Config, caps Capabilities, recorder *metrics.Recorder, logger *slog.Logger) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &Registry{
		cfg:        cfg,
		sessionCfg: sessionCfg,
		caps:       caps,
		recorder:   recorder,
		logger:     logger.With("component", "dashboard.registry"),
		base:       logger,
		now:        time.Now,
		sessions:   make(map[string]*registryEntry),
	}
}

// Create starts a new session, evicting expired ones first when at the cap.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	var expired []*Session
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		expired = r.evictLocked()
	}
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		closeAll(expired)
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	session := NewSession(id, r.sessionCfg, r.caps, NewRelayPlayer(), NewRelayRecognizer(), r.base)
	r.sessions[id] = &registryEntry{session: session, lastSeen: r.now()}
	r.recorder.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	closeAll(expired)
	r.logger.Info("session created", "session_id", id)
	return session, nil
}

// Get finds a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.session, true
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		r.recorder.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()
	if ok {
		entry.session.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	expired := r.evictLocked()
	r.mu.Unlock()
	closeAll(expired)
	if len(expired) > 0 {
		r.logger.Info("expired sessions evicted", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, entry := range r.sessions {
		all = append(all, entry.session)
		delete(r.sessions, id)
	}
	r.recorder.SetActiveSessions(0)
	r.mu.Unlock()
	closeAll(all)
}

func (r *Registry) evictLocked() []*Session {
	cutoff := r.now().Add(-r.cfg.TTL)
	var expired []*Session
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.session)
			delete(r.sessions, id)
		}
	}
	if len(expired) > 0 {
		r.recorder.SetActiveSessions(len(r.sessions))
	}
	return expired
}

func closeAll(sessions []*Session) {
	for _, s := range sessions {
		s.Close()
	}
}
