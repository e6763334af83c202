package composer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/notify"
	"github.com/sonicalchemist/api/internal/schema"
)

// Session is one visitor's composer. Toasts holds notifications until the
// next page render.
type Session struct {
	ID         string
	Controller *Controller
	Toasts     *notify.Recorder

	lastSeen time.Time
}

// Factory builds the controller for a new session. sink receives the
// session's notifications.
type Factory func(sessionID string, sink notify.Sink) *Controller

// Registry keeps composer sessions in memory and evicts idle ones.
type Registry struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating a new one with a fresh
// id when id is unknown.
func (r *Registry) GetOrCreate(id string) *Session {
	if s, ok := r.Get(id); ok {
		return s
	}

	s := &Session{
		ID:     uuid.New().String(),
		Toasts: notify.NewRecorder(),
	}
	s.Controller = r.factory(s.ID, s.Toasts)

	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	logger.Debug("Composer session created", logger.Fields{"session_id": s.ID})
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes and removes sessions idle for longer than the TTL.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Controller.Close()
	}
	if len(expired) > 0 {
		logger.Info("Evicted idle composer sessions", logger.Fields{"count": len(expired)})
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Controller.Close()
	}
}

// Broadcaster pushes session events to live connections.
type Broadcaster interface {
	SessionSink(sessionID string) notify.Sink
	BroadcastState(sessionID string, state interface{})
}

// SessionFactory builds controllers whose notifications go to the session's
// toasts, its live connections and the log, and whose transitions are
// broadcast to the session.
func SessionFactory(gen Generator, v *schema.Validator, policy Policy, b Broadcaster) Factory {
	return func(sessionID string, toasts notify.Sink) *Controller {
		sinks := notify.Fanout{toasts, notify.LogSink{Fields: logger.Fields{"session_id": sessionID}}}
		opts := []Option{WithPolicy(policy)}
		if b != nil {
			sinks = append(sinks, b.SessionSink(sessionID))
			opts = append(opts, WithObserver(func(st FormState) {
				b.BroadcastState(sessionID, st)
			}))
		}
		return NewController(gen, v, sinks, opts...)
	}
}
