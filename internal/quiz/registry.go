package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound indicates an unknown or expired session handle.
var ErrSessionNotFound = errors.New("quiz session not found")

type entry struct {
	session   *Session
	createdAt time.Time
}

// Registry hands out quiz sessions by opaque handle so transport
// layers never share ambient state. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
	cfg      Config
}

// NewRegistry returns a Registry that builds sessions from cfg.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*entry),
		cfg:      cfg,
	}, nil
}

// Create allocates a fresh session and returns its handle.
func (r *Registry) Create() (uuid.UUID, *Session, error) {
	session, err := NewSession(r.cfg)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	r.mu.Lock()
	r.sessions[id] = &entry{session: session, createdAt: time.Now()}
	r.mu.Unlock()
	return id, session, nil
}

// Get resolves a handle to its session.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Delete removes a session. Deleting an unknown handle is a no-op.
func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PruneOlderThan removes sessions created before the cutoff and
// returns how many were dropped.
func (r *Registry) PruneOlderThan(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, e := range r.sessions {
		if e.createdAt.Before(cutoff) {
			delete(r.sessions, id)
			pruned++
		}
	}
	return pruned
}
