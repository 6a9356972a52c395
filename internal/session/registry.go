package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SharedNotice tells visitors that sessions from a Registry usually write
// to one backend.
const SharedNotice = "This ledger is shared with other visitors. Each save rereads it first, but if two saves happen at once the last one wins."

// Factory builds a fresh Session for a new visitor.
type Factory func(ctx context.Context) (*Session, error)

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// Registry keeps one Session per HTTP visitor, keyed by a random ID.
// Sessions idle for longer than the TTL are discarded.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry returns a registry that builds sessions with factory.
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock overrides the time source. For tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Get returns the live session for id, creating one under a new ID when id
// is empty, unknown or expired. The returned ID is the one to hand back to
// the client.
func (r *Registry) Get(ctx context.Context, id string) (string, *Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = now
		return id, e.sess, nil
	}

	sess, err := r.factory(ctx)
	if err != nil {
		return "", nil, err
	}
	newID := uuid.NewString()
	r.sessions[newID] = &entry{sess: sess, lastSeen: now}
	return newID, sess, nil
}

// End discards the session for id.
func (r *Registry) End(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		_ = e.sess.Close()
		delete(r.sessions, id)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close discards every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		_ = e.sess.Close()
		delete(r.sessions, id)
	}
}

func (r *Registry) sweepLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			_ = e.sess.Close()
			delete(r.sessions, id)
		}
	}
}
