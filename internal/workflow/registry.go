package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"rewind-backend/internal/apperr"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 2 * time.Hour

// Registry owns the live sessions. Idle sessions older than the TTL are
// swept whenever a new one is created.
type Registry struct {
	capturer  *Capturer
	publisher Publisher
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(capturer *Capturer, publisher Publisher, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		capturer:  capturer,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	sess := newSession(uuid.NewString(), r.capturer, r.publisher, r.now)
	r.sessions[sess.id] = sess
	return sess
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session not found")
	}
	return sess, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, sess := range r.sessions {
		if !sess.busy() && sess.lastActive().Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}
