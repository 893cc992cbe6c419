// Package sessions keeps ephemeral wallet-bridge sessions. Sessions hold live
// key material and are never persisted or serialized; a process restart drops
// them all, which is the intended failure mode.
package sessions

import (
	"sync"
	"time"

	"ziplink/internal/keys"
)

// Session associates an opaque bridge token with a derived keypair.
type Session struct {
	IdentitySubject string
	Email           string
	Keypair         *keys.Keypair
	CreatedAt       time.Time
}

type Store interface {
	Put(token string, s *Session)
	// Get returns the session for token, or false if it does not exist or
	// has expired. Reads do not extend the session lifetime.
	Get(token string) (*Session, bool)
	Delete(token string)
}

// InMemoryStore is a mutex-guarded token map with TTL expiry. Expired
// entries are swept opportunistically on insert.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *InMemoryStore) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.CreatedAt) > s.ttl
}

func (s *InMemoryStore) Put(token string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	// Removal never zeroes the keypair: a caller that fetched the session
	// before removal may still be signing with it, and the key is derived
	// from the identity subject rather than stored anywhere.
	for t, old := range s.sessions {
		if s.expired(old, now) {
			delete(s.sessions, t)
		}
	}
	s.sessions[token] = sess
}

func (s *InMemoryStore) Get(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || s.expired(sess, s.now()) {
		return nil, false
	}
	return sess, true
}

func (s *InMemoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
}
