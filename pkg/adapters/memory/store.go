// Package memory provides an in-process session store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/session"
)

type record struct {
	session   session.Session
	expiresAt time.Time // zero means never
}

// Store implements session.Store in memory.
// Safe for concurrent use. Expired sessions are swept by Create at most once per TTL
// and by List.
type Store struct {
	data      map[string]record
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires sessions that have not been touched for ttl.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]record),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *Store) live(r record) bool {
	return r.expiresAt.IsZero() || s.now().Before(r.expiresAt)
}

// Create stores the session.
func (s *Store) Create(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now := s.now(); s.ttl > 0 && !now.Before(s.nextSweep) {
		s.sweep()
		s.nextSweep = now.Add(s.ttl)
	}
	s.data[sess.ID] = record{session: sess, expiresAt: s.expiry()}
	return nil
}

// sweep drops expired records. The caller holds the write lock.
func (s *Store) sweep() {
	for id, r := range s.data {
		if !s.live(r) {
			delete(s.data, id)
		}
	}
}

// Len reports the number of records held, expired ones not yet swept included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Get returns a live session.
func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok || !s.live(r) {
		return session.Session{}, domain.ErrSessionNotFound
	}
	return r.session, nil
}

// Touch refreshes LastSeen and restarts the TTL.
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[id]
	if !ok || !s.live(r) {
		delete(s.data, id)
		return domain.ErrSessionNotFound
	}
	r.session.LastSeen = at
	r.expiresAt = s.expiry()
	s.data[id] = r
	return nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns live session ids in sorted order and prunes expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
