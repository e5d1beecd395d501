package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/colombia-mcp/internal/logging"
	"github.com/aretw0/colombia-mcp/pkg/domain"
)

// Observer is notified when sessions open and close.
type Observer interface {
	SessionOpened(transport string)
	SessionClosed(transport string)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager opens, resumes and closes sessions on top of a Store.
// Operations on the same session id are serialized; locks are reference counted
// and dropped once unused.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*lockEntry

	newID    func() string
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver registers a session observer, e.g. metrics.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithIDGenerator replaces the random session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		newID:  uuid.NewString,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) withLock(id string, fn func() error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn()
}

// Open creates a session for transport and returns its id.
func (m *Manager) Open(ctx context.Context, transport string) (string, error) {
	now := m.now()
	s := Session{
		ID:        m.newID(),
		Transport: transport,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	if m.observer != nil {
		m.observer.SessionOpened(transport)
	}
	m.logger.Debug("session opened", "session_id", s.ID, "transport", transport)
	return s.ID, nil
}

// Resume marks a session as active.
// Returns domain.ErrSessionNotFound for unknown or expired ids.
func (m *Manager) Resume(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrSessionNotFound
	}
	return m.withLock(id, func() error {
		return m.store.Touch(ctx, id, m.now())
	})
}

// Close ends a session.
// Returns domain.ErrSessionNotFound for unknown or expired ids.
func (m *Manager) Close(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrSessionNotFound
	}
	return m.withLock(id, func() error {
		s, err := m.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		if m.observer != nil {
			m.observer.SessionClosed(s.Transport)
		}
		m.logger.Debug("session closed", "session_id", id, "transport", s.Transport)
		return nil
	})
}

// List returns the ids of live sessions.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound)
}
