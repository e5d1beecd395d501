// Package redis provides a session store backed by Redis, for HTTP deployments
// with more than one replica behind a load balancer.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/session"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "colombia-mcp:session:"

// farFuture scores index members of sessions without TTL (2100-01-01).
const farFuture = 4102444800

// Store implements session.Store using Redis.
// Each session is a JSON string key with a TTL; an index ZSET scored by expiry
// backs List; expired members are pruned by Create and List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock replaces time.Now for index scores.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) score() float64 {
	if s.ttl <= 0 {
		return farFuture
	}
	return float64(s.now().Add(s.ttl).Unix())
}

// expiredScore is the inclusive upper bound of index members that have expired.
func (s *Store) expiredScore() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// Create persists a new session.
func (s *Store) Create(ctx context.Context, sess session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", s.expiredScore())
	pipe.Set(ctx, s.key(sess.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: sess.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves a session.
func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return session.Session{}, domain.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return session.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

// Touch refreshes LastSeen and restarts the TTL. The write only lands if the key
// still exists, so a concurrent Delete is never undone.
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.LastSeen = at

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.key(id), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := s.client.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: id}).Err(); err != nil {
		return fmt.Errorf("failed to refresh session index: %w", err)
	}
	return nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns live sessions, pruning expired index members first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", s.expiredScore()).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
