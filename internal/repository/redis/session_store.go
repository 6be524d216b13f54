// Package redis provides a Redis-backed session store for deployments that
// run more than one API replica behind a sticky-free load balancer.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/store"
)

const keyPrefix = "corpusqa:session:"

// SessionStore persists sessions as JSON values with the inactivity timeout
// enforced by Redis key TTLs. Per-session serialization is in-process only;
// cross-replica callers are expected to route a session to one replica.
type SessionStore struct {
	client  *goredis.Client
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ contract.SessionRepository = (*SessionStore)(nil)

func NewSessionStore(client *goredis.Client, timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		client:  client,
		timeout: timeout,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *SessionStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func sessionKey(id string) string { return keyPrefix + id }

func (s *SessionStore) load(ctx context.Context, id string) (*store.SessionState, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, contract.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var st store.SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &st, nil
}

func (s *SessionStore) save(ctx context.Context, st *store.SessionState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", st.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(st.ID), raw, s.timeout).Err(); err != nil {
		return fmt.Errorf("storing session %s: %w", st.ID, err)
	}
	return nil
}

func (s *SessionStore) Create(ctx context.Context, state *store.SessionState) error {
	lock := s.lockFor(state.ID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.client.Exists(ctx, sessionKey(state.ID)).Result()
	if err != nil {
		return fmt.Errorf("checking session %s: %w", state.ID, err)
	}
	if exists > 0 {
		return contract.ErrSessionExists
	}
	st := state.Clone()
	st.LastAccess = time.Now()
	return s.save(ctx, st)
}

func (s *SessionStore) Get(ctx context.Context, id string) (*store.SessionState, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	st.LastAccess = time.Now()
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SessionStore) Advance(ctx context.Context, id string, fn contract.AdvanceFunc) (*store.SessionState, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(st.Clone())
	if err != nil {
		return nil, err
	}
	next.LastAccess = time.Now()
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// EvictExpired is a no-op for the Redis backend: key TTLs handle expiry.
func (s *SessionStore) EvictExpired(context.Context) (int, error) {
	return 0, nil
}

func (s *SessionStore) ClearAll(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("clearing sessions: %w", err)
		}
	}
	s.mu.Lock()
	s.locks = make(map[string]*sync.Mutex)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) List(ctx context.Context) ([]*store.SessionState, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	var out []*store.SessionState
	for _, key := range keys {
		raw, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", key, err)
		}
		var st store.SessionState
		if err := json.Unmarshal(raw, &st); err != nil {
			continue
		}
		out = append(out, &st)
	}
	return out, nil
}

func (s *SessionStore) ActiveCount(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *SessionStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning sessions: %w", err)
	}
	return keys, nil
}
