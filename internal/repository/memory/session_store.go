// Package memory provides the in-process session store. It is the default
// backend: sessions are short-lived and survive neither restarts nor corpus
// replacement, so process memory is the natural home.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/store"
)

// DefaultSessionTimeout is the inactivity window after which a session is
// considered dead.
const DefaultSessionTimeout = 30 * time.Minute

const cleanupInterval = 5 * time.Minute

// SessionStore keeps sessions in a go-cache instance. Expiry is judged
// against a tracked last-access time rather than go-cache's own TTL so the
// clock can be injected for tests.
type SessionStore struct {
	cache   *gocache.Cache
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ contract.SessionRepository = (*SessionStore)(nil)

// NewSessionStore creates a store with the given inactivity timeout.
// A non-positive timeout falls back to DefaultSessionTimeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionStore{
		cache:   gocache.New(gocache.NoExpiration, cleanupInterval),
		timeout: timeout,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// NewSessionStoreWithClock is NewSessionStore with an injected clock.
func NewSessionStoreWithClock(timeout time.Duration, now func() time.Time) *SessionStore {
	s := NewSessionStore(timeout)
	if now != nil {
		s.now = now
	}
	return s
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

func (s *SessionStore) dropLock(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}

// load fetches the live state for id, enforcing expiry. Callers hold the
// session lock.
func (s *SessionStore) load(id string) (*store.SessionState, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	st := v.(*store.SessionState)
	if s.now().Sub(st.LastAccess) > s.timeout {
		s.cache.Delete(id)
		return nil, false
	}
	return st, true
}

func (s *SessionStore) Create(_ context.Context, state *store.SessionState) error {
	lock := s.lockFor(state.ID)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := s.load(state.ID); ok {
		return contract.ErrSessionExists
	}
	st := state.Clone()
	st.LastAccess = s.now()
	s.cache.Set(state.ID, st, gocache.NoExpiration)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*store.SessionState, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, ok := s.load(id)
	if !ok {
		return nil, contract.ErrSessionNotFound
	}
	// Touch on a fresh copy and swap it in. Stored states are never written
	// after Set, so EvictExpired and List can read them without the session
	// lock.
	touched := st.Clone()
	touched.LastAccess = s.now()
	s.cache.Set(id, touched, gocache.NoExpiration)
	return touched.Clone(), nil
}

func (s *SessionStore) Advance(_ context.Context, id string, fn contract.AdvanceFunc) (*store.SessionState, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, ok := s.load(id)
	if !ok {
		return nil, contract.ErrSessionNotFound
	}
	next, err := fn(st.Clone())
	if err != nil {
		return nil, err
	}
	next.LastAccess = s.now()
	s.cache.Set(id, next.Clone(), gocache.NoExpiration)
	return next, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	s.cache.Delete(id)
	lock.Unlock()
	s.dropLock(id)
	return nil
}

func (s *SessionStore) EvictExpired(_ context.Context) (int, error) {
	cutoff := s.now().Add(-s.timeout)
	evicted := 0
	for id, item := range s.cache.Items() {
		st := item.Object.(*store.SessionState)
		if st.LastAccess.Before(cutoff) {
			s.cache.Delete(id)
			s.dropLock(id)
			evicted++
		}
	}
	return evicted, nil
}

func (s *SessionStore) ClearAll(_ context.Context) error {
	s.cache.Flush()
	s.mu.Lock()
	s.locks = make(map[string]*sync.Mutex)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) List(_ context.Context) ([]*store.SessionState, error) {
	cutoff := s.now().Add(-s.timeout)
	var out []*store.SessionState
	for _, item := range s.cache.Items() {
		st := item.Object.(*store.SessionState)
		if st.LastAccess.Before(cutoff) {
			continue
		}
		out = append(out, st.Clone())
	}
	return out, nil
}

func (s *SessionStore) ActiveCount(_ context.Context) (int, error) {
	live, err := s.List(context.Background())
	if err != nil {
		return 0, err
	}
	return len(live), nil
}
