package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	return NewSessionStoreWithClock(30*time.Minute, clock.Now), clock
}

func newState(id string) *store.SessionState {
	return store.NewSessionState(id, "what is grace", []string{"grace"}, time.Now())
}

func TestSessionStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.Create(ctx, newState("a")))

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		got.CurrentLevel = 4
		got.UsedIDs["x"] = true

		again, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 0, again.CurrentLevel)
		assert.Empty(t, again.UsedIDs)
	})

	t.Run("duplicate create rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, newState("a")), contract.ErrSessionExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, contract.ErrSessionNotFound)
	})
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()

	require.NoError(t, s.Create(ctx, newState("a")))

	t.Run("activity refreshes the window", func(t *testing.T) {
		clock.Advance(20 * time.Minute)
		_, err := s.Get(ctx, "a")
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		_, err = s.Get(ctx, "a")
		assert.NoError(t, err, "session touched 20m ago must still be live")
	})

	t.Run("idle past the timeout is gone", func(t *testing.T) {
		clock.Advance(31 * time.Minute)
		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, contract.ErrSessionNotFound)
	})
}

func TestSessionStoreAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("commits the returned state", func(t *testing.T) {
		s, _ := newTestStore()
		require.NoError(t, s.Create(ctx, newState("a")))

		_, err := s.Advance(ctx, "a", func(st *store.SessionState) (*store.SessionState, error) {
			st.CurrentLevel = 2
			st.UsedIDs["s1"] = true
			st.BatchCount++
			return st, nil
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentLevel)
		assert.True(t, got.UsedIDs["s1"])
		assert.Equal(t, 1, got.BatchCount)
	})

	t.Run("error commits nothing", func(t *testing.T) {
		s, _ := newTestStore()
		require.NoError(t, s.Create(ctx, newState("a")))

		boom := errors.New("retrieval failed")
		_, err := s.Advance(ctx, "a", func(st *store.SessionState) (*store.SessionState, error) {
			st.CurrentLevel = 4
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 0, got.CurrentLevel)
	})

	t.Run("advances on one session serialize", func(t *testing.T) {
		s, _ := newTestStore()
		require.NoError(t, s.Create(ctx, newState("a")))

		const workers = 16
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				_, err := s.Advance(ctx, "a", func(st *store.SessionState) (*store.SessionState, error) {
					st.BatchCount++
					return st, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, workers, got.BatchCount, "lost update under concurrency")
	})
}

func TestSessionStoreEvictAndClear(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()

	require.NoError(t, s.Create(ctx, newState("old")))
	clock.Advance(40 * time.Minute)
	require.NoError(t, s.Create(ctx, newState("fresh")))

	n, err := s.EvictExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.ClearAll(ctx))
	count, err = s.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// The janitor sweeps with EvictExpired while requests Get and Advance the
// same sessions. Stored states must never be written in place, or the sweep
// reads torn data. Run with -race.
func TestSessionStoreJanitorDoesNotRaceRequests(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		require.NoError(t, s.Create(ctx, newState(id)))
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			<-start
			for i := 0; i < 50; i++ {
				_, err := s.Get(ctx, id)
				assert.NoError(t, err)
				_, err = s.Advance(ctx, id, func(st *store.SessionState) (*store.SessionState, error) {
					st.BatchCount++
					return st, nil
				})
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 100; i++ {
			_, err := s.EvictExpired(ctx)
			assert.NoError(t, err)
			_, err = s.List(ctx)
			assert.NoError(t, err)
		}
	}()
	close(start)
	wg.Wait()

	for _, id := range ids {
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 50, got.BatchCount)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.Create(ctx, newState("a")))
	require.NoError(t, s.Delete(ctx, "a"))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)

	assert.NoError(t, s.Delete(ctx, "a"), "deleting unknown id is not an error")
}
