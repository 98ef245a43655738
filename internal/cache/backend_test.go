package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lsjscarlett/store-locator/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock shared by a backend and its test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)}
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

type backendFixture struct {
	backend Backend
	advance func(time.Duration)
}

func backends(t *testing.T) map[string]func(t *testing.T) backendFixture {
	return map[string]func(t *testing.T) backendFixture{
		"memory": func(t *testing.T) backendFixture {
			clock := newFakeClock()
			return backendFixture{backend: NewMemoryBackend(clock.Now), advance: clock.Advance}
		},
		"redis": func(t *testing.T) backendFixture {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return backendFixture{backend: NewRedisBackendFromClient(client), advance: mr.FastForward}
		},
		"database": func(t *testing.T) backendFixture {
			clock := newFakeClock()
			db := testutil.NewDB(t)
			return backendFixture{backend: NewDatabaseBackend(db.DB, clock.Now), advance: clock.Advance}
		},
	}
}

func TestBackends_SetGet(t *testing.T) {
	for name, newFixture := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, ok, err := f.backend.Get(ctx, "geo:10001")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, f.backend.Set(ctx, "geo:10001", []byte(`{"lat":1}`), time.Hour))

			v, ok, err := f.backend.Get(ctx, "geo:10001")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte(`{"lat":1}`), v)

			require.NoError(t, f.backend.Set(ctx, "geo:10001", []byte(`{"lat":2}`), time.Hour))
			v, _, err = f.backend.Get(ctx, "geo:10001")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"lat":2}`), v)
		})
	}
}

func TestBackends_LazyExpiry(t *testing.T) {
	for name, newFixture := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			require.NoError(t, f.backend.Set(ctx, "search_results:abc", []byte("page"), 5*time.Minute))

			f.advance(4 * time.Minute)
			_, ok, err := f.backend.Get(ctx, "search_results:abc")
			require.NoError(t, err)
			assert.True(t, ok, "entry should survive before its TTL")

			f.advance(2 * time.Minute)
			_, ok, err = f.backend.Get(ctx, "search_results:abc")
			require.NoError(t, err)
			assert.False(t, ok, "entry should be absent after its TTL")
		})
	}
}

func TestBackends_DeleteAndPrefix(t *testing.T) {
	for name, newFixture := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			for _, k := range []string{"search_results:a", "search_results:b", "geo:a", "search_resultsX"} {
				require.NoError(t, f.backend.Set(ctx, k, []byte("v"), time.Hour))
			}

			require.NoError(t, f.backend.Delete(ctx, "geo:a"))
			_, ok, err := f.backend.Get(ctx, "geo:a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, f.backend.DeletePrefix(ctx, "search_results:"))
			for _, k := range []string{"search_results:a", "search_results:b"} {
				_, ok, err := f.backend.Get(ctx, k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}
			_, ok, err = f.backend.Get(ctx, "search_resultsX")
			require.NoError(t, err)
			assert.True(t, ok, "keys outside the prefix must survive")
		})
	}
}

func TestMemoryBackend_ExpiredEntryIsRemovedOnRead(t *testing.T) {
	clock := newFakeClock()
	m := NewMemoryBackend(clock.Now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))
	assert.Equal(t, 1, m.Len())

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, m.Len(), "no background sweep")

	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	m := NewMemoryBackend(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 200; j++ {
				_ = m.Set(ctx, key, []byte{byte(j)}, time.Minute)
				_, _, _ = m.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, m.Len())
}

func TestMemoryBackend_StoresCopy(t *testing.T) {
	m := NewMemoryBackend(nil)
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v)
}
