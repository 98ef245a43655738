package geocoder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls atomic.Int64
	point geo.Point
	err   error
	delay time.Duration
}

func (p *countingProvider) Lookup(context.Context, Query) (geo.Point, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.point, p.err
}

func newCache(now func() time.Time) *cache.Cache {
	return cache.New(cache.NewMemoryBackend(now), cache.NamespaceGeocode, 30*24*time.Hour)
}

func TestQuery_TextAndKey(t *testing.T) {
	tests := []struct {
		q    Query
		text string
		key  string
	}{
		{Query{PostalCode: " 10001 "}, "10001", "postal:10001"},
		{Query{Address: "350 Fifth Ave, New York"}, "350 Fifth Ave, New York", "q:350 fifth ave, new york"},
		{Query{Address: "Main St", PostalCode: "10001"}, "Main St, 10001", "q:main st, 10001"},
		{Query{Address: "Main St 10001", PostalCode: "10001"}, "Main St 10001", "q:main st 10001"},
		{Query{Address: "10001"}, "10001", "q:10001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.text, tt.q.Text())
		assert.Equal(t, tt.key, tt.q.CacheKey())
	}

	assert.True(t, Query{PostalCode: "10001"}.PostalOnly())
	assert.False(t, Query{Address: "x", PostalCode: "10001"}.PostalOnly())
	assert.True(t, Query{Address: "  "}.Empty())
}

func TestGeocode_CachesProviderResult(t *testing.T) {
	provider := &countingProvider{point: geo.Point{Lat: 40.75, Lng: -73.99}}
	g := New(provider, newCache(nil))
	ctx := context.Background()

	p, ok := g.Geocode(ctx, Query{PostalCode: "10001"})
	require.True(t, ok)
	assert.Equal(t, provider.point, p)

	// Same normalized query, different spelling.
	p, ok = g.Geocode(ctx, Query{PostalCode: " 10001"})
	require.True(t, ok)
	assert.Equal(t, provider.point, p)

	assert.Equal(t, int64(1), provider.calls.Load())
	stats := g.Stats()
	assert.Equal(t, int64(2), stats.Lookups)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.ProviderCalls)
	assert.False(t, stats.Degraded())
}

func TestGeocode_CacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	provider := &countingProvider{point: geo.Point{Lat: 1, Lng: 2}}
	g := New(provider, newCache(clock))
	ctx := context.Background()

	g.Geocode(ctx, Query{PostalCode: "10001"})
	mu.Lock()
	now = now.Add(29 * 24 * time.Hour)
	mu.Unlock()
	g.Geocode(ctx, Query{PostalCode: "10001"})
	assert.Equal(t, int64(1), provider.calls.Load())

	mu.Lock()
	now = now.Add(2 * 24 * time.Hour)
	mu.Unlock()
	g.Geocode(ctx, Query{PostalCode: "10001"})
	assert.Equal(t, int64(2), provider.calls.Load())
}

func TestGeocode_ProviderErrorIsNotFound(t *testing.T) {
	provider := &countingProvider{err: errors.New("connection refused")}
	g := New(provider, newCache(nil))

	_, ok := g.Geocode(context.Background(), Query{Address: "nowhere"})
	assert.False(t, ok)

	stats := g.Stats()
	assert.True(t, stats.Degraded())
	assert.Equal(t, int64(1), stats.ProviderErrors)
	assert.Equal(t, int64(1), stats.NotFound)
}

func TestGeocode_NoMatchIsNotCachedOrDegraded(t *testing.T) {
	provider := &countingProvider{err: ErrNoMatch}
	g := New(provider, newCache(nil))
	ctx := context.Background()

	_, ok := g.Geocode(ctx, Query{Address: "atlantis"})
	assert.False(t, ok)
	_, ok = g.Geocode(ctx, Query{Address: "atlantis"})
	assert.False(t, ok)

	assert.Equal(t, int64(2), provider.calls.Load())
	assert.False(t, g.Stats().Degraded())
	assert.Equal(t, int64(2), g.Stats().NotFound)
}

func TestGeocode_RejectsOutOfRangeCoordinates(t *testing.T) {
	provider := &countingProvider{point: geo.Point{Lat: 123, Lng: 0}}
	g := New(provider, newCache(nil))

	_, ok := g.Geocode(context.Background(), Query{PostalCode: "00000"})
	assert.False(t, ok)
}

func TestGeocode_EmptyQuerySkipsProvider(t *testing.T) {
	provider := &countingProvider{point: geo.Point{Lat: 1, Lng: 1}}
	g := New(provider, nil)

	_, ok := g.Geocode(context.Background(), Query{})
	assert.False(t, ok)
	assert.Equal(t, int64(0), provider.calls.Load())
	assert.Equal(t, int64(0), g.Stats().Lookups)
}

func TestGeocode_CoalescesConcurrentLookups(t *testing.T) {
	provider := &countingProvider{point: geo.Point{Lat: 1, Lng: 1}, delay: 50 * time.Millisecond}
	g := New(provider, newCache(nil))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := g.Geocode(context.Background(), Query{PostalCode: "10001"})
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, provider.calls.Load(), int64(2))
}

func TestGeocode_PostalAndFreeTextAreCachedSeparately(t *testing.T) {
	provider := &countingProvider{point: geo.Point{Lat: 40.75, Lng: -73.99}}
	g := New(provider, newCache(nil))
	ctx := context.Background()

	_, ok := g.Geocode(ctx, Query{PostalCode: "10001"})
	require.True(t, ok)
	_, ok = g.Geocode(ctx, Query{Address: "10001"})
	require.True(t, ok)

	assert.Equal(t, int64(2), provider.calls.Load())
}
