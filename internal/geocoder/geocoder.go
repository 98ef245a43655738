// Package geocoder resolves addresses and postal codes to coordinates. It
// never fails a caller: provider errors and timeouts are reported as "not
// found" and counted.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/pkg/geo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoMatch is returned by a Provider when the query resolves to nothing.
var ErrNoMatch = errors.New("no geocoding match")

// 지오코딩 요청 결과 (cache_hit, resolved, not_found, error)
var geocodeRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storelocator_geocode_requests_total",
		Help: "Total number of geocoding lookups by result",
	},
	[]string{"result"},
)

// Query is a free-text address and/or a postal code.
type Query struct {
	Address    string
	PostalCode string
}

// Empty reports whether there is nothing to look up.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Address) == "" && strings.TrimSpace(q.PostalCode) == ""
}

// PostalOnly reports whether the query is a bare postal code.
func (q Query) PostalOnly() bool {
	return strings.TrimSpace(q.Address) == "" && strings.TrimSpace(q.PostalCode) != ""
}

// Text is the single-line form of the query.
func (q Query) Text() string {
	addr := strings.TrimSpace(q.Address)
	zip := strings.TrimSpace(q.PostalCode)
	switch {
	case addr == "":
		return zip
	case zip == "" || strings.Contains(addr, zip):
		return addr
	default:
		return addr + ", " + zip
	}
}

// CacheKey is the normalized cache key (without namespace). Postal-only and
// free-text queries are sent to the provider differently, so the key carries
// the query mode.
func (q Query) CacheKey() string {
	mode := "q"
	if q.PostalOnly() {
		mode = "postal"
	}
	return mode + ":" + cache.NormalizeKey(q.Text())
}

// Provider looks a query up in an external geocoding service.
type Provider interface {
	Lookup(ctx context.Context, q Query) (geo.Point, error)
}

// Stats is a snapshot of geocoder counters.
type Stats struct {
	Lookups        int64 `json:"lookups"`
	CacheHits      int64 `json:"cache_hits"`
	ProviderCalls  int64 `json:"provider_calls"`
	ProviderErrors int64 `json:"provider_errors"`
	NotFound       int64 `json:"not_found"`
}

// Degraded reports whether the provider has failed at least once.
func (s Stats) Degraded() bool {
	return s.ProviderErrors > 0
}

// Geocoder resolves queries through the geocode cache and then the provider.
type Geocoder struct {
	provider Provider
	cache    *cache.Cache
	group    singleflight.Group
	log      *zap.SugaredLogger

	lookups        atomic.Int64
	cacheHits      atomic.Int64
	providerCalls  atomic.Int64
	providerErrors atomic.Int64
	notFound       atomic.Int64
}

// New creates a Geocoder. The cache may be nil.
func New(provider Provider, c *cache.Cache) *Geocoder {
	return &Geocoder{
		provider: provider,
		cache:    c,
		log:      logger.GetLogger("geocoder"),
	}
}

// Geocode returns the coordinates for q, or false when they could not be
// resolved for any reason.
func (g *Geocoder) Geocode(ctx context.Context, q Query) (geo.Point, bool) {
	if q.Empty() {
		return geo.Point{}, false
	}
	g.lookups.Add(1)
	key := q.CacheKey()

	if p, ok := g.fromCache(ctx, key); ok {
		g.cacheHits.Add(1)
		geocodeRequestsTotal.WithLabelValues("cache_hit").Inc()
		return p, true
	}

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if p, ok := g.fromCache(ctx, key); ok {
			return p, nil
		}
		return g.resolve(ctx, q, key)
	})
	if err != nil {
		g.notFound.Add(1)
		return geo.Point{}, false
	}
	return v.(geo.Point), true
}

func (g *Geocoder) resolve(ctx context.Context, q Query, key string) (geo.Point, error) {
	g.providerCalls.Add(1)
	p, err := g.provider.Lookup(ctx, q)
	switch {
	case errors.Is(err, ErrNoMatch):
		geocodeRequestsTotal.WithLabelValues("not_found").Inc()
		g.log.Infof("No geocoding match for %q", q.Text())
		return geo.Point{}, err
	case err != nil:
		g.providerErrors.Add(1)
		geocodeRequestsTotal.WithLabelValues("error").Inc()
		g.log.Warnf("Geocoding failed for %q: %v", q.Text(), err)
		return geo.Point{}, err
	case !p.Valid():
		g.providerErrors.Add(1)
		geocodeRequestsTotal.WithLabelValues("error").Inc()
		g.log.Warnf("Geocoder returned out-of-range coordinates for %q: %+v", q.Text(), p)
		return geo.Point{}, ErrNoMatch
	}

	geocodeRequestsTotal.WithLabelValues("resolved").Inc()
	if g.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			g.cache.Set(ctx, key, raw)
		}
	}
	return p, nil
}

func (g *Geocoder) fromCache(ctx context.Context, key string) (geo.Point, bool) {
	if g.cache == nil {
		return geo.Point{}, false
	}
	raw, ok := g.cache.Get(ctx, key)
	if !ok {
		return geo.Point{}, false
	}
	var p geo.Point
	if err := json.Unmarshal(raw, &p); err != nil {
		g.log.Warnf("Discarding unreadable geocode cache entry %q: %v", key, err)
		return geo.Point{}, false
	}
	return p, true
}

// Stats returns the current counters.
func (g *Geocoder) Stats() Stats {
	return Stats{
		Lookups:        g.lookups.Load(),
		CacheHits:      g.cacheHits.Load(),
		ProviderCalls:  g.providerCalls.Load(),
		ProviderErrors: g.providerErrors.Load(),
		NotFound:       g.notFound.Load(),
	}
}
