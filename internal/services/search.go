package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/geocoder"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/telemetry"
	"github.com/lsjscarlett/store-locator/pkg/geo"
	"github.com/lsjscarlett/store-locator/pkg/hours"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultSearchPage        = 1
	DefaultSearchLimit       = 10
	MaxSearchLimit           = 100
	DefaultSearchRadiusMiles = 10.0
	DefaultNationwideRadius  = 5000.0

	// StatusAll disables the status filter.
	StatusAll = "all"
	// CategoryAll disables the category filter.
	CategoryAll = "all"
)

// ErrSearchUnavailable means the store data could not be read. The response
// that accompanies it is still a well-formed empty page.
var ErrSearchUnavailable = errors.New("search temporarily unavailable")

var (
	// 검색 요청 수 (outcome: cache_hit, ok, error)
	searchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storelocator_search_requests_total",
			Help: "Total number of store searches by outcome",
		},
		[]string{"outcome"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storelocator_search_duration_seconds",
			Help:    "Store search latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// SearchFilters narrows a search.
type SearchFilters struct {
	RadiusMiles float64  `json:"radius_miles" validate:"gte=0"`
	StoreType   string   `json:"store_type,omitempty" validate:"max=50"`
	Services    []string `json:"services,omitempty" validate:"max=20,dive,max=100"`
	OpenNow     bool     `json:"open_now"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive all ACTIVE INACTIVE ALL"`
}

// SearchRequest is a store search. Address and ZipCode are optional; without
// them (or when they cannot be resolved) the search is nationwide.
type SearchRequest struct {
	Address string        `json:"address,omitempty" validate:"max=255"`
	ZipCode string        `json:"zip_code,omitempty" validate:"max=20"`
	Page    int           `json:"page" validate:"gte=1"`
	Limit   int           `json:"limit" validate:"gte=1,lte=100"`
	Filters SearchFilters `json:"filters"`
}

// NewSearchRequest returns a request populated with defaults. Decode client
// JSON over it so omitted fields keep their defaults.
func NewSearchRequest() SearchRequest {
	return SearchRequest{
		Page:  DefaultSearchPage,
		Limit: DefaultSearchLimit,
		Filters: SearchFilters{
			RadiusMiles: DefaultSearchRadiusMiles,
			Status:      models.StoreStatusActive,
		},
	}
}

// Canonicalize returns the request with every field normalized so that
// equivalent requests compare and hash equal.
func (r SearchRequest) Canonicalize(nationwideRadius float64) SearchRequest {
	c := r
	c.Address = strings.Join(strings.Fields(r.Address), " ")
	c.ZipCode = strings.TrimSpace(r.ZipCode)
	if c.Page < 1 {
		c.Page = DefaultSearchPage
	}
	if c.Limit < 1 {
		c.Limit = DefaultSearchLimit
	}
	if c.Limit > MaxSearchLimit {
		c.Limit = MaxSearchLimit
	}

	f := r.Filters
	f.StoreType = strings.ToLower(strings.TrimSpace(f.StoreType))
	if f.StoreType == CategoryAll {
		f.StoreType = ""
	}
	f.Services = NormalizeTags(f.Services)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = models.StoreStatusActive
	}
	if f.RadiusMiles < 0 {
		f.RadiusMiles = 0
	}
	if f.RadiusMiles >= nationwideRadius {
		f.RadiusMiles = nationwideRadius
	}
	c.Filters = f
	return c
}

// CacheKey hashes the canonical JSON form of r. Call it on a canonicalized
// request.
func (r SearchRequest) CacheKey() string {
	raw, _ := json.Marshal(r)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Query returns the geocoding query for the request location.
func (r SearchRequest) Query() geocoder.Query {
	return geocoder.Query{Address: r.Address, PostalCode: r.ZipCode}
}

// ResultEntry is one store in a search page. It is built from a stored
// record and never written back.
type ResultEntry struct {
	StoreID           string   `json:"store_id"`
	Name              string   `json:"name"`
	StoreType         string   `json:"store_type"`
	Status            string   `json:"status"`
	AddressStreet     string   `json:"address_street"`
	AddressCity       string   `json:"address_city"`
	AddressState      string   `json:"address_state"`
	AddressPostalCode string   `json:"address_postal_code"`
	AddressCountry    string   `json:"address_country"`
	Phone             string   `json:"phone"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Timezone          string   `json:"timezone"`
	HoursMon          string   `json:"hours_mon"`
	HoursTue          string   `json:"hours_tue"`
	HoursWed          string   `json:"hours_wed"`
	HoursThu          string   `json:"hours_thu"`
	HoursFri          string   `json:"hours_fri"`
	HoursSat          string   `json:"hours_sat"`
	HoursSun          string   `json:"hours_sun"`
	Services          []string `json:"services"`
	Distance          *float64 `json:"distance"`
	IsOpen            bool     `json:"is_open"`
}

// SearchResponse is a page of results.
type SearchResponse struct {
	Results []ResultEntry `json:"results"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	Error   string        `json:"error,omitempty"`
}

// CandidateQuery selects the stores a search starts from. Empty fields do
// not filter.
type CandidateQuery struct {
	StoreType string
	Status    string
}

// StoreSource reads candidate stores with their services loaded, ordered by
// store id.
type StoreSource interface {
	FindCandidates(ctx context.Context, q CandidateQuery) ([]models.Store, error)
}

// Locator resolves a search location.
type Locator interface {
	Geocode(ctx context.Context, q geocoder.Query) (geo.Point, bool)
}

type SearchService struct {
	source     StoreSource
	locator    Locator
	results    *cache.Cache
	hours      *hours.Evaluator
	nationwide float64
	log        *zap.SugaredLogger
}

// NewSearchService wires the pipeline. locator and results may be nil.
func NewSearchService(source StoreSource, locator Locator, results *cache.Cache, evaluator *hours.Evaluator, nationwideRadius float64) *SearchService {
	if evaluator == nil {
		evaluator = hours.NewEvaluator(nil, nil)
	}
	if nationwideRadius <= 0 {
		nationwideRadius = DefaultNationwideRadius
	}
	return &SearchService{
		source:     source,
		locator:    locator,
		results:    results,
		hours:      evaluator,
		nationwide: nationwideRadius,
		log:        logger.GetLogger("search"),
	}
}

// NationwideRadius is the radius at or above which distance is ignored.
func (s *SearchService) NationwideRadius() float64 {
	return s.nationwide
}

// Search runs the full pipeline. It always returns a well-formed response;
// the error is ErrSearchUnavailable when the store data could not be read.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()
	defer func() { searchDuration.Observe(time.Since(start).Seconds()) }()

	ctx, span := telemetry.StartSpan(ctx, "search.Search")
	defer span.End()

	req = req.Canonicalize(s.nationwide)
	key := req.CacheKey()

	if cached, ok := s.cached(ctx, key); ok {
		searchRequestsTotal.WithLabelValues("cache_hit").Inc()
		telemetry.RecordSearch(ctx, "cache_hit", cached.Total)
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return cached, nil
	}

	origin := s.locate(ctx, req)

	candidates, err := s.source.FindCandidates(ctx, CandidateQuery{
		StoreType: req.Filters.StoreType,
		Status:    statusFilter(req.Filters.Status),
	})
	if err != nil {
		s.log.Warnf("Search candidate fetch failed: %v", err)
		searchRequestsTotal.WithLabelValues("error").Inc()
		telemetry.RecordSearch(ctx, "error", 0)
		span.RecordError(err)
		return &SearchResponse{
			Results: []ResultEntry{},
			Page:    req.Page,
			Limit:   req.Limit,
			Error:   ErrSearchUnavailable.Error(),
		}, ErrSearchUnavailable
	}

	resp := s.rank(candidates, origin, req)
	span.SetAttributes(
		attribute.Int("search.candidates", len(candidates)),
		attribute.Int("search.matches", resp.Total),
		attribute.Bool("search.proximity", origin != nil),
	)

	if s.results != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.results.Set(ctx, key, raw)
		}
	}
	searchRequestsTotal.WithLabelValues("ok").Inc()
	telemetry.RecordSearch(ctx, "ok", resp.Total)
	return resp, nil
}

func (s *SearchService) cached(ctx context.Context, key string) (*SearchResponse, bool) {
	if s.results == nil {
		return nil, false
	}
	raw, ok := s.results.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.log.Warnf("Discarding unreadable search cache entry: %v", err)
		return nil, false
	}
	return &resp, true
}

// locate returns the search origin, or nil when the search is nationwide.
func (s *SearchService) locate(ctx context.Context, req SearchRequest) *geo.Point {
	if req.Filters.RadiusMiles >= s.nationwide || s.locator == nil {
		return nil
	}
	q := req.Query()
	if q.Empty() {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "search.Geocode")
	defer span.End()

	p, ok := s.locator.Geocode(ctx, q)
	span.SetAttributes(attribute.Bool("geocode.found", ok))
	if !ok {
		return nil
	}
	return &p
}

type ranked struct {
	store    *models.Store
	distance *float64
	open     bool
}

// rank applies the in-memory stages: tags, distance, open-now, ordering and
// pagination. candidates must be ordered by store id.
func (s *SearchService) rank(candidates []models.Store, origin *geo.Point, req SearchRequest) *SearchResponse {
	f := req.Filters
	now := s.hours.Now()
	fallback := s.hours.Fallback()

	matched := make([]ranked, 0, len(candidates))
	for i := range candidates {
		st := &candidates[i]
		if !st.HasServices(f.Services) {
			continue
		}

		r := ranked{store: st}
		if origin != nil {
			d := geo.DistanceMiles(*origin, st.Point())
			if d > f.RadiusMiles {
				continue
			}
			r.distance = &d
		}

		r.open = hours.IsOpenAt(st.Week(), st.Timezone, fallback, now)
		if f.OpenNow && !r.open {
			continue
		}
		matched = append(matched, r)
	}

	if origin != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			di, dj := *matched[i].distance, *matched[j].distance
			if di != dj {
				return di < dj
			}
			return matched[i].store.StoreID < matched[j].store.StoreID
		})
	}

	resp := &SearchResponse{
		Results: []ResultEntry{},
		Total:   len(matched),
		Page:    req.Page,
		Limit:   req.Limit,
	}

	start := (req.Page - 1) * req.Limit
	if start >= len(matched) {
		return resp
	}
	end := start + req.Limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, r := range matched[start:end] {
		resp.Results = append(resp.Results, newResultEntry(r))
	}
	return resp
}

func newResultEntry(r ranked) ResultEntry {
	st := r.store
	services := st.ServiceNames()
	sort.Strings(services)
	return ResultEntry{
		StoreID:           st.StoreID,
		Name:              st.Name,
		StoreType:         st.StoreType,
		Status:            st.Status,
		AddressStreet:     st.AddressStreet,
		AddressCity:       st.AddressCity,
		AddressState:      st.AddressState,
		AddressPostalCode: st.AddressPostalCode,
		AddressCountry:    st.AddressCountry,
		Phone:             st.Phone,
		Latitude:          st.Latitude,
		Longitude:         st.Longitude,
		Timezone:          st.Timezone,
		HoursMon:          st.HoursMon,
		HoursTue:          st.HoursTue,
		HoursWed:          st.HoursWed,
		HoursThu:          st.HoursThu,
		HoursFri:          st.HoursFri,
		HoursSat:          st.HoursSat,
		HoursSun:          st.HoursSun,
		Services:          services,
		Distance:          r.distance,
		IsOpen:            r.open,
	}
}

func statusFilter(status string) string {
	if status == StatusAll {
		return ""
	}
	return status
}
