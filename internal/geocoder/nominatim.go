package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/pkg/geo"
)

const (
	// DefaultNominatimURL 공개 Nominatim 검색 엔드포인트
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	// 429/5xx 재시도 횟수
	maxAttempts = 2
	// 재시도 전 대기
	retryBackoff = 500 * time.Millisecond
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim queries an OpenStreetMap Nominatim server.
type Nominatim struct {
	baseURL     string
	userAgent   string
	countryCode string
	countryName string
	timeout     time.Duration
	httpClient  *http.Client
}

// NewNominatim creates a provider from the geocoder settings in cfg.
func NewNominatim(cfg *config.Config) *Nominatim {
	baseURL := cfg.GeocoderURL
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	timeout := cfg.GeocoderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		baseURL:     baseURL,
		userAgent:   cfg.GeocoderUserAgent,
		countryCode: cfg.GeocoderCountry,
		countryName: "USA",
		timeout:     timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lookup resolves q. A bare postal code uses the structured postalcode
// query restricted to the configured country; anything else is sent as free
// text with the country appended. The configured timeout bounds the whole
// lookup including retries.
func (n *Nominatim) Lookup(ctx context.Context, q Query) (geo.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if q.PostalOnly() {
		params.Set("postalcode", q.Text())
		if n.countryCode != "" {
			params.Set("countrycodes", n.countryCode)
		}
	} else {
		params.Set("q", q.Text()+", "+n.countryName)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p, retry, err := n.do(ctx, params)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return geo.Point{}, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return geo.Point{}, lastErr
}

func (n *Nominatim) do(ctx context.Context, params url.Values) (geo.Point, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return geo.Point{}, true, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, false, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return geo.Point{}, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return geo.Point{}, false, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}
	return geo.Point{Lat: lat, Lng: lng}, false, nil
}
