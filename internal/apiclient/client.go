package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/logger"
)

// Client talks to the running API's internal endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 새 클라이언트 생성
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		apiKey:  cfg.InternalAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FlushCacheRequest 캐시 삭제 요청
type FlushCacheRequest struct {
	Geocode bool `json:"geocode"`
}

// FlushCacheResponse 캐시 삭제 응답
type FlushCacheResponse struct {
	Message    string   `json:"message"`
	Namespaces []string `json:"namespaces"`
}

// FlushCache asks the API to drop cached search results, and geocodes too
// when geocode is set. A client without a base URL or key is a no-op.
func (c *Client) FlushCache(ctx context.Context, geocode bool) (*FlushCacheResponse, error) {
	log := logger.GetLogger("apiclient")

	if c.baseURL == "" || c.apiKey == "" {
		log.Warn("[API] base URL or internal API key not set, skipping cache flush")
		return nil, nil
	}

	jsonBody, err := json.Marshal(FlushCacheRequest{Geocode: geocode})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/api/internal/cache/flush", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status=%d", resp.StatusCode)
	}

	var result FlushCacheResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	log.Infof("[API] cache flushed: %v", result.Namespaces)
	return &result, nil
}
