package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushCache(t *testing.T) {
	var got FlushCacheRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/internal/cache/flush", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Cache flushed","namespaces":["search_results","geo"]}`))
	}))
	defer srv.Close()

	c := NewClient(&config.Config{APIBaseURL: srv.URL, InternalAPIKey: "secret"})
	resp, err := c.FlushCache(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, got.Geocode)
	assert.Equal(t, []string{"search_results", "geo"}, resp.Namespaces)
}

func TestFlushCache_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{APIBaseURL: srv.URL, InternalAPIKey: "wrong"})
	_, err := c.FlushCache(context.Background(), false)
	assert.ErrorContains(t, err, "status=401")
}

func TestFlushCache_Disabled(t *testing.T) {
	c := NewClient(&config.Config{APIBaseURL: "http://localhost:1"})
	resp, err := c.FlushCache(context.Background(), false)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}
