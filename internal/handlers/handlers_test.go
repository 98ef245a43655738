package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/events"
	"github.com/lsjscarlett/store-locator/internal/geocoder"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/lsjscarlett/store-locator/internal/testutil"
	"github.com/lsjscarlett/store-locator/pkg/auth"
	"github.com/lsjscarlett/store-locator/pkg/geo"
	"github.com/lsjscarlett/store-locator/pkg/hours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-test-secret"
	testAPIKey = "internal-key"
)

type zipLocator map[string]geo.Point

func (z zipLocator) Geocode(_ context.Context, q geocoder.Query) (geo.Point, bool) {
	p, ok := z[q.PostalCode]
	return p, ok
}

type fixture struct {
	app     *fiber.App
	db      *database.DB
	results *cache.Cache
	geocode *cache.Cache
	adminID uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	_, err := database.SeedAdmin(db, "admin@example.com", "admin-password")
	require.NoError(t, err)
	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").Take(&admin).Error)

	backend := cache.NewMemoryBackend(nil)
	results := cache.New(backend, cache.NamespaceSearch, 5*time.Minute)
	geocodeCache := cache.New(backend, cache.NamespaceGeocode, 30*24*time.Hour)

	bus := events.NewBus()
	require.NoError(t, bus.Subscribe("purge-results", events.PurgeCache(results)))
	t.Cleanup(func() { _ = bus.Close() })

	locator := zipLocator{"10001": {Lat: 40.7506, Lng: -73.9972}}
	cfg := &config.Config{
		JWTSecretKey:              testSecret,
		JWTAccessTokenExpireMin:   30,
		JWTRefreshTokenExpireDays: 7,
	}

	stores := services.NewStoreService(db, locator, bus)
	// Monday 2024-03-04 10:00 New York
	now := func() time.Time { return time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC) }
	evaluator := hours.NewEvaluator(nil, now)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, Dependencies{
		DB:              db,
		Search:          services.NewSearchService(stores, locator, results, evaluator, 5000),
		Stores:          stores,
		Imports:         services.NewImportService(db, bus),
		Users:           services.NewUserService(db),
		Auth:            services.NewAuthService(db, cfg),
		ResultCache:     results,
		GeocodeCache:    geocodeCache,
		JWTSecretKey:    testSecret,
		InternalAPIKey:  testAPIKey,
		SearchRateLimit: 1000,
		MetricsOpen:     true,
	})

	return &fixture{app: app, db: db, results: results, geocode: geocodeCache, adminID: admin.ID}
}

func (f *fixture) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(auth.Identity{UserID: userID, Email: "u@example.com", Role: role}, testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/healthz"} {
		resp, body := f.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok","message":"Store Locator Service is Running"}`, string(body))
	}

	resp, _ := f.do(t, http.MethodGet, "/readiness", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearch_ByZipCode(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStores(t, f.db,
		testutil.Store("NYC-1", 40.7484, -73.9857, testutil.WithServices("wifi")),
		testutil.Store("LA-1", 34.0522, -118.2437),
	)

	resp, body := f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{
		"zip_code": "10001",
		"filters":  fiber.Map{"radius_miles": 10},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out services.SearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 10, out.Limit)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "NYC-1", out.Results[0].StoreID)
	require.NotNil(t, out.Results[0].Distance)
	assert.Less(t, *out.Results[0].Distance, 1.0)
	assert.Equal(t, []string{"wifi"}, out.Results[0].Services)
}

func TestSearch_Nationwide(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStores(t, f.db,
		testutil.Store("B", 34.0522, -118.2437),
		testutil.Store("A", 40.7484, -73.9857),
	)

	resp, body := f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out services.SearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "A", out.Results[0].StoreID)
	assert.Nil(t, out.Results[0].Distance)
}

func TestSearch_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{"limit": 500}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"limit":"lte=100"`)

	resp, _ = f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{"filters": fiber.Map{"radius_miles": -1}}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestSetupSearchRoutes_DoesNotWriteIntoGuards(t *testing.T) {
	guard := func(c *fiber.Ctx) error { return c.Next() }
	guards := make([]fiber.Handler, 1, 4)
	guards[0] = guard

	SetupSearchRoutes(fiber.New().Group("/api/stores"), nil, guards...)
	SetupSearchRoutes(fiber.New().Group("/api/stores"), nil, guards...)

	spare := guards[:cap(guards)]
	for _, h := range spare[1:] {
		assert.Nil(t, h)
	}
}

func TestAdminStores_RequireAuth(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/admin/stores", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	viewer := f.token(t, 99, models.RoleViewer)
	resp, _ = f.do(t, http.MethodGet, "/api/admin/stores", nil, viewer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/admin/stores", fiber.Map{"store_id": "X"}, viewer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminStores_Lifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, f.adminID, models.RoleAdmin)

	create := fiber.Map{
		"store_id":            "S-100",
		"name":                "Midtown",
		"store_type":          "flagship",
		"address_postal_code": "10001",
		"hours_mon":           "08:00-20:00",
		"services":            "WiFi|parking",
	}
	resp, body := f.do(t, http.MethodPost, "/api/admin/stores", create, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var view services.StoreView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.InDelta(t, 40.7506, view.Latitude, 1e-9)
	assert.Equal(t, []string{"parking", "wifi"}, view.Services)

	resp, _ = f.do(t, http.MethodPost, "/api/admin/stores", create, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPatch, "/api/admin/stores/S-100", fiber.Map{"name": "Midtown West", "services": []string{"coffee"}}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "Midtown West", view.Name)
	assert.Equal(t, []string{"coffee"}, view.Services)

	resp, _ = f.do(t, http.MethodPatch, "/api/admin/stores/S-100", fiber.Map{"hours_tue": "9-5"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/admin/stores/S-100", nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/admin/stores/NOPE", nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/admin/stores/S-100", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, models.StoreStatusInactive, view.Status)

	resp, _ = f.do(t, http.MethodGet, "/api/admin/stores/NOPE", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminStores_MutationPurgesSearchCache(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStores(t, f.db, testutil.Store("A", 40.7484, -73.9857))
	token := f.token(t, f.adminID, models.RoleAdmin)

	resp, _ := f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), f.results.Stats().Sets)

	resp, _ = f.do(t, http.MethodPatch, "/api/admin/stores/A", fiber.Map{"name": "Renamed"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		_, body := f.do(t, http.MethodPost, "/api/stores/search", fiber.Map{}, "")
		var out services.SearchResponse
		if err := json.Unmarshal(body, &out); err != nil || len(out.Results) != 1 {
			return false
		}
		return out.Results[0].Name == "Renamed"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestAdminStores_Import(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, f.adminID, models.RoleMarketer)

	csv := "store_id,name,store_type,status,latitude,longitude,services\n" +
		"I-1,One,regular,active,40.1,-74.1,wifi|parking\n" +
		"I-2,Two,regular,active,abc,-74.2,\n"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "stores.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/stores/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Import completed", out.Message)
	assert.Equal(t, 1, out.Stats.Created)
	assert.Equal(t, 1, out.Stats.Errors)
}

func TestAdminStores_ImportRequiresFile(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, f.adminID, models.RoleAdmin)

	resp, _ := f.do(t, http.MethodPost, "/api/admin/stores/import", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminUsers(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, f.adminID, models.RoleAdmin)

	resp, _ := f.do(t, http.MethodGet, "/api/admin/users", nil, f.token(t, f.adminID, models.RoleMarketer))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/admin/users", fiber.Map{"email": "new@example.com", "password": "password123"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var user services.UserResponse
	require.NoError(t, json.Unmarshal(body, &user))
	assert.Equal(t, models.RoleViewer, user.Role)

	resp, _ = f.do(t, http.MethodPost, "/api/admin/users", fiber.Map{"email": "new@example.com", "password": "password123"}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/admin/users", fiber.Map{"email": "short@example.com", "password": "x"}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/admin/users/"+itoa(f.adminID), fiber.Map{"is_active": false}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPut, "/api/admin/users/"+itoa(user.ID), fiber.Map{"is_active": false}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &user))
	assert.False(t, user.IsActive)

	resp, _ = f.do(t, http.MethodPut, "/api/admin/users/9999", fiber.Map{"is_active": true}, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []services.UserResponse
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 2)
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "admin@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "admin@example.com", "password": "admin-password"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var tokens services.AuthResponse
	require.NoError(t, json.Unmarshal(body, &tokens))
	assert.Equal(t, "bearer", tokens.TokenType)

	resp, body = f.do(t, http.MethodGet, "/api/auth/me", nil, tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me services.UserResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "admin@example.com", me.Email)
	assert.Equal(t, models.RoleAdmin, me.Role)

	resp, _ = f.do(t, http.MethodPost, "/api/auth/refresh", fiber.Map{"refresh_token": tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/auth/logout", fiber.Map{"refresh_token": tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/auth/refresh", fiber.Map{"refresh_token": tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInternalFlushCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.results.Set(ctx, "k", []byte("v"))
	f.geocode.Set(ctx, "k", []byte("v"))

	req := httptest.NewRequest(http.MethodPost, "/api/internal/cache/flush", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/internal/cache/flush", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := f.results.Get(ctx, "k")
	assert.False(t, ok)
	_, ok = f.geocode.Get(ctx, "k")
	assert.True(t, ok)

	req = httptest.NewRequest(http.MethodPost, "/api/internal/cache/flush", bytes.NewBufferString(`{"geocode":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out FlushCacheResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{cache.NamespaceSearch, cache.NamespaceGeocode}, out.Namespaces)
	_, ok = f.geocode.Get(ctx, "k")
	assert.False(t, ok)
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
