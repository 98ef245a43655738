package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/middleware"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/services"
)

// Dependencies are the services the HTTP routes are built on.
type Dependencies struct {
	DB           Pinger
	Search       *services.SearchService
	Stores       *services.StoreService
	Imports      *services.ImportService
	Users        *services.UserService
	Auth         *services.AuthService
	ResultCache  *cache.Cache
	GeocodeCache *cache.Cache

	JWTSecretKey    string
	InternalAPIKey  string
	SearchRateLimit int
	// MetricsOpen serves /metrics to any client instead of internal networks only.
	MetricsOpen bool
}

// SetupRoutes mounts every route on app.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Swagger UI
	app.Get("/docs/*", swagger.HandlerDefault)
	app.Get("/metrics", middleware.InternalOnly(deps.MetricsOpen), middleware.PrometheusHandler())

	// Health check endpoints for k8s probes
	app.Get("/", HealthCheck)
	app.Get("/healthz", HealthCheck)
	app.Get("/readiness", ReadinessCheck(deps.DB))

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(deps.JWTSecretKey)

	// 공개 검색
	SetupSearchRoutes(api.Group("/stores"), deps.Search, middleware.RateLimit(deps.SearchRateLimit))

	SetupAuthRoutes(api.Group("/auth"), deps.Auth, deps.Users, authRequired)

	// 관리자 API
	admin := api.Group("/admin", authRequired)
	SetupStoreRoutes(admin.Group("/stores"), deps.Stores, deps.Imports,
		middleware.RequireRoles(models.RoleAdmin, models.RoleMarketer))
	SetupUserRoutes(admin.Group("/users", middleware.RequireRoles(models.RoleAdmin)), deps.Users)

	// 내부 API (storectl)
	SetupInternalRoutes(api.Group("/internal", middleware.InternalAPIKey(deps.InternalAPIKey)), deps.ResultCache, deps.GeocodeCache)
}
