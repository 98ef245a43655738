package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	_ "github.com/lsjscarlett/store-locator/docs"
	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/events"
	"github.com/lsjscarlett/store-locator/internal/geocoder"
	"github.com/lsjscarlett/store-locator/internal/handlers"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/middleware"
	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/lsjscarlett/store-locator/internal/telemetry"
	"github.com/lsjscarlett/store-locator/pkg/hours"
)

// @title Store Locator API
// @version 1.0.0
// @description Store search, geocoding and store administration API
// @host localhost:3000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.GetLogger("main")

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry Tracer
	tracerShutdown, err := telemetry.InitTracer(ctx, telemetry.ServiceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize tracer: %v", err)
	} else {
		defer func() {
			if err := tracerShutdown(context.Background()); err != nil {
				log.Warnf("Error shutting down tracer: %v", err)
			}
		}()
	}

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, telemetry.ServiceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize metrics: %v", err)
	} else {
		defer func() {
			if err := meterShutdown(context.Background()); err != nil {
				log.Warnf("Error shutting down metrics: %v", err)
			}
		}()
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 15*time.Second)

	backend, closeBackend, err := newCacheBackend(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize %s cache: %v", cfg.CacheBackend, err)
	}
	defer closeBackend()

	geocodeCache := cache.New(backend, cache.NamespaceGeocode, cfg.GeocodeCacheTTL)
	resultCache := cache.New(backend, cache.NamespaceSearch, cfg.SearchCacheTTL)
	locator := geocoder.New(geocoder.NewNominatim(cfg), geocodeCache)
	log.Infof("Cache backend %s: geocode ttl=%s, search ttl=%s", cfg.CacheBackend, geocodeCache.TTL(), resultCache.TTL())

	// 매장 변경 시 검색 결과 캐시 삭제
	bus := events.NewBus()
	defer bus.Close()
	if err := bus.Subscribe("purge-search-results", events.PurgeCache(resultCache)); err != nil {
		log.Fatalf("Failed to subscribe cache purger: %v", err)
	}

	evaluator := hours.NewEvaluator(hours.ResolveLocation(cfg.DefaultTimezone, nil), nil)
	stores := services.NewStoreService(db, locator, bus)
	authService := services.NewAuthService(db, cfg)
	go purgeExpiredTokens(ctx, authService, time.Hour)

	app := fiber.New(fiber.Config{
		AppName:      "Store Locator API",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     `{"time":"${time}","request_id":"${locals:requestid}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		TimeZone:   "UTC",
	}))
	app.Use(telemetry.New())
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders: "Accept, Authorization, Content-Type, Origin, X-Requested-With, X-API-Key",
		MaxAge:       86400, // Preflight 캐시 24시간
	}))

	handlers.SetupRoutes(app, handlers.Dependencies{
		DB:              db,
		Search:          services.NewSearchService(stores, locator, resultCache, evaluator, cfg.NationwideRadiusMiles),
		Stores:          stores,
		Imports:         services.NewImportService(db, bus),
		Users:           services.NewUserService(db),
		Auth:            authService,
		ResultCache:     resultCache,
		GeocodeCache:    geocodeCache,
		JWTSecretKey:    cfg.JWTSecretKey,
		InternalAPIKey:  cfg.InternalAPIKey,
		SearchRateLimit: cfg.SearchRateLimit,
		MetricsOpen:     !cfg.IsProduction(),
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warnf("Error shutting down server: %v", err)
		}
	}()

	log.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCacheBackend builds the backend named by CACHE_BACKEND.
func newCacheBackend(ctx context.Context, cfg *config.Config, db *database.DB) (cache.Backend, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case "redis":
		backend, err := cache.NewRedisBackend(ctx, cache.RedisOptions{URL: cfg.RedisURL})
		if err != nil {
			return nil, noop, err
		}
		return backend, func() { _ = backend.Close() }, nil
	case "database":
		return cache.NewDatabaseBackend(db.DB, nil), noop, nil
	default:
		return cache.NewMemoryBackend(nil), noop, nil
	}
}

func purgeExpiredTokens(ctx context.Context, svc *services.AuthService, interval time.Duration) {
	log := logger.GetLogger("auth")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Warnf("Failed to purge expired refresh tokens: %v", err)
				continue
			}
			if n > 0 {
				log.Infof("Purged %d expired refresh tokens", n)
			}
		}
	}
}
