package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort       string
	ServerEnv        string
	ServerHost       string // Swagger host 설정용
	CORSAllowOrigins string
	InternalAPIKey   string
	SearchRateLimit  int

	// Database
	DatabaseURL string

	// JWT
	JWTSecretKey              string
	JWTAccessTokenExpireMin   int
	JWTRefreshTokenExpireDays int

	// Cache
	CacheBackend    string // memory | redis | database
	RedisURL        string
	GeocodeCacheTTL time.Duration
	SearchCacheTTL  time.Duration

	// Geocoder
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderCountry   string

	// Search
	DefaultTimezone       string
	NationwideRadiusMiles float64

	// Seed
	AdminEmail    string
	AdminPassword string

	// Internal API (storectl)
	APIBaseURL string

	// SigNoz
	SigNozEndpoint string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:       getEnv("SERVER_PORT", "3000"),
		ServerEnv:        getEnv("SERVER_ENV", "development"),
		ServerHost:       getEnv("SERVER_HOST", "localhost:3000"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		InternalAPIKey:   getEnv("INTERNAL_API_KEY", ""),
		SearchRateLimit:  getEnvAsInt("SEARCH_RATE_LIMIT_PER_MINUTE", 100),

		// Database - DATABASE_URL 우선, 없으면 개별 환경변수로 구성
		DatabaseURL: getDatabaseURL(),

		// JWT
		JWTSecretKey:              getEnv("JWT_SECRET_KEY", ""),
		JWTAccessTokenExpireMin:   getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		JWTRefreshTokenExpireDays: getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7),

		// Cache
		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisURL:        getEnvWithFallback("REDIS_URL", "REDIS_ADDR", "redis://localhost:6379/0"),
		GeocodeCacheTTL: time.Duration(getEnvAsInt("GEOCODE_CACHE_TTL_HOURS", 30*24)) * time.Hour,
		SearchCacheTTL:  time.Duration(getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 300)) * time.Second,

		// Geocoder
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "store-locator/1.0"),
		GeocoderTimeout:   time.Duration(getEnvAsInt("GEOCODER_TIMEOUT_SECONDS", 10)) * time.Second,
		GeocoderCountry:   getEnv("GEOCODER_COUNTRY", "us"),

		// Search
		DefaultTimezone:       getEnv("DEFAULT_TIMEZONE", "America/New_York"),
		NationwideRadiusMiles: getEnvAsFloat("NATIONWIDE_RADIUS_MILES", 5000),

		// Seed
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:3000"),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.ServerEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvWithFallback tries primary key first, then fallback key
func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value, exists := os.LookupEnv(primary); exists && value != "" {
		return value
	}
	if value, exists := os.LookupEnv(fallback); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	// 1. DATABASE_URL이 있으면 그대로 사용
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// 2. 개별 환경변수로 구성
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "store_locator")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
