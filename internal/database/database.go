package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/pkg/auth"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps the GORM handle.
type DB struct {
	*gorm.DB
}

// Connect opens the Postgres connection described by cfg and registers the
// metrics plugin.
func Connect(cfg *config.Config) (*DB, error) {
	logLevel := gormlogger.Silent
	if cfg.ServerEnv == "development" {
		logLevel = gormlogger.Info
	}

	db, err := Open(postgres.Open(cfg.DatabaseURL), logLevel)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		logger.GetLogger("database").Info("Database connection pool configured")
	}

	return db, nil
}

// Open opens a database through any GORM dialector. Tests use it with SQLite.
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Use(&MetricsPlugin{}); err != nil {
		logger.GetLogger("database").Warnf("Failed to register metrics plugin: %v", err)
	}

	return &DB{db}, nil
}

// Ping checks that the database answers within the context deadline.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates every table and seeds the built-in roles.
func Migrate(db *DB) error {
	err := db.AutoMigrate(
		// Store domain
		&models.Service{},
		&models.Store{},

		// User domain
		&models.Role{},
		&models.User{},
		&models.RefreshToken{},

		// Cache
		&models.CacheEntry{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedRoles(db)
}

// SeedRoles inserts the admin, marketer and viewer roles when missing.
func SeedRoles(db *DB) error {
	for _, name := range []string{models.RoleAdmin, models.RoleMarketer, models.RoleViewer} {
		role := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}

// SeedAdmin creates the admin user when no user with that email exists.
// It reports whether a user was created.
func SeedAdmin(db *DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	var existing models.User
	err := db.Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).Take(&role).Error; err != nil {
		return false, fmt.Errorf("admin role missing, run migrate first: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       &role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	logger.GetLogger("database").Infof("Admin user created: %s", email)
	return true, nil
}
