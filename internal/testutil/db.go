// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Role returns the id of a seeded role.
func Role(t *testing.T, db *database.DB, name string) uint {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", name).Take(&role).Error)
	return role.ID
}

// Store builds a store with sensible defaults. Hours default to open all day.
func Store(id string, lat, lng float64, opts ...func(*models.Store)) models.Store {
	s := models.Store{
		StoreID:           id,
		Name:              "Store " + id,
		StoreType:         "regular",
		Status:            models.StoreStatusActive,
		Latitude:          lat,
		Longitude:         lng,
		AddressStreet:     "1 Main St",
		AddressCity:       "Springfield",
		AddressState:      "NY",
		AddressPostalCode: "10001",
		AddressCountry:    "USA",
		Timezone:          "America/New_York",
		HoursMon:          "00:00-23:59",
		HoursTue:          "00:00-23:59",
		HoursWed:          "00:00-23:59",
		HoursThu:          "00:00-23:59",
		HoursFri:          "00:00-23:59",
		HoursSat:          "00:00-23:59",
		HoursSun:          "00:00-23:59",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithServices attaches tag names to a fixture store.
func WithServices(names ...string) func(*models.Store) {
	return func(s *models.Store) {
		for _, n := range names {
			s.Services = append(s.Services, models.Service{Name: n})
		}
	}
}

// SeedStores inserts fixture stores, creating their tags first.
func SeedStores(t *testing.T, db *database.DB, stores ...models.Store) {
	t.Helper()

	for i := range stores {
		s := stores[i]
		for j, svc := range s.Services {
			tag := models.Service{Name: svc.Name}
			require.NoError(t, db.Where(models.Service{Name: svc.Name}).FirstOrCreate(&tag).Error)
			s.Services[j] = tag
		}
		require.NoError(t, db.Create(&s).Error)
	}
}
