package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lsjscarlett/store-locator/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseBackend stores entries in the cache_entries table. It lets several
// API replicas share geocoding results without running Redis.
type DatabaseBackend struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseBackend creates a DatabaseBackend. A nil now means time.Now.
func NewDatabaseBackend(db *gorm.DB, now func() time.Time) *DatabaseBackend {
	if now == nil {
		now = time.Now
	}
	return &DatabaseBackend{db: db, now: now}
}

func (d *DatabaseBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := d.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache entry lookup: %w", err)
	}

	if d.now().After(entry.ExpiresAt) {
		if err := d.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CacheEntry{}).Error; err != nil {
			return nil, false, fmt.Errorf("cache entry expiry: %w", err)
		}
		return nil, false, nil
	}
	return entry.Value, true, nil
}

func (d *DatabaseBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: d.now().Add(ttl),
	}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("cache entry upsert: %w", err)
	}
	return nil
}

func (d *DatabaseBackend) Delete(ctx context.Context, key string) error {
	return d.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CacheEntry{}).Error
}

func (d *DatabaseBackend) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := escapeLike(prefix) + "%"
	return d.db.WithContext(ctx).Where("key LIKE ? ESCAPE '\\'", pattern).Delete(&models.CacheEntry{}).Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
