package models

import (
	"time"
)

// CacheEntry represents a key/value cache row used by the database cache backend
// DB: cache_entries
type CacheEntry struct {
	Key       string    `gorm:"column:key;primaryKey;size:255" json:"key"`
	Value     []byte    `gorm:"column:value;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_cache_expires" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CacheEntry) TableName() string {
	return "cache_entries"
}
