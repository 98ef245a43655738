package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/lsjscarlett/store-locator/internal/logger"
)

// CleanupStats counts rows removed by Cleanup.
type CleanupStats struct {
	CacheEntries  int64
	RefreshTokens int64
}

// Cleanup deletes expired cache_entries rows and refresh tokens that are
// expired or were revoked before the cutoff. Reads already treat expired
// cache rows as absent; this only reclaims space.
func (db *DB) Cleanup(ctx context.Context, now time.Time, revokedBefore time.Time) (*CleanupStats, error) {
	log := logger.GetLogger("cleanup")
	startTime := time.Now()

	log.Infof("===== 만료 데이터 정리 시작 (기준: %s) =====", now.UTC().Format(time.RFC3339))

	stats := &CleanupStats{}

	result, err := db.Pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("delete cache entries: %w", err)
	}
	stats.CacheEntries = result.RowsAffected()

	result, err = db.Pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE expires_at < $1
		   OR (revoked_at IS NOT NULL AND revoked_at < $2)
	`, now, revokedBefore)
	if err != nil {
		return nil, fmt.Errorf("delete refresh tokens: %w", err)
	}
	stats.RefreshTokens = result.RowsAffected()

	log.Infof("정리 완료: cache_entries=%d refresh_tokens=%d (%s)",
		stats.CacheEntries, stats.RefreshTokens, time.Since(startTime).Round(time.Millisecond))
	return stats, nil
}
