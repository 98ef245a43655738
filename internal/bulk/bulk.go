// Package bulk writes large store imports straight to Postgres through a
// pgx pool, bypassing the ORM.
package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/services"
)

// DB 데이터베이스 연결 풀
type DB struct {
	Pool *pgxpool.Pool
}

// Stats counts the rows written by an import.
type Stats struct {
	Created int
	Updated int
}

// New opens a pgx pool and pings it.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	log := logger.GetLogger("bulk")

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// 연결 풀 설정
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established")
	return &DB{Pool: pool}, nil
}

// Close 데이터베이스 연결 종료
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

const upsertStoreSQL = `
	INSERT INTO stores (
		store_id, name, store_type, status, latitude, longitude,
		address_street, address_city, address_state, address_postal_code, address_country,
		phone, timezone,
		hours_mon, hours_tue, hours_wed, hours_thu, hours_fri, hours_sat, hours_sun,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, now(), now()
	)
	ON CONFLICT (store_id) DO UPDATE SET
		name = EXCLUDED.name,
		store_type = EXCLUDED.store_type,
		status = EXCLUDED.status,
		phone = EXCLUDED.phone,
		updated_at = now()
	RETURNING (xmax = 0) AS inserted
`

// ImportStores upserts stores and replaces their service tags in a single
// transaction. Existing stores keep their location and hours; only name,
// store type, status, phone and services change, as in the admin import.
func (db *DB) ImportStores(ctx context.Context, stores []services.StoreInput) (*Stats, error) {
	log := logger.GetLogger("bulk")
	stats := &Stats{}
	if len(stores) == 0 {
		log.Warn("No stores to import")
		return stats, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tagIDs, err := ensureTags(ctx, tx, CollectTags(stores))
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, s := range stores {
		row := Defaults(s)
		batch.Queue(upsertStoreSQL,
			row.StoreID, row.Name, row.StoreType, row.Status, row.Latitude, row.Longitude,
			row.AddressStreet, row.AddressCity, row.AddressState, row.AddressPostalCode, row.AddressCountry,
			row.Phone, row.Timezone,
			row.HoursMon, row.HoursTue, row.HoursWed, row.HoursThu, row.HoursFri, row.HoursSat, row.HoursSun,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range stores {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			br.Close()
			return nil, fmt.Errorf("upsert store %s: %w", stores[i].StoreID, err)
		}
		if inserted {
			stats.Created++
		} else {
			stats.Updated++
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("upsert stores: %w", err)
	}

	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.StoreID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM store_services WHERE store_id = ANY($1)`, ids); err != nil {
		return nil, fmt.Errorf("clear store services: %w", err)
	}

	links := [][]any{}
	for _, s := range stores {
		for _, name := range services.NormalizeTags(s.Services) {
			links = append(links, []any{s.StoreID, tagIDs[name]})
		}
	}
	if len(links) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"store_services"}, []string{"store_id", "service_id"}, pgx.CopyFromRows(links)); err != nil {
			return nil, fmt.Errorf("link store services: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Infof("Bulk import committed: created=%d updated=%d tag links=%d", stats.Created, stats.Updated, len(links))
	return stats, nil
}

func ensureTags(ctx context.Context, tx pgx.Tx, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO services (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`,
		names,
	); err != nil {
		return nil, fmt.Errorf("create services: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT id, name FROM services WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// CollectTags returns every distinct normalized tag used by stores.
func CollectTags(stores []services.StoreInput) []string {
	var all []string
	for _, s := range stores {
		all = append(all, s.Services...)
	}
	return services.NormalizeTags(all)
}

// Row is a store with column defaults applied.
type Row struct {
	services.StoreInput
	Latitude  float64
	Longitude float64
}

// Defaults fills the values the ORM would otherwise default.
func Defaults(s services.StoreInput) Row {
	row := Row{StoreInput: s}
	if row.Status == "" {
		row.Status = models.StoreStatusActive
	}
	if row.AddressCountry == "" {
		row.AddressCountry = "USA"
	}
	if row.Timezone == "" {
		row.Timezone = "America/New_York"
	}
	if s.Latitude != nil {
		row.Latitude = *s.Latitude
	}
	if s.Longitude != nil {
		row.Longitude = *s.Longitude
	}
	return row
}
