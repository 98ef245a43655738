package bulk

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectTags(t *testing.T) {
	stores := []services.StoreInput{
		{StoreID: "A", Services: services.TagList{"WiFi", "parking"}},
		{StoreID: "B", Services: services.TagList{"wifi", " coffee "}},
		{StoreID: "C"},
	}
	assert.Equal(t, []string{"coffee", "parking", "wifi"}, CollectTags(stores))
}

func TestDefaults(t *testing.T) {
	lat := 40.5
	row := Defaults(services.StoreInput{StoreID: "A", Latitude: &lat})

	assert.Equal(t, "active", row.Status)
	assert.Equal(t, "USA", row.AddressCountry)
	assert.Equal(t, "America/New_York", row.Timezone)
	assert.Equal(t, 40.5, row.Latitude)
	assert.Equal(t, 0.0, row.Longitude)
}

// TestImportStoresPostgres runs against a migrated database named by
// STORELOCATOR_TEST_DATABASE_URL.
func TestImportStoresPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	url := os.Getenv("STORELOCATOR_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STORELOCATOR_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	lat, lng := 40.7, -74.0
	stores := []services.StoreInput{
		{StoreID: "BULK-1", Name: "Bulk One", StoreType: "regular", Latitude: &lat, Longitude: &lng, Services: services.TagList{"wifi"}},
	}

	_, err = db.ImportStores(ctx, stores)
	require.NoError(t, err)

	stores[0].Name = "Bulk One Renamed"
	stats, err := db.ImportStores(ctx, stores)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	var name string
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT name FROM stores WHERE store_id = $1`, "BULK-1").Scan(&name))
	assert.Equal(t, "Bulk One Renamed", name)

	_, err = db.Cleanup(ctx, time.Now(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, _ = db.Pool.Exec(ctx, `DELETE FROM store_services WHERE store_id = 'BULK-1'`)
	_, _ = db.Pool.Exec(ctx, `DELETE FROM stores WHERE store_id = 'BULK-1'`)
}
