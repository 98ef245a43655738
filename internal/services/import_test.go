package services

import (
	"context"
	"strings"
	"testing"

	"github.com/lsjscarlett/store-locator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importCSV = `store_id,name,store_type,status,latitude,longitude,address_street,address_city,address_state,address_postal_code,address_country,phone,services,hours_mon,hours_tue,hours_wed,hours_thu,hours_fri,hours_sat,hours_sun
S1,Renamed Downtown,flagship,active,40.7,-74.0,1 Main St,New York,NY,10001,USA,555-0100,wifi|parking,09:00-17:00,09:00-17:00,09:00-17:00,09:00-17:00,09:00-17:00,closed,closed
N1,New Store,regular,active,41.0,-73.5,2 Elm St,Stamford,CT,06901,USA,555-0101,coffee,08:00-20:00,08:00-20:00,08:00-20:00,08:00-20:00,08:00-20:00,08:00-20:00,closed
N2,Bad Hours,regular,active,41.0,-73.5,,,,,,,,9am-5pm,,,,,,
N3,Bad Lat,regular,active,north,-73.5,,,,,,,,,,,,,,
,Skipped,regular,active,1,1,,,,,,,,,,,,,,
`

func TestImportService_Import(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedStores(t, db, testutil.Store("S1", 1, 1, testutil.WithServices("drive-thru")))
	events := &recordingEvents{}
	svc := NewImportService(db, events)
	stores := NewStoreService(db, nil, nil)
	ctx := context.Background()

	stats, err := svc.Import(ctx, strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Created: 1, Updated: 1, Errors: 2}, *stats)

	s1, err := stores.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Downtown", s1.Name)
	assert.Equal(t, "flagship", s1.StoreType)
	assert.Equal(t, "555-0100", s1.Phone)
	assert.ElementsMatch(t, []string{"wifi", "parking"}, s1.ServiceNames())
	// Coordinates of existing stores are not overwritten.
	assert.Equal(t, 1.0, s1.Latitude)

	n1, err := stores.Get(ctx, "N1")
	require.NoError(t, err)
	assert.Equal(t, 41.0, n1.Latitude)
	assert.Equal(t, "06901", n1.AddressPostalCode)
	assert.Equal(t, "08:00-20:00", n1.HoursMon)
	assert.Equal(t, []string{"coffee"}, n1.ServiceNames())

	_, err = stores.Get(ctx, "N2")
	assert.ErrorIs(t, err, ErrStoreNotFound)

	require.Len(t, events.events, 1)
	assert.Equal(t, StoresImported, events.events[0].action)
	assert.Equal(t, []string{"S1", "N1"}, events.events[0].ids)
}

func TestImportService_RejectsFileWithoutHeader(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewImportService(db, nil)

	_, err := svc.Import(context.Background(), strings.NewReader("id,title\n1,x\n"))
	assert.Error(t, err)
}
