package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Hours    string  `json:"hours_mon" validate:"omitempty,hours"`
	Timezone string  `json:"timezone" validate:"omitempty,timezone"`
	Lat      float64 `json:"latitude" validate:"gte=-90,lte=90"`
}

func TestStruct_CustomTags(t *testing.T) {
	assert.NoError(t, Struct(sample{Hours: "09:00-17:00", Timezone: "America/Chicago"}))
	assert.NoError(t, Struct(sample{Hours: "Closed"}))
	assert.NoError(t, Struct(sample{Hours: "22:00-02:00"}))

	assert.Error(t, Struct(sample{Hours: "9am-5pm"}))
	assert.Error(t, Struct(sample{Hours: "09:00"}))
	assert.Error(t, Struct(sample{Timezone: "Mars/Olympus"}))
}

func TestDetails_UsesJSONNames(t *testing.T) {
	err := Struct(sample{Hours: "bad", Lat: 91})
	require.Error(t, err)

	details := Details(err)
	assert.Equal(t, "hours", details["hours_mon"])
	assert.Equal(t, "lte=90", details["latitude"])
}

func TestDetails_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Details(assert.AnError))
}
