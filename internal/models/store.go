package models

import (
	"sort"
	"time"

	"github.com/lsjscarlett/store-locator/pkg/geo"
	"github.com/lsjscarlett/store-locator/pkg/hours"
)

const (
	StoreStatusActive   = "active"
	StoreStatusInactive = "inactive"
)

// Service represents a store service tag ("wifi", "parking")
// DB: services
type Service struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:name;size:100;not null;uniqueIndex:services_name_key" json:"name"`
}

func (Service) TableName() string {
	return "services"
}

// Store represents a physical store location
// DB: stores
type Store struct {
	StoreID           string  `gorm:"column:store_id;primaryKey;size:64" json:"store_id"`
	Name              string  `gorm:"column:name;size:255;not null" json:"name"`
	StoreType         string  `gorm:"column:store_type;size:50;not null;index:idx_store_type" json:"store_type"`
	Status            string  `gorm:"column:status;size:20;not null;default:active;index:idx_store_status" json:"status"`
	Latitude          float64 `gorm:"column:latitude;type:double precision;not null;index:idx_lat_lon,priority:1" json:"latitude"`
	Longitude         float64 `gorm:"column:longitude;type:double precision;not null;index:idx_lat_lon,priority:2" json:"longitude"`
	AddressStreet     string  `gorm:"column:address_street;size:255" json:"address_street"`
	AddressCity       string  `gorm:"column:address_city;size:100" json:"address_city"`
	AddressState      string  `gorm:"column:address_state;size:50" json:"address_state"`
	AddressPostalCode string  `gorm:"column:address_postal_code;size:20;index:idx_postal_code" json:"address_postal_code"`
	AddressCountry    string  `gorm:"column:address_country;size:50;default:USA" json:"address_country"`
	Phone             string  `gorm:"column:phone;size:50" json:"phone"`
	Timezone          string  `gorm:"column:timezone;size:64;default:America/New_York" json:"timezone"`

	HoursMon string `gorm:"column:hours_mon;size:20" json:"hours_mon"`
	HoursTue string `gorm:"column:hours_tue;size:20" json:"hours_tue"`
	HoursWed string `gorm:"column:hours_wed;size:20" json:"hours_wed"`
	HoursThu string `gorm:"column:hours_thu;size:20" json:"hours_thu"`
	HoursFri string `gorm:"column:hours_fri;size:20" json:"hours_fri"`
	HoursSat string `gorm:"column:hours_sat;size:20" json:"hours_sat"`
	HoursSun string `gorm:"column:hours_sun;size:20" json:"hours_sun"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Services []Service `gorm:"many2many:store_services;joinForeignKey:StoreID;joinReferences:ServiceID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// Point returns the store coordinates.
func (s *Store) Point() geo.Point {
	return geo.Point{Lat: s.Latitude, Lng: s.Longitude}
}

// Week returns the hour strings ordered Monday..Sunday.
func (s *Store) Week() hours.Week {
	return hours.Week{s.HoursMon, s.HoursTue, s.HoursWed, s.HoursThu, s.HoursFri, s.HoursSat, s.HoursSun}
}

// ServiceNames returns the sorted tag names attached to the store.
func (s *Store) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.Name)
	}
	sort.Strings(names)
	return names
}

// HasServices reports whether the store carries every tag in required.
// Tags are compared as stored (lower-case).
func (s *Store) HasServices(required []string) bool {
	if len(required) == 0 {
		return true
	}
	owned := make(map[string]struct{}, len(s.Services))
	for _, svc := range s.Services {
		owned[svc.Name] = struct{}{}
	}
	for _, name := range required {
		if _, ok := owned[name]; !ok {
			return false
		}
	}
	return true
}
