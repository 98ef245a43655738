package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/geocoder"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrStoreExists   = errors.New("store id already exists")
)

// Store change actions carried by StoreChanged events.
const (
	StoreCreated     = "created"
	StoreUpdated     = "updated"
	StoreDeactivated = "deactivated"
	StoresImported   = "imported"
)

// StoreEvents is told about every store mutation.
type StoreEvents interface {
	StoreChanged(ctx context.Context, action string, storeIDs ...string)
}

type noopEvents struct{}

func (noopEvents) StoreChanged(context.Context, string, ...string) {}

// StoreInput creates a store. Omitted coordinates are geocoded from the
// postal code.
type StoreInput struct {
	StoreID           string   `json:"store_id" validate:"required,max=64"`
	Name              string   `json:"name" validate:"required,max=255"`
	StoreType         string   `json:"store_type" validate:"required,max=50"`
	Status            string   `json:"status" validate:"omitempty,oneof=active inactive"`
	Latitude          *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	AddressStreet     string   `json:"address_street" validate:"max=255"`
	AddressCity       string   `json:"address_city" validate:"max=100"`
	AddressState      string   `json:"address_state" validate:"max=50"`
	AddressPostalCode string   `json:"address_postal_code" validate:"max=20"`
	AddressCountry    string   `json:"address_country" validate:"max=50"`
	Phone             string   `json:"phone" validate:"max=50"`
	Timezone          string   `json:"timezone" validate:"omitempty,timezone"`
	HoursMon          string   `json:"hours_mon" validate:"omitempty,hours"`
	HoursTue          string   `json:"hours_tue" validate:"omitempty,hours"`
	HoursWed          string   `json:"hours_wed" validate:"omitempty,hours"`
	HoursThu          string   `json:"hours_thu" validate:"omitempty,hours"`
	HoursFri          string   `json:"hours_fri" validate:"omitempty,hours"`
	HoursSat          string   `json:"hours_sat" validate:"omitempty,hours"`
	HoursSun          string   `json:"hours_sun" validate:"omitempty,hours"`
	Services          TagList  `json:"services"`
}

// StorePatch updates the non-nil fields of a store. A non-nil Services
// replaces the whole tag set.
type StorePatch struct {
	Name              *string  `json:"name" validate:"omitempty,max=255"`
	StoreType         *string  `json:"store_type" validate:"omitempty,max=50"`
	Status            *string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Latitude          *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	AddressStreet     *string  `json:"address_street" validate:"omitempty,max=255"`
	AddressCity       *string  `json:"address_city" validate:"omitempty,max=100"`
	AddressState      *string  `json:"address_state" validate:"omitempty,max=50"`
	AddressPostalCode *string  `json:"address_postal_code" validate:"omitempty,max=20"`
	AddressCountry    *string  `json:"address_country" validate:"omitempty,max=50"`
	Phone             *string  `json:"phone" validate:"omitempty,max=50"`
	Timezone          *string  `json:"timezone" validate:"omitempty,timezone"`
	HoursMon          *string  `json:"hours_mon" validate:"omitempty,hours"`
	HoursTue          *string  `json:"hours_tue" validate:"omitempty,hours"`
	HoursWed          *string  `json:"hours_wed" validate:"omitempty,hours"`
	HoursThu          *string  `json:"hours_thu" validate:"omitempty,hours"`
	HoursFri          *string  `json:"hours_fri" validate:"omitempty,hours"`
	HoursSat          *string  `json:"hours_sat" validate:"omitempty,hours"`
	HoursSun          *string  `json:"hours_sun" validate:"omitempty,hours"`
	Services          *TagList `json:"services"`
}

// StoreFilter pages through stores for the admin listing.
type StoreFilter struct {
	Page      int
	Limit     int
	Status    string
	StoreType string
}

// StoreView is a store with its tag names flattened.
type StoreView struct {
	models.Store
	Services []string `json:"services"`
}

// NewStoreView flattens s for JSON output.
func NewStoreView(s models.Store) StoreView {
	return StoreView{Store: s, Services: s.ServiceNames()}
}

type StoreListResponse struct {
	Items []StoreView `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type StoreService struct {
	db      *database.DB
	locator Locator
	events  StoreEvents
	log     *zap.SugaredLogger
}

// NewStoreService creates a StoreService. locator and events may be nil.
func NewStoreService(db *database.DB, locator Locator, events StoreEvents) *StoreService {
	if events == nil {
		events = noopEvents{}
	}
	return &StoreService{
		db:      db,
		locator: locator,
		events:  events,
		log:     logger.GetLogger("stores"),
	}
}

// FindCandidates implements StoreSource.
func (s *StoreService) FindCandidates(ctx context.Context, q CandidateQuery) ([]models.Store, error) {
	query := s.db.WithContext(ctx).Model(&models.Store{}).Preload("Services")
	if q.StoreType != "" {
		query = query.Where("LOWER(store_type) = ?", strings.ToLower(q.StoreType))
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var stores []models.Store
	if err := query.Order("store_id ASC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return stores, nil
}

// List retrieves stores with filtering and pagination
func (s *StoreService) List(ctx context.Context, filter StoreFilter) (*StoreListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Store{})
	if filter.Status != "" && filter.Status != StatusAll {
		query = query.Where("status = ?", strings.ToLower(filter.Status))
	}
	if filter.StoreType != "" {
		query = query.Where("LOWER(store_type) = ?", strings.ToLower(filter.StoreType))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var stores []models.Store
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Services").Order("store_id ASC").Offset(offset).Limit(filter.Limit).Find(&stores).Error; err != nil {
		return nil, err
	}

	items := make([]StoreView, 0, len(stores))
	for _, st := range stores {
		items = append(items, NewStoreView(st))
	}
	return &StoreListResponse{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Get returns one store with its services.
func (s *StoreService) Get(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	err := s.db.WithContext(ctx).Preload("Services").Where("store_id = ?", storeID).Take(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// Create inserts a new store. Missing coordinates are geocoded from the
// postal code and default to 0,0 when that fails.
func (s *StoreService) Create(ctx context.Context, in StoreInput) (*models.Store, error) {
	store := in.toModel()

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Store{}).Where("store_id = ?", store.StoreID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrStoreExists
	}
	if in.Latitude == nil || in.Longitude == nil {
		store.Latitude, store.Longitude = s.geocodePostalCode(ctx, in.AddressPostalCode)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := ResolveTags(tx, in.Services)
		if err != nil {
			return err
		}
		store.Services = tags
		return tx.Omit("Services.*").Create(&store).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	s.log.Infof("Store created: %s", store.StoreID)
	s.events.StoreChanged(ctx, StoreCreated, store.StoreID)
	return &store, nil
}

// Update applies a partial update.
func (s *StoreService) Update(ctx context.Context, storeID string, patch StorePatch) (*models.Store, error) {
	store, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	patch.apply(store)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(store).Error; err != nil {
			return err
		}
		if patch.Services == nil {
			return nil
		}
		tags, err := ResolveTags(tx, *patch.Services)
		if err != nil {
			return err
		}
		store.Services = tags
		return tx.Model(store).Association("Services").Replace(tags)
	})
	if err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}

	s.events.StoreChanged(ctx, StoreUpdated, store.StoreID)
	return store, nil
}

// Deactivate soft-deletes a store by marking it inactive. Unknown ids are
// not an error.
func (s *StoreService) Deactivate(ctx context.Context, storeID string) error {
	result := s.db.WithContext(ctx).Model(&models.Store{}).
		Where("store_id = ?", storeID).
		Update("status", models.StoreStatusInactive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Infof("Store deactivated: %s", storeID)
		s.events.StoreChanged(ctx, StoreDeactivated, storeID)
	}
	return nil
}

func (s *StoreService) geocodePostalCode(ctx context.Context, postalCode string) (float64, float64) {
	if s.locator == nil || strings.TrimSpace(postalCode) == "" {
		return 0, 0
	}
	p, ok := s.locator.Geocode(ctx, geocoder.Query{PostalCode: postalCode})
	if !ok {
		s.log.Warnf("Could not geocode postal code %q, storing 0,0", postalCode)
		return 0, 0
	}
	return p.Lat, p.Lng
}

// ResolveTags returns the service rows for names, creating missing ones.
func ResolveTags(tx *gorm.DB, names []string) ([]models.Service, error) {
	names = NormalizeTags(names)
	if len(names) == 0 {
		return []models.Service{}, nil
	}

	rows := make([]models.Service, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.Service{Name: n})
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create services: %w", err)
	}

	var tags []models.Service
	if err := tx.Where("name IN ?", names).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	return tags, nil
}

func (in StoreInput) toModel() models.Store {
	store := models.Store{
		StoreID:           strings.TrimSpace(in.StoreID),
		Name:              in.Name,
		StoreType:         in.StoreType,
		Status:            in.Status,
		AddressStreet:     in.AddressStreet,
		AddressCity:       in.AddressCity,
		AddressState:      in.AddressState,
		AddressPostalCode: in.AddressPostalCode,
		AddressCountry:    in.AddressCountry,
		Phone:             in.Phone,
		Timezone:          in.Timezone,
		HoursMon:          in.HoursMon,
		HoursTue:          in.HoursTue,
		HoursWed:          in.HoursWed,
		HoursThu:          in.HoursThu,
		HoursFri:          in.HoursFri,
		HoursSat:          in.HoursSat,
		HoursSun:          in.HoursSun,
	}
	if store.Status == "" {
		store.Status = models.StoreStatusActive
	}
	if store.AddressCountry == "" {
		store.AddressCountry = "USA"
	}
	if store.Timezone == "" {
		store.Timezone = "America/New_York"
	}
	if in.Latitude != nil {
		store.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		store.Longitude = *in.Longitude
	}
	return store
}

func (p StorePatch) apply(s *models.Store) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.Name, p.Name)
	set(&s.StoreType, p.StoreType)
	set(&s.Status, p.Status)
	set(&s.AddressStreet, p.AddressStreet)
	set(&s.AddressCity, p.AddressCity)
	set(&s.AddressState, p.AddressState)
	set(&s.AddressPostalCode, p.AddressPostalCode)
	set(&s.AddressCountry, p.AddressCountry)
	set(&s.Phone, p.Phone)
	set(&s.Timezone, p.Timezone)
	set(&s.HoursMon, p.HoursMon)
	set(&s.HoursTue, p.HoursTue)
	set(&s.HoursWed, p.HoursWed)
	set(&s.HoursThu, p.HoursThu)
	set(&s.HoursFri, p.HoursFri)
	set(&s.HoursSat, p.HoursSat)
	set(&s.HoursSun, p.HoursSun)
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
}
