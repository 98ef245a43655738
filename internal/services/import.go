package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/storecsv"
	"github.com/lsjscarlett/store-locator/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportStats counts the outcome of an import.
type ImportStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

type ImportService struct {
	db     *database.DB
	events StoreEvents
	log    *zap.SugaredLogger
}

func NewImportService(db *database.DB, events StoreEvents) *ImportService {
	if events == nil {
		events = noopEvents{}
	}
	return &ImportService{db: db, events: events, log: logger.GetLogger("import")}
}

// RowInput converts a parsed CSV row into a StoreInput.
func RowInput(row storecsv.Row) StoreInput {
	return StoreInput{
		StoreID:           row.StoreID,
		Name:              row.Name,
		StoreType:         row.StoreType,
		Status:            row.Status,
		Latitude:          row.Latitude,
		Longitude:         row.Longitude,
		AddressStreet:     row.AddressStreet,
		AddressCity:       row.AddressCity,
		AddressState:      row.AddressState,
		AddressPostalCode: row.AddressPostalCode,
		AddressCountry:    row.AddressCountry,
		Phone:             row.Phone,
		Timezone:          row.Timezone,
		HoursMon:          row.Hours[0],
		HoursTue:          row.Hours[1],
		HoursWed:          row.Hours[2],
		HoursThu:          row.Hours[3],
		HoursFri:          row.Hours[4],
		HoursSat:          row.Hours[5],
		HoursSun:          row.Hours[6],
		Services:          NormalizeTags(row.Services),
	}
}

// Import reads a store CSV. Rows for existing ids update name, store type,
// status, phone and services; new ids are inserted in full. A failing row is
// counted and does not stop the import.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	parsed, err := storecsv.Parse(r)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{Errors: len(parsed.Errors)}
	for _, rowErr := range parsed.Errors {
		s.log.Warnf("Import row skipped: %v", rowErr)
	}

	var changed []string
	for _, row := range parsed.Rows {
		in := RowInput(row)
		if err := validation.Struct(in); err != nil {
			stats.Errors++
			s.log.Warnf("Import line %d invalid: %v", row.Line, err)
			continue
		}

		created, err := s.upsert(ctx, in)
		if err != nil {
			stats.Errors++
			s.log.Warnf("Import line %d failed: %v", row.Line, err)
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		changed = append(changed, in.StoreID)
	}

	s.log.Infof("Import finished: created=%d updated=%d errors=%d", stats.Created, stats.Updated, stats.Errors)
	if len(changed) > 0 {
		s.events.StoreChanged(ctx, StoresImported, changed...)
	}
	return stats, nil
}

func (s *ImportService) upsert(ctx context.Context, in StoreInput) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := ResolveTags(tx, in.Services)
		if err != nil {
			return err
		}

		var existing models.Store
		err = tx.Where("store_id = ?", in.StoreID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			store := in.toModel()
			store.Services = tags
			created = true
			return tx.Omit("Services.*").Create(&store).Error
		case err != nil:
			return err
		}

		status := in.Status
		if status == "" {
			status = models.StoreStatusActive
		}
		existing.Name = in.Name
		existing.StoreType = in.StoreType
		existing.Status = status
		existing.Phone = in.Phone
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return err
		}
		if err := tx.Model(&existing).Association("Services").Replace(tags); err != nil {
			return fmt.Errorf("replace services: %w", err)
		}
		return nil
	})
	return created, err
}
