package persistence

import (
	"context"
	"errors"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsStore implements SettingsStore using GORM
type GormSettingsStore struct {
	db *gorm.DB
}

// NewGormSettingsStore creates a new GormSettingsStore
func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// Get returns the stored value for the named option.
func (s *GormSettingsStore) Get(ctx context.Context, name string) (string, error) {
	var model models.OptionModel
	err := s.db.WithContext(ctx).
		Where("option_name = ?", name).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", tracking.ErrOptionNotFound
	}
	if err != nil {
		return "", err
	}
	return model.Value, nil
}

// Set stores the value for the named option, creating or replacing it.
func (s *GormSettingsStore) Set(ctx context.Context, name, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "option_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_value", "updated_at"}),
		}).
		Create(&models.OptionModel{Name: name, Value: value}).Error
}

// Ensure GormSettingsStore implements SettingsStore
var _ tracking.SettingsStore = (*GormSettingsStore)(nil)
