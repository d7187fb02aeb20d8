package persistence

import (
	"context"
	"errors"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its line items.
func (r *GormOrderRepository) FindByID(ctx context.Context, orderID string) (*tracking.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracking.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetMeta returns the stored meta value for the order and key.
func (r *GormOrderRepository) GetMeta(ctx context.Context, orderID, key string) (string, error) {
	var model models.OrderMetaModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND meta_key = ?", orderID, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", tracking.ErrOrderMetaNotFound
	}
	if err != nil {
		return "", err
	}
	return model.MetaValue, nil
}

// SetMetaOnce stores the meta value only if the key is not yet set for the
// order. The unique index over (order_id, meta_key) makes the insert atomic;
// a conflicting row leaves RowsAffected at zero.
func (r *GormOrderRepository) SetMetaOnce(ctx context.Context, orderID, key, value string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoNothing: true,
		}).
		Create(&models.OrderMetaModel{
			OrderID:   orderID,
			MetaKey:   key,
			MetaValue: value,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ tracking.OrderRepository = (*GormOrderRepository)(nil)
