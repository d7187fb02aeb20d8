package persistence

import (
	"context"
	"errors"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID loads a product by its catalog ID.
func (r *GormProductRepository) FindByID(ctx context.Context, productID string) (*tracking.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracking.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormProductRepository implements ProductRepository
var _ tracking.ProductRepository = (*GormProductRepository)(nil)
