package models

import (
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
)

// ProductModel is the persistence model for a catalog product.
type ProductModel struct {
	ID            string    `gorm:"type:varchar(64);primaryKey"`
	SKU           string    `gorm:"type:varchar(100);index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	VariationJSON string    `gorm:"column:variation;type:jsonb;default:'{}'"`
	CategoryJSON  string    `gorm:"column:category_path;type:jsonb;default:'[]'"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *tracking.Product {
	return &tracking.Product{
		ID:                  m.ID,
		SKU:                 m.SKU,
		Title:               m.Title,
		VariationAttributes: parseVariationJSON(m.VariationJSON, m.ID),
		CategoryPath:        parseCategoryJSON(m.CategoryJSON, m.ID),
	}
}
