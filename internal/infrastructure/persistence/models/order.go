package models

import (
	"encoding/json"
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// modelLogger logs model conversion problems; malformed JSON columns degrade
// to empty values instead of failing the lookup. The global logger is looked
// up per call so it picks up the logger installed at startup.
func modelLogger() *zap.Logger {
	return zap.L().Named("persistence.models")
}

// OrderModel is the persistence model for a store order.
type OrderModel struct {
	ID            string           `gorm:"type:varchar(64);primaryKey"`
	Number        string           `gorm:"type:varchar(64);not null"`
	Total         decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	ShippingTotal decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	TaxTotal      decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Currency      string           `gorm:"type:varchar(3);not null"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *tracking.Order {
	items := make([]tracking.OrderLineItem, 0, len(m.Items))
	for i := range m.Items {
		items = append(items, m.Items[i].ToDomain())
	}
	return &tracking.Order{
		ID:            m.ID,
		Number:        m.Number,
		Items:         items,
		Total:         m.Total,
		ShippingTotal: m.ShippingTotal,
		TaxTotal:      m.TaxTotal,
		Currency:      m.Currency,
	}
}

// OrderItemModel is the persistence model for one purchased line of an order.
// Variation attributes and the category path are stored as JSON.
type OrderItemModel struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	OrderID       string          `gorm:"type:varchar(64);not null;index"`
	Name          string          `gorm:"type:varchar(255);not null"`
	ProductID     string          `gorm:"type:varchar(64);not null"`
	SKU           string          `gorm:"type:varchar(100)"`
	VariationJSON string          `gorm:"column:variation;type:jsonb;default:'{}'"`
	CategoryJSON  string          `gorm:"column:category_path;type:jsonb;default:'[]'"`
	LineTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(12,3);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderLineItem.
func (m *OrderItemModel) ToDomain() tracking.OrderLineItem {
	return tracking.OrderLineItem{
		Name:           m.Name,
		ProductID:      m.ProductID,
		SKU:            m.SKU,
		VariationLabel: tracking.FormatVariation(parseVariationJSON(m.VariationJSON, m.ProductID)),
		CategoryPath:   parseCategoryJSON(m.CategoryJSON, m.ProductID),
		LineTotal:      m.LineTotal,
		Quantity:       m.Quantity,
	}
}

// OrderMetaModel is the persistence model for per-order meta values. The
// unique index over (order_id, meta_key) backs the set-once tracked flag.
type OrderMetaModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_meta_key"`
	MetaKey   string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_order_meta_key"`
	MetaValue string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderMetaModel) TableName() string {
	return "order_meta"
}

// parseVariationJSON decodes a stored variation attribute map.
func parseVariationJSON(raw, productID string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		modelLogger().Warn("failed to parse variation JSON",
			zap.String("product_id", productID),
			zap.String("raw_json", raw),
			zap.Error(err))
		return nil
	}
	return attrs
}

// parseCategoryJSON decodes a stored category path array.
func parseCategoryJSON(raw, productID string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var path []string
	if err := json.Unmarshal([]byte(raw), &path); err != nil {
		modelLogger().Warn("failed to parse category path JSON",
			zap.String("product_id", productID),
			zap.String("raw_json", raw),
			zap.Error(err))
		return nil
	}
	return path
}
