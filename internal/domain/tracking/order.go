package tracking

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// OrderMetaTracked is the order meta key marking that the checkout event for
// the order has already been emitted. The value is "1" and is never cleared.
const OrderMetaTracked = "_crowdstream_tracked"

// OrderMetaTrackedValue is the stored value of the tracked flag.
const OrderMetaTrackedValue = "1"

var (
	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("tracking: order not found")
	// ErrOrderMetaNotFound indicates the order has no value for the meta key.
	ErrOrderMetaNotFound = errors.New("tracking: order meta not found")
)

// OrderLineItem is one purchased line of an order, as needed for the checkout
// item record. Amounts and quantities pass through as stored, no rounding or
// currency conversion is applied.
type OrderLineItem struct {
	// Name is the purchased item's display name.
	Name string
	// ProductID is the product's ID in the catalog.
	ProductID string
	// SKU is the product's SKU; may be empty.
	SKU string
	// VariationLabel is the formatted variation attribute label; empty for
	// simple products.
	VariationLabel string
	// CategoryPath is the product's category terms, root first.
	CategoryPath []string
	// LineTotal is the line item total.
	LineTotal decimal.Decimal
	// Quantity is the purchased quantity.
	Quantity decimal.Decimal
}

// ItemID returns the identifier emitted for the item: the SKU when present,
// otherwise "#" followed by the product ID.
func (i OrderLineItem) ItemID() string {
	if i.SKU != "" {
		return i.SKU
	}
	return "#" + i.ProductID
}

// Order is the read model of a completed order used for checkout tracking.
type Order struct {
	// ID is the order's record ID.
	ID string
	// Number is the customer-facing order number.
	Number string
	// Items are the purchased line items.
	Items []OrderLineItem
	// Total is the order grand total.
	Total decimal.Decimal
	// ShippingTotal is the shipping charge.
	ShippingTotal decimal.Decimal
	// TaxTotal is the total tax charged.
	TaxTotal decimal.Decimal
	// Currency is the order's currency code.
	Currency string
}

// TotalQuantity sums the quantities across all line items.
func (o *Order) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// OrderRepository is the port to the host's order records and order meta.
type OrderRepository interface {
	// FindByID loads an order with its line items.
	// Returns ErrOrderNotFound when the order does not exist.
	FindByID(ctx context.Context, orderID string) (*Order, error)

	// GetMeta returns the stored meta value for the order and key.
	// Returns ErrOrderMetaNotFound when no value is stored.
	GetMeta(ctx context.Context, orderID, key string) (string, error)

	// SetMetaOnce stores the meta value only if the key is not yet set for the
	// order. Returns true when the value was newly stored, false when a value
	// already existed. The write must be atomic at the storage layer.
	SetMetaOnce(ctx context.Context, orderID, key, value string) (bool, error)
}

// TrackedFlagStore is a read-through cache over the per-order tracked flag.
// The durable flag lives in order meta; implementations only shortcut repeat
// lookups and must never report tracked for an order that was not marked.
type TrackedFlagStore interface {
	// IsTracked reports whether the order is known to be tracked.
	IsTracked(ctx context.Context, orderID string) (bool, error)

	// MarkTracked records the order as tracked. Returns true when the order
	// was newly marked, false when it was already marked.
	MarkTracked(ctx context.Context, orderID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
