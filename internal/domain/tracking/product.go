package tracking

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("tracking: product not found")
)

// Product is the read model of a catalog product used for cart event payloads.
type Product struct {
	// ID is the product's record ID.
	ID string
	// SKU is the product's SKU; may be empty.
	SKU string
	// Title is the product's display title.
	Title string
	// VariationAttributes holds attribute name -> value for variation
	// products; empty for simple products.
	VariationAttributes map[string]string
	// CategoryPath is the product's category terms, root first.
	CategoryPath []string
}

// ItemID returns the identifier emitted for the product: the SKU when present,
// otherwise "#" followed by the product ID.
func (p *Product) ItemID() string {
	if p.SKU != "" {
		return p.SKU
	}
	return "#" + p.ID
}

// FormatVariation formats variation attributes into the variant label emitted
// with tracking events, e.g. "color: red, size: xl". Attribute names are
// sorted for a stable label. Returns "" for simple products.
func FormatVariation(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+attributes[name])
	}
	return strings.Join(parts, ", ")
}

// FormatCategoryPath joins category terms into the "/"-separated path emitted
// with checkout item records.
func FormatCategoryPath(terms []string) string {
	return strings.Join(terms, "/")
}

// ProductRepository is the port to the host's product catalog.
type ProductRepository interface {
	// FindByID loads a product with its variation attributes and category
	// terms. Returns ErrProductNotFound when the product does not exist.
	FindByID(ctx context.Context, productID string) (*Product, error)
}
