package tracking

// CheckoutItem is one item record of the checkout event, shaped exactly as the
// analytics backend expects it. All values are strings; amounts pass through
// as stored on the order.
type CheckoutItem struct {
	OrderID   string `json:"order_id"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Variation string `json:"variation"`
	Category  string `json:"category"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Currency  string `json:"currency"`
}

// CheckoutEvent is the order-level checkout payload. Items carries the total
// quantity across all line items, not the item count.
type CheckoutEvent struct {
	OrderID  string
	Total    string
	Shipping string
	Currency string
	Items    string
}

// IdentifyCall is the identify event emitted for a logged-in visitor.
type IdentifyCall struct {
	UserID string
	Traits UserProfile
}

// CartEventParams holds the cart click payload as JavaScript expressions, one
// per emitted field. On single-product pages the values are quoted string
// literals built from the displayed product; on listing pages they are
// expressions resolved in the browser at click time from the clicked button's
// data attributes.
type CartEventParams struct {
	ID   string
	SKU  string
	Name string
}

// CartEventFilter rewrites cart event parameters before the click handler is
// rendered. Filters run in registration order; each receives the previous
// filter's output.
type CartEventFilter func(CartEventParams) CartEventParams

// ApplyCartEventFilters runs the filter chain over the parameters.
func ApplyCartEventFilters(params CartEventParams, filters []CartEventFilter) CartEventParams {
	for _, filter := range filters {
		params = filter(params)
	}
	return params
}

// NewCartEventParams builds the click payload for a single-product page from
// the displayed product. Values are escaped and quoted for script embedding.
func NewCartEventParams(p *Product) CartEventParams {
	return CartEventParams{
		ID:   jsString(p.ItemID()),
		SKU:  jsString(p.SKU),
		Name: jsString(p.Title),
	}
}

// LoopCartEventParams builds the click payload for listing pages. The product
// is not known at render time, so the fields resolve from the clicked button's
// data-product_sku / data-product_id attributes and the nearest product title
// element at click time.
func LoopCartEventParams() CartEventParams {
	return CartEventParams{
		ID:   "($(this).data('product_sku')) ? ('' + $(this).data('product_sku')) : ('#' + $(this).data('product_id'))",
		SKU:  "($(this).data('product_sku')) ? ('' + $(this).data('product_sku')) : ''",
		Name: "$(this).closest('.product').find('.woocommerce-loop-product__title').first().text()",
	}
}
