package tracking

// PageContext describes the page being rendered. It replaces the ambient
// globals the host exposes with an explicit parameter object passed into each
// renderer call.
type PageContext struct {
	// SingleProduct reports whether this is a single-product page.
	SingleProduct bool
	// OrderReceived reports whether this is the order-confirmation page.
	OrderReceived bool
	// OrderID is the order shown on the confirmation page; empty elsewhere.
	OrderID string
	// ProductID is the product shown on a single-product page; empty elsewhere.
	ProductID string
}

// ConfirmedOrderID returns the order ID when this render is a confirmation
// page for a known order, and ok=false otherwise.
func (p PageContext) ConfirmedOrderID() (string, bool) {
	if !p.OrderReceived || p.OrderID == "" {
		return "", false
	}
	return p.OrderID, true
}
