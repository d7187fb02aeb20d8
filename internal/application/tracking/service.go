package tracking

import (
	"context"
	"errors"
	"sync"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"go.uber.org/zap"
)

// ErrInvalidTrackingFlag indicates an update with a flag value outside yes/no.
var ErrInvalidTrackingFlag = errors.New("tracking: tracking_enabled must be \"yes\" or \"no\"")

// Service composes the tracking integration: configuration load, head script
// rendering, checkout payload assembly with the set-once tracked flag, and the
// add-to-cart click binders.
//
// Every render-path failure degrades to no-emission; the host page render is
// never aborted by this service.
type Service struct {
	settings tracking.SettingsStore
	identity tracking.IdentityProvider
	orders   tracking.OrderRepository
	products tracking.ProductRepository
	flags    tracking.TrackedFlagStore
	log      *zap.Logger

	mu      sync.RWMutex
	filters []tracking.CartEventFilter
}

// NewService creates a new tracking Service.
func NewService(
	settings tracking.SettingsStore,
	identity tracking.IdentityProvider,
	orders tracking.OrderRepository,
	products tracking.ProductRepository,
	flags tracking.TrackedFlagStore,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		settings: settings,
		identity: identity,
		orders:   orders,
		products: products,
		flags:    flags,
		log:      log,
	}
}

// RegisterCartEventFilter appends a filter to the cart event filter chain.
// Filters run in registration order on every cart binder render.
func (s *Service) RegisterCartEventFilter(filter tracking.CartEventFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)
}

// cartEventFilters snapshots the filter chain.
func (s *Service) cartEventFilters() []tracking.CartEventFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// LoadConfig reads the integration configuration from the settings store.
// Missing options default to disabled/empty; a store read error degrades to
// the disabled configuration.
func (s *Service) LoadConfig(ctx context.Context) tracking.IntegrationConfig {
	appID, err := s.option(ctx, tracking.OptionAppID, tracking.LegacyOptionAppID)
	if err != nil {
		s.log.Warn("settings read failed, tracking disabled", zap.Error(err))
		return tracking.Disabled()
	}

	flag, err := s.option(ctx, tracking.OptionTrackingEnabled, tracking.LegacyOptionTrackingEnabled)
	if err != nil {
		s.log.Warn("settings read failed, tracking disabled", zap.Error(err))
		return tracking.Disabled()
	}

	return tracking.NewIntegrationConfig(appID, flag)
}

// option reads a named option, falling back to its legacy name when unset.
func (s *Service) option(ctx context.Context, name, legacyName string) (string, error) {
	value, err := s.settings.Get(ctx, name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, tracking.ErrOptionNotFound) {
		return "", err
	}

	value, err = s.settings.Get(ctx, legacyName)
	if errors.Is(err, tracking.ErrOptionNotFound) {
		return "", nil
	}
	return value, err
}

// ---------------------------------------------------------------------------
// Page tracking
// ---------------------------------------------------------------------------

// RenderHeadScript produces the inline script block for the page head, or ""
// when nothing should be emitted (administrator, tracking disabled, no app id).
func (s *Service) RenderHeadScript(ctx context.Context, visitor tracking.Visitor, page tracking.PageContext) string {
	cfg := s.LoadConfig(ctx)
	if visitor.Admin || !cfg.TrackingEnabled {
		return ""
	}

	script := tracking.HeadScript{AppID: cfg.AppID}

	if visitor.LoggedIn && visitor.UserID != "" {
		profile, err := s.identity.LookupUser(ctx, visitor.UserID)
		if err != nil {
			// Absent user on the logged-in path: skip the identify call.
			s.log.Warn("user lookup failed, skipping identify",
				zap.String("user_id", visitor.UserID), zap.Error(err))
		} else {
			script.Identify = &tracking.IdentifyCall{UserID: visitor.UserID, Traits: profile}
		}
	}

	if orderID, ok := page.ConfirmedOrderID(); ok {
		tracked, err := s.orderTracked(ctx, orderID)
		if err != nil {
			s.log.Warn("tracked flag lookup failed, skipping checkout emission",
				zap.String("order_id", orderID), zap.Error(err))
		} else if !tracked {
			script.Ecommerce = s.BuildCheckoutPayload(ctx, orderID)
		}
	}

	return script.Render()
}

// orderTracked reports whether the checkout event was already emitted for the
// order, consulting the flag store before the durable order meta.
func (s *Service) orderTracked(ctx context.Context, orderID string) (bool, error) {
	if tracked, err := s.flags.IsTracked(ctx, orderID); err == nil && tracked {
		return true, nil
	}

	_, err := s.orders.GetMeta(ctx, orderID, tracking.OrderMetaTracked)
	if errors.Is(err, tracking.ErrOrderMetaNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// Durable flag exists but the store missed it; repopulate.
	if _, err := s.flags.MarkTracked(ctx, orderID); err != nil {
		s.log.Warn("tracked flag cache update failed", zap.String("order_id", orderID), zap.Error(err))
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Checkout payload
// ---------------------------------------------------------------------------

// BuildCheckoutPayload assembles the addItems and checkout calls for the order
// and marks the order's tracked flag. The flag is set-once: the first call
// emits the payload, every later call returns "".
//
// A failed order lookup skips emission and returns "".
func (s *Service) BuildCheckoutPayload(ctx context.Context, orderID string) string {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		s.log.Warn("order lookup failed, skipping checkout emission",
			zap.String("order_id", orderID), zap.Error(err))
		return ""
	}

	items := make([]tracking.CheckoutItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, tracking.CheckoutItem{
			OrderID:   order.Number,
			Name:      line.Name,
			ID:        line.ItemID(),
			SKU:       line.SKU,
			Variation: line.VariationLabel,
			Category:  tracking.FormatCategoryPath(line.CategoryPath),
			Price:     line.LineTotal.String(),
			Quantity:  line.Quantity.String(),
			Currency:  order.Currency,
		})
	}

	lines := make([]string, 0, 2)
	if len(items) > 0 {
		addItems, err := tracking.RenderAddItems(items)
		if err != nil {
			s.log.Warn("checkout item encoding failed, skipping checkout emission",
				zap.String("order_id", orderID), zap.Error(err))
			return ""
		}
		lines = append(lines, addItems)
	}

	checkout := tracking.CheckoutEvent{
		OrderID:  order.Number,
		Total:    order.Total.String(),
		Shipping: order.ShippingTotal.String(),
		Currency: order.Currency,
		Items:    order.TotalQuantity().String(),
	}
	lines = append(lines, checkout.Render())

	newly, err := s.orders.SetMetaOnce(ctx, orderID, tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue)
	if err != nil {
		s.log.Warn("tracked flag write failed, skipping checkout emission",
			zap.String("order_id", orderID), zap.Error(err))
		return ""
	}
	if !newly {
		// Another render already emitted the checkout event for this order.
		return ""
	}

	if _, err := s.flags.MarkTracked(ctx, orderID); err != nil {
		s.log.Warn("tracked flag cache update failed", zap.String("order_id", orderID), zap.Error(err))
	}

	return joinLines(lines)
}

// joinLines joins rendered call lines with newlines.
func joinLines(lines []string) string {
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

// ---------------------------------------------------------------------------
// Cart click binders
// ---------------------------------------------------------------------------

// SingleProductCartScript produces the click-handler script for the displayed
// product's add-to-cart button, or "" when tracking is disabled, the page is
// not a single-product page, or the product cannot be loaded.
func (s *Service) SingleProductCartScript(ctx context.Context, visitor tracking.Visitor, page tracking.PageContext) string {
	cfg := s.LoadConfig(ctx)
	if visitor.Admin || !cfg.TrackingEnabled {
		return ""
	}
	if !page.SingleProduct || page.ProductID == "" {
		return ""
	}

	product, err := s.products.FindByID(ctx, page.ProductID)
	if err != nil {
		s.log.Warn("product lookup failed, skipping cart binder",
			zap.String("product_id", page.ProductID), zap.Error(err))
		return ""
	}

	params := tracking.ApplyCartEventFilters(tracking.NewCartEventParams(product), s.cartEventFilters())
	return tracking.RenderClickHandler(tracking.SingleAddToCartSelector, params)
}

// LoopCartScript produces the click-handler script for listing-page
// add-to-cart buttons, or "" when tracking is disabled. The payload resolves
// from the clicked button's data attributes in the browser.
func (s *Service) LoopCartScript(ctx context.Context, visitor tracking.Visitor) string {
	cfg := s.LoadConfig(ctx)
	if visitor.Admin || !cfg.TrackingEnabled {
		return ""
	}

	params := tracking.ApplyCartEventFilters(tracking.LoopCartEventParams(), s.cartEventFilters())
	return tracking.RenderClickHandler(tracking.LoopAddToCartSelector, params)
}

// ---------------------------------------------------------------------------
// Admin settings
// ---------------------------------------------------------------------------

// StoreSettings holds the raw stored integration options as shown on the
// admin settings form.
type StoreSettings struct {
	AppID           string
	TrackingEnabled string
}

// GetStoreSettings returns the stored options, with legacy fallback.
func (s *Service) GetStoreSettings(ctx context.Context) (StoreSettings, error) {
	appID, err := s.option(ctx, tracking.OptionAppID, tracking.LegacyOptionAppID)
	if err != nil {
		return StoreSettings{}, err
	}
	flag, err := s.option(ctx, tracking.OptionTrackingEnabled, tracking.LegacyOptionTrackingEnabled)
	if err != nil {
		return StoreSettings{}, err
	}
	if flag == "" {
		flag = "no"
	}
	return StoreSettings{AppID: appID, TrackingEnabled: flag}, nil
}

// UpdateStoreSettings stores the options under the current (non-legacy) names.
func (s *Service) UpdateStoreSettings(ctx context.Context, settings StoreSettings) error {
	if settings.TrackingEnabled != "yes" && settings.TrackingEnabled != "no" {
		return ErrInvalidTrackingFlag
	}
	if err := s.settings.Set(ctx, tracking.OptionAppID, settings.AppID); err != nil {
		return err
	}
	return s.settings.Set(ctx, tracking.OptionTrackingEnabled, settings.TrackingEnabled)
}
