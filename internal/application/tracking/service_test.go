package tracking

import (
	"context"
	"testing"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Port mocks
// ---------------------------------------------------------------------------

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsStore) Set(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) LookupUser(ctx context.Context, userID string) (tracking.UserProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(tracking.UserProfile), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID string) (*tracking.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Order), args.Error(1)
}

func (m *MockOrderRepository) GetMeta(ctx context.Context, orderID, key string) (string, error) {
	args := m.Called(ctx, orderID, key)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) SetMetaOnce(ctx context.Context, orderID, key, value string) (bool, error) {
	args := m.Called(ctx, orderID, key, value)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, productID string) (*tracking.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Product), args.Error(1)
}

type MockTrackedFlagStore struct {
	mock.Mock
}

func (m *MockTrackedFlagStore) IsTracked(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackedFlagStore) MarkTracked(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackedFlagStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type serviceFixture struct {
	settings *MockSettingsStore
	identity *MockIdentityProvider
	orders   *MockOrderRepository
	products *MockProductRepository
	flags    *MockTrackedFlagStore
	service  *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		settings: new(MockSettingsStore),
		identity: new(MockIdentityProvider),
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		flags:    new(MockTrackedFlagStore),
	}
	f.service = NewService(f.settings, f.identity, f.orders, f.products, f.flags, zap.NewNop())
	return f
}

// stubEnabled configures the settings store with tracking switched on.
func (f *serviceFixture) stubEnabled(appID string) {
	f.settings.On("Get", mock.Anything, tracking.OptionAppID).Return(appID, nil)
	f.settings.On("Get", mock.Anything, tracking.OptionTrackingEnabled).Return("yes", nil)
}

// stubDisabled configures the settings store with tracking switched off.
func (f *serviceFixture) stubDisabled() {
	f.settings.On("Get", mock.Anything, tracking.OptionAppID).Return("abc123", nil)
	f.settings.On("Get", mock.Anything, tracking.OptionTrackingEnabled).Return("no", nil)
}

func twoItemOrder() *tracking.Order {
	return &tracking.Order{
		ID:     "100",
		Number: "100",
		Items: []tracking.OrderLineItem{
			{
				Name:         "Red Mug",
				ProductID:    "11",
				SKU:          "MUG-R",
				CategoryPath: []string{"Kitchen", "Mugs"},
				LineTotal:    decimal.RequireFromString("10.00"),
				Quantity:     decimal.RequireFromString("1"),
			},
			{
				Name:           "Blue Shirt",
				ProductID:      "12",
				VariationLabel: "size: M",
				CategoryPath:   []string{"Apparel"},
				LineTotal:      decimal.RequireFromString("12.00"),
				Quantity:       decimal.RequireFromString("2"),
			},
		},
		Total:         decimal.RequireFromString("25.00"),
		ShippingTotal: decimal.RequireFromString("3.00"),
		Currency:      "USD",
	}
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestService_LoadConfig(t *testing.T) {
	t.Run("enabled when flag yes and app id set", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		cfg := f.service.LoadConfig(context.Background())

		assert.True(t, cfg.TrackingEnabled)
		assert.Equal(t, "abc123", cfg.AppID)
	})

	t.Run("falls back to legacy option names", func(t *testing.T) {
		f := newServiceFixture(t)
		f.settings.On("Get", mock.Anything, tracking.OptionAppID).
			Return("", tracking.ErrOptionNotFound)
		f.settings.On("Get", mock.Anything, tracking.LegacyOptionAppID).
			Return("legacy-app", nil)
		f.settings.On("Get", mock.Anything, tracking.OptionTrackingEnabled).
			Return("", tracking.ErrOptionNotFound)
		f.settings.On("Get", mock.Anything, tracking.LegacyOptionTrackingEnabled).
			Return("yes", nil)

		cfg := f.service.LoadConfig(context.Background())

		assert.True(t, cfg.TrackingEnabled)
		assert.Equal(t, "legacy-app", cfg.AppID)
	})

	t.Run("missing options mean disabled", func(t *testing.T) {
		f := newServiceFixture(t)
		f.settings.On("Get", mock.Anything, mock.Anything).
			Return("", tracking.ErrOptionNotFound)

		cfg := f.service.LoadConfig(context.Background())

		assert.False(t, cfg.TrackingEnabled)
		assert.Empty(t, cfg.AppID)
	})

	t.Run("store read error degrades to disabled", func(t *testing.T) {
		f := newServiceFixture(t)
		f.settings.On("Get", mock.Anything, mock.Anything).
			Return("", assert.AnError)

		cfg := f.service.LoadConfig(context.Background())

		assert.False(t, cfg.TrackingEnabled)
	})
}

// ---------------------------------------------------------------------------
// RenderHeadScript
// ---------------------------------------------------------------------------

func TestService_RenderHeadScript(t *testing.T) {
	ctx := context.Background()

	t.Run("administrator gets nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		out := f.service.RenderHeadScript(ctx, tracking.Visitor{LoggedIn: true, UserID: "1", Admin: true}, tracking.PageContext{})

		assert.Empty(t, out)
	})

	t.Run("disabled tracking gets nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubDisabled()

		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), tracking.PageContext{})

		assert.Empty(t, out)
	})

	t.Run("empty app id gets nothing even when flag is yes", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("")

		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), tracking.PageContext{})

		assert.Empty(t, out)
	})

	t.Run("anonymous visitor on a plain page gets page tracking only", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), tracking.PageContext{})

		assert.Contains(t, out, "crowdstream.load('abc123');")
		assert.Contains(t, out, "crowdstream.events.page();")
		assert.NotContains(t, out, "identify")
		assert.NotContains(t, out, "checkout")
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("logged-in visitor gets an identify call", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.identity.On("LookupUser", mock.Anything, "42").
			Return(tracking.UserProfile{Username: "alice", Email: "a@x.com"}, nil)

		out := f.service.RenderHeadScript(ctx, tracking.Visitor{LoggedIn: true, UserID: "42"}, tracking.PageContext{})

		assert.Contains(t, out, `crowdstream.events.identify("42", {username: "alice", email: "a@x.com"});`)
	})

	t.Run("user lookup failure skips identify but keeps the script", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.identity.On("LookupUser", mock.Anything, "42").
			Return(tracking.UserProfile{}, tracking.ErrUserNotFound)

		out := f.service.RenderHeadScript(ctx, tracking.Visitor{LoggedIn: true, UserID: "42"}, tracking.PageContext{})

		assert.Contains(t, out, "crowdstream.events.page();")
		assert.NotContains(t, out, "identify")
	})

	t.Run("order confirmation emits checkout once", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.flags.On("IsTracked", mock.Anything, "100").Return(false, nil)
		f.orders.On("GetMeta", mock.Anything, "100", tracking.OrderMetaTracked).
			Return("", tracking.ErrOrderMetaNotFound)
		f.orders.On("FindByID", mock.Anything, "100").Return(twoItemOrder(), nil)
		f.orders.On("SetMetaOnce", mock.Anything, "100", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(true, nil)
		f.flags.On("MarkTracked", mock.Anything, "100").Return(true, nil)

		page := tracking.PageContext{OrderReceived: true, OrderID: "100"}
		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), page)

		assert.Contains(t, out, "crowdstream.events.addItems(")
		assert.Contains(t, out, `"name":"Red Mug"`)
		assert.Contains(t, out, `"category":"Kitchen/Mugs"`)
		assert.Contains(t, out, "crowdstream.events.checkout({")
		assert.Contains(t, out, `total: "25.00"`)
		assert.Contains(t, out, `shipping: "3.00"`)
		assert.Contains(t, out, `currency: "USD"`)
		assert.Contains(t, out, `items: "3"`)
		f.orders.AssertExpectations(t)
	})

	t.Run("already tracked order emits no checkout", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.flags.On("IsTracked", mock.Anything, "100").Return(true, nil)

		page := tracking.PageContext{OrderReceived: true, OrderID: "100"}
		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), page)

		assert.Contains(t, out, "crowdstream.events.page();")
		assert.NotContains(t, out, "checkout")
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("durable flag backfills the flag store", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.flags.On("IsTracked", mock.Anything, "100").Return(false, nil)
		f.orders.On("GetMeta", mock.Anything, "100", tracking.OrderMetaTracked).
			Return(tracking.OrderMetaTrackedValue, nil)
		f.flags.On("MarkTracked", mock.Anything, "100").Return(true, nil)

		page := tracking.PageContext{OrderReceived: true, OrderID: "100"}
		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), page)

		assert.NotContains(t, out, "checkout")
		f.flags.AssertCalled(t, "MarkTracked", mock.Anything, "100")
	})

	t.Run("meta read failure skips checkout but keeps the script", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.flags.On("IsTracked", mock.Anything, "100").Return(false, nil)
		f.orders.On("GetMeta", mock.Anything, "100", tracking.OrderMetaTracked).
			Return("", assert.AnError)

		page := tracking.PageContext{OrderReceived: true, OrderID: "100"}
		out := f.service.RenderHeadScript(ctx, tracking.Anonymous(), page)

		assert.Contains(t, out, "crowdstream.events.page();")
		assert.NotContains(t, out, "checkout")
	})
}

// ---------------------------------------------------------------------------
// BuildCheckoutPayload
// ---------------------------------------------------------------------------

func TestService_BuildCheckoutPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles items and checkout and marks the order", func(t *testing.T) {
		f := newServiceFixture(t)
		f.orders.On("FindByID", mock.Anything, "100").Return(twoItemOrder(), nil)
		f.orders.On("SetMetaOnce", mock.Anything, "100", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(true, nil)
		f.flags.On("MarkTracked", mock.Anything, "100").Return(true, nil)

		out := f.service.BuildCheckoutPayload(ctx, "100")

		require.NotEmpty(t, out)
		assert.Contains(t, out, `"order_id":"100"`)
		assert.Contains(t, out, `"id":"MUG-R"`)
		assert.Contains(t, out, `"id":"#12"`)
		assert.Contains(t, out, `"variation":"size: M"`)
		assert.Contains(t, out, `"price":"12.00"`)
		assert.Contains(t, out, `order_id: "100"`)
		f.orders.AssertExpectations(t)
		f.flags.AssertExpectations(t)
	})

	t.Run("second invocation emits nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.orders.On("FindByID", mock.Anything, "100").Return(twoItemOrder(), nil)
		f.orders.On("SetMetaOnce", mock.Anything, "100", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(true, nil).Once()
		f.orders.On("SetMetaOnce", mock.Anything, "100", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(false, nil)
		f.flags.On("MarkTracked", mock.Anything, "100").Return(true, nil)

		first := f.service.BuildCheckoutPayload(ctx, "100")
		second := f.service.BuildCheckoutPayload(ctx, "100")

		assert.NotEmpty(t, first)
		assert.Empty(t, second)
	})

	t.Run("missing order emits nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.orders.On("FindByID", mock.Anything, "404").
			Return(nil, tracking.ErrOrderNotFound)

		out := f.service.BuildCheckoutPayload(ctx, "404")

		assert.Empty(t, out)
		f.orders.AssertNotCalled(t, "SetMetaOnce", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("flag write failure emits nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.orders.On("FindByID", mock.Anything, "100").Return(twoItemOrder(), nil)
		f.orders.On("SetMetaOnce", mock.Anything, "100", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(false, assert.AnError)

		out := f.service.BuildCheckoutPayload(ctx, "100")

		assert.Empty(t, out)
	})

	t.Run("order without items still emits checkout", func(t *testing.T) {
		f := newServiceFixture(t)
		empty := &tracking.Order{
			ID: "101", Number: "101",
			Total:         decimal.RequireFromString("0.00"),
			ShippingTotal: decimal.RequireFromString("0.00"),
			Currency:      "USD",
		}
		f.orders.On("FindByID", mock.Anything, "101").Return(empty, nil)
		f.orders.On("SetMetaOnce", mock.Anything, "101", tracking.OrderMetaTracked, tracking.OrderMetaTrackedValue).
			Return(true, nil)
		f.flags.On("MarkTracked", mock.Anything, "101").Return(true, nil)

		out := f.service.BuildCheckoutPayload(ctx, "101")

		assert.NotContains(t, out, "addItems")
		assert.Contains(t, out, "crowdstream.events.checkout({")
		assert.Contains(t, out, `items: "0"`)
	})
}

// ---------------------------------------------------------------------------
// Cart click binders
// ---------------------------------------------------------------------------

func TestService_SingleProductCartScript(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the binder from the displayed product", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.products.On("FindByID", mock.Anything, "11").
			Return(&tracking.Product{ID: "11", SKU: "MUG-R", Title: "Red Mug"}, nil)

		page := tracking.PageContext{SingleProduct: true, ProductID: "11"}
		out := f.service.SingleProductCartScript(ctx, tracking.Anonymous(), page)

		assert.Contains(t, out, "$('.single_add_to_cart_button').click(")
		assert.Contains(t, out, `crowdstream.events.cart({id: "MUG-R", sku: "MUG-R", name: "Red Mug"});`)
	})

	t.Run("disabled tracking renders nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubDisabled()

		page := tracking.PageContext{SingleProduct: true, ProductID: "11"}
		out := f.service.SingleProductCartScript(ctx, tracking.Anonymous(), page)

		assert.Empty(t, out)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("non-product page renders nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		out := f.service.SingleProductCartScript(ctx, tracking.Anonymous(), tracking.PageContext{})

		assert.Empty(t, out)
	})

	t.Run("missing product renders nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.products.On("FindByID", mock.Anything, "11").
			Return(nil, tracking.ErrProductNotFound)

		page := tracking.PageContext{SingleProduct: true, ProductID: "11"}
		out := f.service.SingleProductCartScript(ctx, tracking.Anonymous(), page)

		assert.Empty(t, out)
	})

	t.Run("registered filters rewrite the payload", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")
		f.products.On("FindByID", mock.Anything, "11").
			Return(&tracking.Product{ID: "11", SKU: "MUG-R", Title: "Red Mug"}, nil)
		f.service.RegisterCartEventFilter(func(p tracking.CartEventParams) tracking.CartEventParams {
			p.Name = `"Overridden"`
			return p
		})

		page := tracking.PageContext{SingleProduct: true, ProductID: "11"}
		out := f.service.SingleProductCartScript(ctx, tracking.Anonymous(), page)

		assert.Contains(t, out, `name: "Overridden"`)
		assert.NotContains(t, out, "Red Mug")
	})
}

func TestService_LoopCartScript(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the data-attribute binder", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		out := f.service.LoopCartScript(ctx, tracking.Anonymous())

		assert.Contains(t, out, ".add_to_cart_button:not(.product_type_variable, .product_type_grouped)")
		assert.Contains(t, out, "$(this).data('product_sku')")
		assert.Contains(t, out, "$(this).data('product_id')")
	})

	t.Run("disabled tracking renders nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubDisabled()

		out := f.service.LoopCartScript(ctx, tracking.Anonymous())

		assert.Empty(t, out)
	})
}

// ---------------------------------------------------------------------------
// Admin settings
// ---------------------------------------------------------------------------

func TestService_StoreSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored options", func(t *testing.T) {
		f := newServiceFixture(t)
		f.stubEnabled("abc123")

		got, err := f.service.GetStoreSettings(ctx)

		require.NoError(t, err)
		assert.Equal(t, StoreSettings{AppID: "abc123", TrackingEnabled: "yes"}, got)
	})

	t.Run("unset flag reads as no", func(t *testing.T) {
		f := newServiceFixture(t)
		f.settings.On("Get", mock.Anything, mock.Anything).
			Return("", tracking.ErrOptionNotFound)

		got, err := f.service.GetStoreSettings(ctx)

		require.NoError(t, err)
		assert.Equal(t, "no", got.TrackingEnabled)
	})

	t.Run("update stores under the current names", func(t *testing.T) {
		f := newServiceFixture(t)
		f.settings.On("Set", mock.Anything, tracking.OptionAppID, "new-app").Return(nil)
		f.settings.On("Set", mock.Anything, tracking.OptionTrackingEnabled, "yes").Return(nil)

		err := f.service.UpdateStoreSettings(ctx, StoreSettings{AppID: "new-app", TrackingEnabled: "yes"})

		require.NoError(t, err)
		f.settings.AssertExpectations(t)
	})

	t.Run("rejects an invalid flag value", func(t *testing.T) {
		f := newServiceFixture(t)

		err := f.service.UpdateStoreSettings(ctx, StoreSettings{AppID: "x", TrackingEnabled: "maybe"})

		assert.ErrorIs(t, err, ErrInvalidTrackingFlag)
		f.settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}
