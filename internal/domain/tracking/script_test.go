package tracking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadScript_Render_Bootstrap(t *testing.T) {
	out := HeadScript{AppID: "app-123"}.Render()

	assert.Contains(t, out, "<!-- WooCommerce Crowdstream Integration -->")
	assert.Contains(t, out, "<!-- /WooCommerce Crowdstream Integration -->")
	assert.Contains(t, out, CDNScriptURL)
	assert.Contains(t, out, "crowdstream.load('app-123');")
	assert.Contains(t, out, "crowdstream.events.page();")
	assert.NotContains(t, out, "identify(")
	assert.NotContains(t, out, "checkout(")
}

func TestHeadScript_Render_WithIdentify(t *testing.T) {
	out := HeadScript{
		AppID: "app-123",
		Identify: &IdentifyCall{
			UserID: "42",
			Traits: UserProfile{Username: "alice", Email: "a@x.com"},
		},
	}.Render()

	assert.Contains(t, out, `crowdstream.events.identify("42", {username: "alice", email: "a@x.com"});`)
}

func TestHeadScript_Render_WithEcommerce(t *testing.T) {
	checkout := CheckoutEvent{OrderID: "1001", Total: "25.00", Shipping: "3.00", Currency: "USD", Items: "3"}
	out := HeadScript{AppID: "app-123", Ecommerce: checkout.Render()}.Render()

	assert.Contains(t, out, "crowdstream.events.checkout({")
	assert.Contains(t, out, `order_id: "1001"`)
}

func TestHeadScript_Render_EscapesAppID(t *testing.T) {
	out := HeadScript{AppID: `app'); alert('x`}.Render()

	assert.NotContains(t, out, `load('app'); alert('x');`)
	assert.Contains(t, out, `app\'); alert(\'x`)
}

func TestIdentifyCall_Render_EscapesTraits(t *testing.T) {
	call := IdentifyCall{
		UserID: "42",
		Traits: UserProfile{Username: `ali"ce`, Email: "a@x.com"},
	}

	assert.Equal(t,
		`crowdstream.events.identify("42", {username: "ali\"ce", email: "a@x.com"});`,
		call.Render(),
	)
}

func TestRenderAddItems(t *testing.T) {
	items := []CheckoutItem{
		{
			OrderID:  "1001",
			Name:     "Widget",
			ID:       "SKU-1",
			SKU:      "SKU-1",
			Category: "Tools/Hand Tools",
			Price:    "20.00",
			Quantity: "2",
			Currency: "USD",
		},
	}

	out, err := RenderAddItems(items)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "crowdstream.events.addItems(["))
	assert.True(t, strings.HasSuffix(out, "]);"))
	assert.Contains(t, out, `"order_id":"1001"`)
	assert.Contains(t, out, `"name":"Widget"`)
	assert.Contains(t, out, `"category":"Tools/Hand Tools"`)
}

func TestRenderAddItems_EscapesAngleBrackets(t *testing.T) {
	items := []CheckoutItem{{Name: "</script><script>alert(1)</script>"}}

	out, err := RenderAddItems(items)
	require.NoError(t, err)

	// encoding/json escapes < and > so the array cannot close the script tag.
	assert.NotContains(t, out, "</script>")
	assert.Contains(t, out, `</script>`)
}

func TestCheckoutEvent_Render(t *testing.T) {
	out := CheckoutEvent{
		OrderID:  "1001",
		Total:    "25.00",
		Shipping: "3.00",
		Currency: "USD",
		Items:    "3",
	}.Render()

	assert.Contains(t, out, `order_id: "1001"`)
	assert.Contains(t, out, `total: "25.00"`)
	assert.Contains(t, out, `shipping: "3.00"`)
	assert.Contains(t, out, `currency: "USD"`)
	assert.Contains(t, out, `items: "3"`)
	assert.NotContains(t, out, "tax")
	assert.NotContains(t, out, "affiliation")
}

func TestRenderClickHandler(t *testing.T) {
	params := CartEventParams{ID: `"SKU-1"`, SKU: `"SKU-1"`, Name: `"Widget"`}
	out := RenderClickHandler(SingleAddToCartSelector, params)

	assert.Contains(t, out, "$('.single_add_to_cart_button').click(function() {")
	assert.Contains(t, out, `crowdstream.events.cart({id: "SKU-1", sku: "SKU-1", name: "Widget"});`)
}

func TestLoopAddToCartSelector_ExcludesVariantButtons(t *testing.T) {
	// Variable and grouped product buttons navigate to an options page; the
	// binder must never fire for them.
	assert.Contains(t, LoopAddToCartSelector, ":not(.product_type_variable, .product_type_grouped)")
	out := RenderClickHandler(LoopAddToCartSelector, LoopCartEventParams())
	assert.Contains(t, out, ".add_to_cart_button:not(.product_type_variable, .product_type_grouped)")
	assert.Contains(t, out, "data('product_sku')")
	assert.Contains(t, out, "data('product_id')")
}
