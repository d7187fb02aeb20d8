package tracking

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CDNScriptURL is the fixed, protocol-relative location of the Crowdstream
// browser library.
const CDNScriptURL = "s3.eu-central-1.amazonaws.com/crowdstream/crowdstream.js"

// Click selectors for the add-to-cart binders. The loop selector excludes
// variable and grouped product buttons, whose clicks open an options page
// instead of adding to the cart.
const (
	SingleAddToCartSelector = ".single_add_to_cart_button"
	LoopAddToCartSelector   = ".add_to_cart_button:not(.product_type_variable, .product_type_grouped)"
)

// headScriptTemplate is the bootstrap loader emitted into the page head. It
// queues the tracking calls in crowdstream.ready so they run once the library
// has loaded from the CDN.
const headScriptTemplate = `<!-- WooCommerce Crowdstream Integration -->
<script>
    (function() {
        var crowdstream = window.crowdstream = window.crowdstream || {};

        if (typeof crowdstream.load == 'function') return;

        crowdstream.load = function(key) {
            var script = document.createElement('script');
            script.type = 'text/javascript';
            script.async = true;
            script.src = ('https:' === document.location.protocol
                    ? 'https://' : 'http://')
                    + '%s';
            var first = document.getElementsByTagName('script')[0];
            first.parentNode.insertBefore(script, first);

            crowdstream.ready = function() {
                crowdstream.appId(key);
                crowdstream.events.page();
                %s

                %s
            }
        };

        crowdstream.load('%s');
    })();
</script>
<!-- /WooCommerce Crowdstream Integration -->
`

// HeadScript assembles the inline script block for the page head.
type HeadScript struct {
	// AppID is the configured Crowdstream application ID.
	AppID string
	// Identify is the identify call for a logged-in visitor; nil otherwise.
	Identify *IdentifyCall
	// Ecommerce is the pre-rendered checkout payload; empty when this render
	// is not an untracked order confirmation.
	Ecommerce string
}

// Render produces the head script block.
func (h HeadScript) Render() string {
	identity := ""
	if h.Identify != nil {
		identity = h.Identify.Render()
	}
	return fmt.Sprintf(headScriptTemplate, CDNScriptURL, identity, h.Ecommerce, EscapeJS(h.AppID))
}

// Render produces the identify call line.
func (c IdentifyCall) Render() string {
	return fmt.Sprintf(
		"crowdstream.events.identify(%s, {username: %s, email: %s});",
		jsString(c.UserID), jsString(c.Traits.Username), jsString(c.Traits.Email),
	)
}

// RenderAddItems serializes the item records into the addItems call. The JSON
// encoder escapes angle brackets and ampersands, so the array is safe to embed
// in a script context.
func RenderAddItems(items []CheckoutItem) (string, error) {
	encoded, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("tracking: encode checkout items: %w", err)
	}
	return "crowdstream.events.addItems(" + string(encoded) + ");", nil
}

// Render produces the checkout call.
func (e CheckoutEvent) Render() string {
	var b strings.Builder
	b.WriteString("crowdstream.events.checkout({\n")
	b.WriteString("\torder_id: " + jsString(e.OrderID) + ",\n")
	b.WriteString("\ttotal: " + jsString(e.Total) + ",\n")
	b.WriteString("\tshipping: " + jsString(e.Shipping) + ",\n")
	b.WriteString("\tcurrency: " + jsString(e.Currency) + ",\n")
	b.WriteString("\titems: " + jsString(e.Items) + "\n")
	b.WriteString("});")
	return b.String()
}

// RenderClickHandler produces the deferred script that binds a cart event to
// clicks on elements matching the selector. The params fields are JavaScript
// expressions and are emitted verbatim.
func RenderClickHandler(selector string, params CartEventParams) string {
	return fmt.Sprintf(`<script type="text/javascript">
jQuery(function($) {
    $('%s').click(function() {
        crowdstream.events.cart({id: %s, sku: %s, name: %s});
    });
});
</script>
`, selector, params.ID, params.SKU, params.Name)
}
