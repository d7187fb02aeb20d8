package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apptracking "github.com/alexph/woocommerce-crowdstream/internal/application/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/middleware"
)

// htmlContentType is the content type of the rendered script fragments.
const htmlContentType = "text/html; charset=utf-8"

// HooksHandler serves the storefront render hooks. Each endpoint returns an
// HTML script fragment for the host page to inline, or 204 when nothing
// should be emitted for this visitor and page.
type HooksHandler struct {
	BaseHandler
	tracking *apptracking.Service
}

// NewHooksHandler creates a new HooksHandler
func NewHooksHandler(tracking *apptracking.Service) *HooksHandler {
	return &HooksHandler{
		tracking: tracking,
	}
}

// HeadScript godoc
// @ID           getHooksHeadScript
// @Summary      Render the head tracking script
// @Description  Returns the inline bootstrap script for the page head, including
// @Description  the identify call for logged-in visitors and the checkout payload
// @Description  on an untracked order-confirmation page
// @Tags         hooks
// @Produce      html
// @Param        order_id query string false "Order shown on the confirmation page"
// @Success      200 {string} string "Script fragment"
// @Success      204 "Nothing to emit"
// @Router       /hooks/head [get]
func (h *HooksHandler) HeadScript(c *gin.Context) {
	visitor := middleware.GetVisitor(c)
	orderID := c.Query("order_id")
	page := tracking.PageContext{
		OrderReceived: orderID != "",
		OrderID:       orderID,
	}

	script := h.tracking.RenderHeadScript(c.Request.Context(), visitor, page)
	h.fragment(c, script)
}

// ProductCartScript godoc
// @ID           getHooksProductCartScript
// @Summary      Render the single-product add-to-cart binder
// @Description  Returns the click-handler script for the displayed product's
// @Description  add-to-cart button
// @Tags         hooks
// @Produce      html
// @Param        id path string true "Product ID"
// @Success      200 {string} string "Script fragment"
// @Success      204 "Nothing to emit"
// @Router       /hooks/products/{id}/add-to-cart [get]
func (h *HooksHandler) ProductCartScript(c *gin.Context) {
	visitor := middleware.GetVisitor(c)
	page := tracking.PageContext{
		SingleProduct: true,
		ProductID:     c.Param("id"),
	}

	script := h.tracking.SingleProductCartScript(c.Request.Context(), visitor, page)
	h.fragment(c, script)
}

// LoopCartScript godoc
// @ID           getHooksLoopCartScript
// @Summary      Render the listing-page add-to-cart binder
// @Description  Returns the click-handler script for listing-page add-to-cart
// @Description  buttons; the payload resolves from data attributes in the browser
// @Tags         hooks
// @Produce      html
// @Success      200 {string} string "Script fragment"
// @Success      204 "Nothing to emit"
// @Router       /hooks/add-to-cart [get]
func (h *HooksHandler) LoopCartScript(c *gin.Context) {
	visitor := middleware.GetVisitor(c)

	script := h.tracking.LoopCartScript(c.Request.Context(), visitor)
	h.fragment(c, script)
}

// fragment writes a script fragment response, or 204 when it is empty.
func (h *HooksHandler) fragment(c *gin.Context, script string) {
	if script == "" {
		h.NoContent(c)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(script))
}

// RegisterRoutes registers the hook routes
func (h *HooksHandler) RegisterRoutes(rg *gin.RouterGroup) {
	hooks := rg.Group("/hooks")
	{
		hooks.GET("/head", h.HeadScript)
		hooks.GET("/products/:id/add-to-cart", h.ProductCartScript)
		hooks.GET("/add-to-cart", h.LoopCartScript)
	}
}
