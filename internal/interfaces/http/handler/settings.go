package handler

import (
	"github.com/gin-gonic/gin"

	apptracking "github.com/alexph/woocommerce-crowdstream/internal/application/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/dto"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/middleware"
)

// SettingsHandler handles the admin settings endpoints
type SettingsHandler struct {
	BaseHandler
	tracking *apptracking.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(tracking *apptracking.Service) *SettingsHandler {
	return &SettingsHandler{
		tracking: tracking,
	}
}

// GetSettings godoc
// @ID           getTrackingSettings
// @Summary      Get the integration settings
// @Description  Returns the stored application ID and tracking flag, reading
// @Description  legacy option names when the current ones are unset
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.TrackingSettingsResponse}
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /admin/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.tracking.GetStoreSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.TrackingSettingsResponse{
		AppID:           settings.AppID,
		TrackingEnabled: settings.TrackingEnabled,
	})
}

// UpdateSettings godoc
// @ID           updateTrackingSettings
// @Summary      Update the integration settings
// @Description  Stores the application ID and tracking flag under the current
// @Description  option names
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateTrackingSettingsRequest true "New settings"
// @Success      200 {object} dto.Response{data=dto.TrackingSettingsResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateTrackingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "tracking_enabled", Message: "must be \"yes\" or \"no\""},
		})
		return
	}

	settings := apptracking.StoreSettings{
		AppID:           req.AppID,
		TrackingEnabled: req.TrackingEnabled,
	}
	if err := h.tracking.UpdateStoreSettings(c.Request.Context(), settings); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.TrackingSettingsResponse{
		AppID:           settings.AppID,
		TrackingEnabled: settings.TrackingEnabled,
	})
}

// RegisterRoutes registers the admin settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)
	}
}
