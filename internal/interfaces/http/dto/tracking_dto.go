package dto

// TrackingSettingsResponse represents the stored integration options
type TrackingSettingsResponse struct {
	AppID           string `json:"app_id"`
	TrackingEnabled string `json:"tracking_enabled"`
}

// UpdateTrackingSettingsRequest represents a request to update the integration options
type UpdateTrackingSettingsRequest struct {
	AppID           string `json:"app_id"`
	TrackingEnabled string `json:"tracking_enabled" binding:"required,oneof=yes no"`
}
