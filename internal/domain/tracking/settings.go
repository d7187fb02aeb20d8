package tracking

import (
	"context"
	"errors"
)

// Option names in the settings store. The legacy names are the pre-integration
// global options and are read as a fallback for stores configured before the
// integration settings moved under their own keys.
const (
	OptionAppID           = "crowdstream_app_id"
	OptionTrackingEnabled = "crowdstream_tracking_enabled"

	LegacyOptionAppID           = "woocommerce_crowdstream_app_id"
	LegacyOptionTrackingEnabled = "woocommerce_crowdstream_tracking_enabled"
)

// TrackingEnabledYes is the stored value meaning tracking is switched on.
// Any other stored value (including absence) means off.
const TrackingEnabledYes = "yes"

var (
	// ErrOptionNotFound indicates the named option has no stored value.
	ErrOptionNotFound = errors.New("tracking: option not found")
)

// SettingsStore is the port to the host's named-option persistence.
type SettingsStore interface {
	// Get returns the stored value for the named option.
	// Returns ErrOptionNotFound when no value is stored.
	Get(ctx context.Context, name string) (string, error)

	// Set stores the value for the named option, creating or replacing it.
	Set(ctx context.Context, name, value string) error
}

// IntegrationConfig holds the per-request integration configuration.
// It is immutable after construction.
type IntegrationConfig struct {
	// AppID is the Crowdstream application ID; empty when unconfigured.
	AppID string
	// TrackingEnabled reports whether tracking code should be emitted.
	TrackingEnabled bool
}

// NewIntegrationConfig builds the configuration from stored option values.
// Tracking is enabled only when the stored flag is "yes" AND an app ID is
// configured; an empty app ID forces tracking off regardless of the flag.
func NewIntegrationConfig(appID, storedFlag string) IntegrationConfig {
	return IntegrationConfig{
		AppID:           appID,
		TrackingEnabled: storedFlag == TrackingEnabledYes && appID != "",
	}
}

// Disabled returns a configuration with tracking switched off.
func Disabled() IntegrationConfig {
	return IntegrationConfig{}
}
