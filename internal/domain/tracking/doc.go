// Package tracking contains the domain model for the Crowdstream storefront
// analytics integration: integration settings, the per-request visitor, order and
// product read models, the typed analytics event payloads, and the script snippet
// rendering that forms the wire contract toward the browser.
//
// The package defines port interfaces (SettingsStore, OrderRepository,
// ProductRepository, IdentityProvider, TrackedFlagStore) following the Ports &
// Adapters pattern; concrete implementations live in the infrastructure layer.
package tracking
