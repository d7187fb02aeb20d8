package tracking

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound indicates the identity provider has no record for the user.
	ErrUserNotFound = errors.New("tracking: user not found")
)

// Visitor is the per-request view of the person loading the page.
// It is resolved from the storefront session and is read-only.
type Visitor struct {
	// LoggedIn reports whether the visitor has an authenticated session.
	LoggedIn bool
	// UserID is the visitor's user ID; empty for anonymous visitors.
	UserID string
	// Admin reports whether the visitor can manage the store. Tracking code is
	// never emitted for administrators.
	Admin bool
}

// Anonymous returns the visitor for an unauthenticated request.
func Anonymous() Visitor {
	return Visitor{}
}

// UserProfile holds the identify-call traits looked up for a logged-in visitor.
type UserProfile struct {
	Username string
	Email    string
}

// IdentityProvider is the port to the host's user directory.
type IdentityProvider interface {
	// LookupUser returns the profile for the given user ID.
	// Returns ErrUserNotFound when the user does not exist.
	LookupUser(ctx context.Context, userID string) (UserProfile, error)
}
