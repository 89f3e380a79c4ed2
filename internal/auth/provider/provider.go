package provider

import (
	"net/http"

	"steam-auth-service/internal/auth"
)

// Strategy defines the contract every external login strategy must
// implement. Implementations return identity facts only and must not
// perform user creation, linking, or session management.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "steam", "google").
	Name() string

	// Begin returns the provider URL the user agent is redirected to.
	// Strategies that need per-login state may set cookies on w.
	Begin(w http.ResponseWriter, r *http.Request) (string, error)

	// Complete handles the provider callback. ok is false when the
	// callback is valid but does not resolve to a user.
	Complete(w http.ResponseWriter, r *http.Request) (identity *auth.Identity, ok bool, err error)
}
