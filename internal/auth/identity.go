package auth

// Identity represents a normalized external authentication identity
// returned by a login strategy. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "steam", "google"
	ProviderUserID string // provider-scoped unique user identifier (steamid, sub)
	DisplayName    string
	AvatarURL      string
	ProfileURL     string
	Email          string // empty for providers that do not release one (steam)
	EmailVerified  bool
}
