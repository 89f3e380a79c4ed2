// Package steam implements login through Steam Community's OpenID provider.
// The verified identity is enriched with the public profile returned by the
// Steam Web API player summaries endpoint.
package steam

import (
	"fmt"
	"net/http"
	"regexp"

	"steam-auth-service/internal/auth/provider/openid"

	oid "github.com/yohcop/openid-go"
)

const (
	// Name is the strategy identifier used by the registry.
	Name = "steam"

	ProviderURL = "https://steamcommunity.com/openid"
	OPEndpoint  = "https://steamcommunity.com/openid/login"
)

var identityPattern = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d+)$`)

// Options configure the strategy. They are read-only after construction.
type Options struct {
	ReturnURL string
	Realm     string
	APIKey    string

	// APIBaseURL defaults to DefaultAPIBaseURL.
	APIBaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// NonceStore is handed to the OpenID engine; nil keeps nonces in memory.
	NonceStore oid.NonceStore
}

// ValidateFunc maps a fetched profile to a user. Returning ok == false
// rejects the login without an error.
type ValidateFunc[T any] func(r *http.Request, profile *Profile) (user T, ok bool, err error)

// New returns a strategy whose users are the raw Steam profiles.
func New(opts Options) *openid.Strategy[*Profile] {
	return NewWithValidate[*Profile](opts, nil)
}

// NewWithValidate returns a strategy that passes every fetched profile
// through validate. With a nil validate the profile itself is the user,
// which requires T to be *Profile or an interface it satisfies.
func NewWithValidate[T any](opts Options, validate ValidateFunc[T]) *openid.Strategy[T] {
	client := NewClient(opts.APIKey, opts.APIBaseURL, opts.HTTPClient)

	strategy := openid.New(openid.Config{
		ProviderURL: ProviderURL,
		ReturnURL:   opts.ReturnURL,
		Realm:       opts.Realm,
		Stateless:   true,
		NonceStore:  opts.NonceStore,
	}, verifyFunc(client, validate))

	return strategy.WithName(Name)
}

// ParseIdentity extracts the 64-bit Steam ID from a claimed identifier.
func ParseIdentity(identifier string) (steamID string, ok bool) {
	m := identityPattern.FindStringSubmatch(identifier)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func verifyFunc[T any](client *Client, validate ValidateFunc[T]) openid.VerifyFunc[T] {
	return func(r *http.Request, identifier string) (T, bool, error) {
		var zero T

		// The engine accepts any provider that signs the assertion, so make
		// sure this one came from Steam before trusting the identifier.
		if r.URL.Query().Get("openid.op_endpoint") != OPEndpoint {
			return zero, false, newError(KindInvalidEndpoint, nil)
		}

		steamID, ok := ParseIdentity(identifier)
		if !ok {
			return zero, false, nil
		}

		profile, err := client.PlayerSummary(r.Context(), steamID)
		if err != nil {
			return zero, false, err
		}

		if validate != nil {
			return validate(r, profile)
		}

		user, ok := any(profile).(T)
		if !ok {
			return zero, false, fmt.Errorf("steam: profile is not assignable to %T", zero)
		}
		return user, true, nil
	}
}
