// Package openid adapts OpenID 2.0 relying-party logic into a named login
// strategy. Discovery, the provider redirect and check_authentication are
// done by github.com/yohcop/openid-go; callers supply a VerifyFunc that turns
// the verified claimed identifier into a user.
package openid

import (
	"fmt"
	"net/http"
	"net/url"

	oid "github.com/yohcop/openid-go"
)

const defaultName = "openid"

// Config describes the relying party.
type Config struct {
	// ProviderURL is the OP identifier used for discovery,
	// e.g. https://steamcommunity.com/openid.
	ProviderURL string
	ReturnURL   string
	Realm       string

	// Stateless disables the discovery cache, so nothing learned about a
	// claimed identifier outlives the callback that verified it.
	Stateless bool

	// NonceStore guards against assertion replay. Nil selects the
	// library's in-memory store, which is only correct for one replica.
	NonceStore oid.NonceStore
}

// VerifyFunc maps a verified claimed identifier to a user. Returning
// ok == false with a nil error means the identifier resolves to no user.
type VerifyFunc[T any] func(r *http.Request, identifier string) (user T, ok bool, err error)

// Strategy is an OpenID 2.0 login strategy producing users of type T.
// It holds no per-request state and is safe for concurrent use.
type Strategy[T any] struct {
	name   string
	cfg    Config
	verify VerifyFunc[T]

	cache  oid.DiscoveryCache
	nonces oid.NonceStore

	redirect        func(id, callbackURL, realm string) (string, error)
	verifyAssertion func(uri string, cache oid.DiscoveryCache, nonces oid.NonceStore) (string, error)
}

func New[T any](cfg Config, verify VerifyFunc[T]) *Strategy[T] {
	s := &Strategy[T]{
		name:            defaultName,
		cfg:             cfg,
		verify:          verify,
		nonces:          cfg.NonceStore,
		redirect:        oid.RedirectURL,
		verifyAssertion: oid.Verify,
	}

	if s.nonces == nil {
		s.nonces = oid.NewSimpleNonceStore()
	}

	if cfg.Stateless {
		s.cache = noDiscoveryCache{}
	} else {
		s.cache = oid.NewSimpleDiscoveryCache()
	}

	return s
}

// Name returns the strategy identifier used by the registry.
func (s *Strategy[T]) Name() string {
	return s.name
}

// WithName returns a shallow copy of the strategy registered under name.
// Stores and the verify callback are shared with the original.
func (s *Strategy[T]) WithName(name string) *Strategy[T] {
	cp := *s
	cp.name = name
	return &cp
}

// Config returns the relying party configuration.
func (s *Strategy[T]) Config() Config {
	return s.cfg
}

// Begin performs discovery on the provider and returns the checkid_setup
// URL the user agent must be redirected to.
func (s *Strategy[T]) Begin(_ http.ResponseWriter, _ *http.Request) (string, error) {
	u, err := s.redirect(s.cfg.ProviderURL, s.cfg.ReturnURL, s.cfg.Realm)
	if err != nil {
		return "", &Error{Message: "failed to build provider redirect", Err: err}
	}
	return u, nil
}

// Complete verifies the positive assertion carried by the callback request
// and hands the claimed identifier to the verify callback.
func (s *Strategy[T]) Complete(_ http.ResponseWriter, r *http.Request) (T, bool, error) {
	var zero T

	switch r.URL.Query().Get("openid.mode") {
	case "":
		return zero, false, &Error{Message: "missing openid response"}
	case "cancel":
		return zero, false, &Error{Message: "authentication canceled"}
	}

	assertion, err := s.assertionURL(r)
	if err != nil {
		return zero, false, &Error{Message: "invalid return url", Err: err}
	}

	identifier, err := s.verifyAssertion(assertion, s.cache, s.nonces)
	if err != nil {
		return zero, false, &Error{Message: "failed to verify assertion", Err: err}
	}

	return s.verify(r, identifier)
}

// assertionURL rebuilds the callback URL from the configured return URL so
// that openid.return_to matches even behind proxies that rewrite Host.
func (s *Strategy[T]) assertionURL(r *http.Request) (string, error) {
	u, err := url.Parse(s.cfg.ReturnURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", s.cfg.ReturnURL, err)
	}
	u.RawQuery = r.URL.RawQuery
	return u.String(), nil
}

type noDiscoveryCache struct{}

func (noDiscoveryCache) Put(string, oid.DiscoveredInfo) {}

func (noDiscoveryCache) Get(string) oid.DiscoveredInfo { return nil }
