package openid

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oid "github.com/yohcop/openid-go"
)

var testConfig = Config{
	ProviderURL: "https://provider.example/openid",
	ReturnURL:   "https://app.example/auth/test/callback",
	Realm:       "https://app.example/",
	Stateless:   true,
}

func echoVerify(_ *http.Request, identifier string) (string, bool, error) {
	return identifier, true, nil
}

func TestNewDefaults(t *testing.T) {
	s := New(testConfig, echoVerify)

	assert.Equal(t, "openid", s.Name())
	assert.Equal(t, testConfig, s.Config())
	assert.IsType(t, noDiscoveryCache{}, s.cache)
	assert.NotNil(t, s.nonces)

	stateful := testConfig
	stateful.Stateless = false
	_, noop := New(stateful, echoVerify).cache.(noDiscoveryCache)
	assert.False(t, noop)
}

func TestWithNameCopies(t *testing.T) {
	s := New(testConfig, echoVerify)
	named := s.WithName("steam")

	assert.Equal(t, "steam", named.Name())
	assert.Equal(t, "openid", s.Name())
	assert.Equal(t, s.Config(), named.Config())
}

func TestBegin(t *testing.T) {
	s := New(testConfig, echoVerify)

	var gotID, gotCallback, gotRealm string
	s.redirect = func(id, callbackURL, realm string) (string, error) {
		gotID, gotCallback, gotRealm = id, callbackURL, realm
		return "https://provider.example/openid/login?openid.mode=checkid_setup", nil
	}

	u, err := s.Begin(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/test/login", nil))
	require.NoError(t, err)
	assert.Equal(t, "https://provider.example/openid/login?openid.mode=checkid_setup", u)
	assert.Equal(t, testConfig.ProviderURL, gotID)
	assert.Equal(t, testConfig.ReturnURL, gotCallback)
	assert.Equal(t, testConfig.Realm, gotRealm)
}

func TestBeginDiscoveryFailure(t *testing.T) {
	s := New(testConfig, echoVerify)
	s.redirect = func(string, string, string) (string, error) {
		return "", errors.New("no endpoint")
	}

	_, err := s.Begin(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "failed to build provider redirect", oerr.Message)
}

func TestCompleteRejectsMissingAndCanceled(t *testing.T) {
	s := New(testConfig, echoVerify)
	s.verifyAssertion = func(string, oid.DiscoveryCache, oid.NonceStore) (string, error) {
		t.Fatal("assertion must not be verified")
		return "", nil
	}

	tests := map[string]string{
		"/auth/test/callback":                   "missing openid response",
		"/auth/test/callback?openid.mode=cancel": "authentication canceled",
	}
	for target, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			_, ok, err := s.Complete(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

			assert.False(t, ok)
			var oerr *Error
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, msg, oerr.Message)
		})
	}
}

func TestCompleteVerificationFailure(t *testing.T) {
	s := New(testConfig, echoVerify)
	cause := errors.New("signature mismatch")
	s.verifyAssertion = func(string, oid.DiscoveryCache, oid.NonceStore) (string, error) {
		return "", cause
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/test/callback?openid.mode=id_res", nil)
	_, ok, err := s.Complete(httptest.NewRecorder(), req)

	assert.False(t, ok)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "openid: failed to verify assertion: signature mismatch")
}

func TestCompleteVerifiesAgainstReturnURL(t *testing.T) {
	var verified string
	s := New(testConfig, echoVerify)
	s.verifyAssertion = func(uri string, cache oid.DiscoveryCache, nonces oid.NonceStore) (string, error) {
		verified = uri
		assert.Equal(t, s.cache, cache)
		assert.Equal(t, s.nonces, nonces)
		return "https://provider.example/openid/id/42", nil
	}

	// Host as seen behind a proxy differs from the public return URL.
	req := httptest.NewRequest(http.MethodGet, "http://10.0.0.7:8080/auth/test/callback?openid.mode=id_res&openid.claimed_id=x", nil)
	user, ok, err := s.Complete(httptest.NewRecorder(), req)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://provider.example/openid/id/42", user)
	assert.Equal(t, "https://app.example/auth/test/callback?openid.mode=id_res&openid.claimed_id=x", verified)
}

func TestCompletePropagatesVerifyResult(t *testing.T) {
	denied := errors.New("denied")
	s := New(testConfig, func(*http.Request, string) (string, bool, error) {
		return "", false, denied
	})
	s.verifyAssertion = func(string, oid.DiscoveryCache, oid.NonceStore) (string, error) {
		return "id", nil
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/test/callback?openid.mode=id_res", nil)
	_, ok, err := s.Complete(httptest.NewRecorder(), req)

	assert.False(t, ok)
	assert.Same(t, denied, err)
}
