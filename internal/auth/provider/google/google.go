package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"steam-auth-service/internal/auth"
	"steam-auth-service/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "google"

var (
	ErrInvalidState    = errors.New("google: invalid state")
	ErrMissingVerifier = errors.New("google: missing pkce verifier")
	ErrMissingCode     = errors.New("google: missing authorization code")
)

// idTokenVerifier is the part of *oidc.IDTokenVerifier the provider uses.
type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    idTokenVerifier
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

// Name returns the strategy identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Begin issues the state and PKCE cookies and returns the authorization URL.
func (p *Provider) Begin(w http.ResponseWriter, _ *http.Request) (string, error) {
	state, err := generateState(w)
	if err != nil {
		return "", fmt.Errorf("google: generate state: %w", err)
	}

	_, codeChallenge, err := generatePKCE(w)
	if err != nil {
		return "", fmt.Errorf("google: generate pkce: %w", err)
	}

	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// Complete exchanges the authorization code and returns a normalized identity.
// A callback carrying an OAuth error (e.g. access_denied) resolves to no user.
func (p *Provider) Complete(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool, error) {
	if !validateState(r) {
		return nil, false, ErrInvalidState
	}
	clearFlowCookie(w, stateCookieName)

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		logger.Warn("google callback returned error", map[string]any{
			"error": errParam,
			"desc":  q.Get("error_description"),
		})
		return nil, false, nil
	}

	code := q.Get("code")
	if code == "" {
		return nil, false, ErrMissingCode
	}

	codeVerifier := getPKCEVerifier(r)
	if codeVerifier == "" {
		return nil, false, ErrMissingVerifier
	}
	clearFlowCookie(w, pkceCookieName)

	token, err := p.oauthConfig.Exchange(
		r.Context(),
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, false, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, false, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return nil, false, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, false, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" {
		return nil, false, errors.New("google id_token missing subject")
	}

	logger.Info("google oidc verified", map[string]any{
		"issuer":         idToken.Issuer,
		"email_present":  claims.Email != "",
		"email_verified": claims.EmailVerified,
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: claims.Subject,
		DisplayName:    claims.Name,
		AvatarURL:      claims.Picture,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
	}, true, nil
}
