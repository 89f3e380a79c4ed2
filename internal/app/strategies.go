package app

import (
	"context"
	"net/http"
	"time"

	"steam-auth-service/internal/auth"
	"steam-auth-service/internal/auth/provider"
	"steam-auth-service/internal/auth/provider/google"
	"steam-auth-service/internal/auth/provider/openid"
	"steam-auth-service/internal/auth/provider/steam"
	"steam-auth-service/internal/config"
	"steam-auth-service/internal/logger"

	oid "github.com/yohcop/openid-go"
)

const steamAPITimeout = 10 * time.Second

func setupStrategies(ctx context.Context, cfg config.Config, infra *Infra) (*provider.Registry, error) {
	strategies := []provider.Strategy{
		newSteamStrategy(cfg, openid.NewRedisNonceStore(infra.Redis.Client)),
	}

	if cfg.GoogleEnabled() {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, googleProvider)
	}

	registry := provider.NewRegistry(strategies...)

	logger.Info("login strategies registered", map[string]any{
		"strategies": registry.Names(),
	})

	return registry, nil
}

func newSteamStrategy(cfg config.Config, nonces oid.NonceStore) *openid.Strategy[*auth.Identity] {
	return steam.NewWithValidate(steam.Options{
		ReturnURL:  cfg.SteamReturnURL,
		Realm:      cfg.SteamRealm,
		APIKey:     cfg.SteamAPIKey,
		APIBaseURL: cfg.SteamAPIBaseURL,
		HTTPClient: &http.Client{Timeout: steamAPITimeout},
		NonceStore: nonces,
	}, steamIdentity(cfg.SteamRequirePublicProfile))
}

// steamIdentity maps Steam profiles to identities. With requirePublic,
// private profiles resolve to no user.
func steamIdentity(requirePublic bool) steam.ValidateFunc[*auth.Identity] {
	return func(_ *http.Request, p *steam.Profile) (*auth.Identity, bool, error) {
		if requirePublic && !p.Public() {
			logger.Info("steam profile rejected: not public", map[string]any{
				"steamid": p.SteamID,
			})
			return nil, false, nil
		}
		return p.Identity(), true, nil
	}
}
