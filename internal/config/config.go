package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	SteamAPIKey               string `envconfig:"STEAM_API_KEY" required:"true"`
	SteamReturnURL            string `envconfig:"STEAM_RETURN_URL" required:"true"`
	SteamRealm                string `envconfig:"STEAM_REALM" required:"true"`
	SteamAPIBaseURL           string `envconfig:"STEAM_API_BASE_URL" default:"https://api.steampowered.com"`
	SteamRequirePublicProfile bool   `envconfig:"STEAM_REQUIRE_PUBLIC_PROFILE"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`

	RedisAddr     string `envconfig:"REDIS_ADDR" required:"true"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// GoogleEnabled reports whether the google strategy should be registered.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// Load reads an optional .env file from the working directory and then
// processes the environment. Variables already set in the environment win
// over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
