package config

import (
	"errors"
	"os"
	"strings"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	Env         string
	LogLevel    string
	HTTP        HTTPConfig

	DatabaseURL string
	RedisURL    string
	NATSURL     string

	TMDBAPIKey string
	JWTSecret  string
	CronSecret string

	// Comma-separated source order for the per-title platform lookup
	// fallback, e.g. "tmdb,anilist".
	PlatformLookupOrder string

	CrunchyrollAffiliateID string
	AmazonAffiliateID      string
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		Env:         strings.TrimSpace(os.Getenv("ENV")),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		},
		DatabaseURL:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:               strings.TrimSpace(os.Getenv("REDIS_URL")),
		NATSURL:                strings.TrimSpace(os.Getenv("NATS_URL")),
		TMDBAPIKey:             strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		JWTSecret:              strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CronSecret:             strings.TrimSpace(os.Getenv("CRON_SECRET")),
		PlatformLookupOrder:    strings.TrimSpace(os.Getenv("PLATFORM_LOOKUP_ORDER")),
		CrunchyrollAffiliateID: strings.TrimSpace(os.Getenv("CRUNCHYROLL_AFFILIATE_ID")),
		AmazonAffiliateID:      strings.TrimSpace(os.Getenv("AMAZON_AFFILIATE_ID")),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "anistream"
	}
	if cfg.DatabaseURL == "" {
		return AppConfig{}, errors.New("DATABASE_URL is required")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.PlatformLookupOrder == "" {
		cfg.PlatformLookupOrder = "tmdb,anilist"
	}
	return cfg, nil
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
