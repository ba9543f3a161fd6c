package tmdb

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
)

// defaultCountry scopes watch-provider lookups; availability differs per
// region and the catalog tracks the Japanese market.
const defaultCountry = "JP"

// Source is the adapter boundary used by the resolution pipeline.
// Provider failures are logged and surface as empty results.
type Source struct {
	Client  *Client
	Country string
	Log     *zap.Logger
}

func NewSource(client *Client, log *zap.Logger) *Source {
	return &Source{Client: client, Country: defaultCountry, Log: log}
}

// PlatformsByTitle searches TMDB for the title and maps its flatrate
// watch providers, or returns nothing on failure or no match.
func (s *Source) PlatformsByTitle(ctx context.Context, title string) []catalog.NormalizedPlatform {
	return s.PlatformsByTitleIn(ctx, title, s.Country)
}

// PlatformsByTitleIn is PlatformsByTitle scoped to a specific country.
func (s *Source) PlatformsByTitleIn(ctx context.Context, title, country string) []catalog.NormalizedPlatform {
	if country == "" {
		country = defaultCountry
	}
	id, err := s.Client.SearchTV(ctx, title)
	if err != nil {
		s.Log.Warn("tmdb search failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	if id == 0 {
		return nil
	}
	providers, link, err := s.Client.WatchProviders(ctx, id, country)
	if err != nil {
		s.Log.Warn("tmdb watch providers failed", zap.Int("tmdbId", id), zap.Error(err))
		return nil
	}
	return MapProviders(providers, link, nil)
}
