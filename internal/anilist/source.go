package anilist

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
)

// Source is the adapter boundary used by the resolution pipeline. Provider
// failures are logged and surface as empty results so the pipeline can
// continue with its remaining sources.
type Source struct {
	Client *Client
	Log    *zap.Logger
}

func NewSource(client *Client, log *zap.Logger) *Source {
	return &Source{Client: client, Log: log}
}

// Search returns normalized search hits, or nothing on provider failure.
func (s *Source) Search(ctx context.Context, title string, limit, page int) []catalog.NormalizedAnime {
	media, err := s.Client.SearchPage(ctx, title, limit, page)
	if err != nil {
		s.Log.Warn("anilist search failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	out := make([]catalog.NormalizedAnime, 0, len(media))
	for _, m := range media {
		out = append(out, ToNormalized(m))
	}
	return out
}

// PlatformsByTitle resolves streaming platforms for a title, or nothing
// on provider failure or no match.
func (s *Source) PlatformsByTitle(ctx context.Context, title string) []catalog.NormalizedPlatform {
	media, err := s.Client.MediaByTitle(ctx, title)
	if err != nil {
		s.Log.Warn("anilist platform lookup failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	if media == nil {
		return nil
	}
	return ExtractPlatforms(*media)
}
