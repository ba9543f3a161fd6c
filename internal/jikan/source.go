package jikan

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
)

// Source wraps the client for the seasonal sync job. Failures on a
// single page are logged and returned so the job can count them; the
// caller decides whether to continue.
type Source struct {
	Client *Client
	Log    *zap.Logger
}

func NewSource(client *Client, log *zap.Logger) *Source {
	return &Source{Client: client, Log: log}
}

// Season fetches every page of the named season listing. which is
// "now" or "upcoming".
func (s *Source) Season(ctx context.Context, which string) ([]catalog.NormalizedAnime, error) {
	fetch := s.Client.SeasonNow
	if which == "upcoming" {
		fetch = s.Client.SeasonUpcoming
	}

	var out []catalog.NormalizedAnime
	for page := 1; ; page++ {
		data, pg, err := fetch(ctx, page)
		if err != nil {
			s.Log.Warn("jikan season page failed",
				zap.String("season", which), zap.Int("page", page), zap.Error(err))
			return out, err
		}
		for _, a := range data {
			out = append(out, ToNormalized(a))
		}
		if !pg.HasNextPage {
			return out, nil
		}
	}
}
