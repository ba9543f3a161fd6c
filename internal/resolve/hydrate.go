package resolve

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/store"
)

// HydrateAvailability resolves streaming platforms for an anime through
// the source fallback chain and persists them. Reports whether anything
// was written; individual write failures are logged and skipped.
func (p *Pipeline) HydrateAvailability(ctx context.Context, a catalog.Anime) bool {
	platforms := p.Platforms(ctx, a.TitleJapanese, a.TitleEnglish)
	if len(platforms) == 0 {
		return false
	}

	wrote := false
	for _, np := range platforms {
		pl, err := p.Store.GetPlatformByName(ctx, np.Name)
		if errors.Is(err, store.ErrNotFound) {
			created, cerr := p.Store.CreatePlatform(ctx, catalog.Platform{
				Name:          np.Name,
				DisplayName:   np.DisplayName,
				LogoURL:       np.LogoURL,
				WebsiteURL:    np.WebsiteURL,
				MonthlyPrice:  np.MonthlyPrice,
				AnnualPrice:   np.AnnualPrice,
				FreeTrial:     np.FreeTrial,
				FreeTrialDays: np.FreeTrialDays,
				IsActive:      true,
			})
			if cerr != nil {
				p.Log.Warn("platform create failed", zap.String("platform", np.Name), zap.Error(cerr))
				continue
			}
			pl = &created
		} else if err != nil {
			p.Log.Warn("platform lookup failed", zap.String("platform", np.Name), zap.Error(err))
			continue
		}

		_, err = p.Store.UpsertAvailability(ctx, catalog.Availability{
			AnimeID:           a.ID,
			PlatformID:        pl.ID,
			AvailableEpisodes: np.AvailableEpisodes,
			HasSub:            np.HasSub,
			HasDub:            np.HasDub,
			DirectURL:         np.WebsiteURL,
		})
		if err != nil {
			p.Log.Warn("availability upsert failed",
				zap.String("anime", a.ID), zap.String("platform", np.Name), zap.Error(err))
			continue
		}
		wrote = true
	}
	return wrote
}
