package tmdb

import (
	"fmt"

	"github.com/example/anistream/internal/catalog"
)

const logoBaseURL = "https://image.tmdb.org/t/p/original"

type providerEntry struct {
	Name          string
	DisplayName   string
	MonthlyPrice  int
	AnnualPrice   int // 0 when the service has no annual plan
	FreeTrial     bool
	FreeTrialDays int
}

// providerMapping keys are TMDB/JustWatch provider ids. Providers not
// listed here are dropped from results.
var providerMapping = map[int]providerEntry{
	9:   {Name: "amazon-prime", DisplayName: "Amazon Prime Video", MonthlyPrice: 600, AnnualPrice: 5900},
	8:   {Name: "netflix", DisplayName: "Netflix", MonthlyPrice: 990, AnnualPrice: 11880},
	283: {Name: "crunchyroll", DisplayName: "Crunchyroll", MonthlyPrice: 960, AnnualPrice: 9600, FreeTrial: true, FreeTrialDays: 14},
	337: {Name: "disney-plus", DisplayName: "Disney+", MonthlyPrice: 990, AnnualPrice: 9900},
	384: {Name: "hbo-max", DisplayName: "HBO Max", MonthlyPrice: 1000},
	2:   {Name: "apple-tv-plus", DisplayName: "Apple TV+", MonthlyPrice: 900},
	371: {Name: "hulu", DisplayName: "Hulu", MonthlyPrice: 1026},
	531: {Name: "paramount-plus", DisplayName: "Paramount+", MonthlyPrice: 770},
	582: {Name: "funimation", DisplayName: "Funimation", MonthlyPrice: 700},
}

// MapProviders converts flatrate watch providers into the canonical
// platform shape. link is the country-level JustWatch page, used as the
// website URL for every mapped provider.
func MapProviders(providers []WatchProvider, link string, episodes *int) []catalog.NormalizedPlatform {
	out := make([]catalog.NormalizedPlatform, 0, len(providers))
	seen := make(map[string]struct{})
	for _, p := range providers {
		entry, ok := providerMapping[p.ProviderID]
		if !ok {
			continue
		}
		if _, dup := seen[entry.Name]; dup {
			continue
		}
		seen[entry.Name] = struct{}{}

		var logoURL string
		if p.LogoPath != "" {
			logoURL = fmt.Sprintf("%s%s", logoBaseURL, p.LogoPath)
		}
		var annual *int
		if entry.AnnualPrice > 0 {
			v := entry.AnnualPrice
			annual = &v
		}
		out = append(out, catalog.NormalizedPlatform{
			ID:                entry.Name,
			Name:              entry.Name,
			DisplayName:       entry.DisplayName,
			LogoURL:           logoURL,
			WebsiteURL:        link,
			MonthlyPrice:      entry.MonthlyPrice,
			AnnualPrice:       annual,
			FreeTrial:         entry.FreeTrial,
			FreeTrialDays:     entry.FreeTrialDays,
			AvailableEpisodes: episodes,
			HasSub:            true,
			HasDub:            false,
		})
	}
	return out
}
