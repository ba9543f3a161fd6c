package anilist

import "github.com/example/anistream/internal/catalog"

// siteMapping translates AniList external-link site names to platform
// slugs with reference JPY pricing. Sites not listed here are ignored.
type siteEntry struct {
	Name         string
	DisplayName  string
	MonthlyPrice int
}

var siteMapping = map[string]siteEntry{
	"Crunchyroll":        {Name: "crunchyroll", DisplayName: "Crunchyroll", MonthlyPrice: 1180},
	"Netflix":            {Name: "netflix", DisplayName: "Netflix", MonthlyPrice: 990},
	"Hulu":               {Name: "hulu", DisplayName: "Hulu", MonthlyPrice: 1026},
	"Amazon Prime Video": {Name: "amazon-prime", DisplayName: "Amazon Prime", MonthlyPrice: 600},
	"Disney Plus":        {Name: "disney-plus", DisplayName: "Disney+", MonthlyPrice: 990},
	"Adult Swim":         {Name: "adult-swim", DisplayName: "Adult Swim", MonthlyPrice: 0},
	"Funimation":         {Name: "funimation", DisplayName: "Funimation", MonthlyPrice: 0}, // service discontinued
}

// ExtractPlatforms derives streaming platforms from a media's external
// links and streaming-episode metadata, deduplicated by slug in encounter
// order (external links first).
func ExtractPlatforms(m Media) []catalog.NormalizedPlatform {
	platforms := make([]catalog.NormalizedPlatform, 0, len(m.ExternalLinks))
	seen := make(map[string]struct{})

	add := func(site, url string) {
		entry, ok := siteMapping[site]
		if !ok {
			return
		}
		if _, dup := seen[entry.Name]; dup {
			return
		}
		seen[entry.Name] = struct{}{}
		platforms = append(platforms, catalog.NormalizedPlatform{
			ID:                entry.Name,
			Name:              entry.Name,
			DisplayName:       entry.DisplayName,
			WebsiteURL:        url,
			MonthlyPrice:      entry.MonthlyPrice,
			AvailableEpisodes: m.Episodes,
			HasSub:            true,
			HasDub:            false,
		})
	}

	for _, link := range m.ExternalLinks {
		add(link.Site, link.URL)
	}
	for _, ep := range m.StreamingEpisodes {
		add(ep.Site, ep.URL)
	}
	return platforms
}
