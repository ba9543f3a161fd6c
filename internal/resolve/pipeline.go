// Package resolve implements the search resolution pipeline: local
// catalog first, external sources as fallback, persisting what the
// fallback found so the next identical search is served locally.
package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/pricing"
	"github.com/example/anistream/internal/store"
)

// Data source labels reported to API clients.
const (
	SourceDatabase   = "database"
	SourceAniListAPI = "anilist_api"
)

// AnimeSearcher is the external title-search boundary. Implementations
// never return errors; failures surface as empty results.
type AnimeSearcher interface {
	Search(ctx context.Context, title string, limit, page int) []catalog.NormalizedAnime
}

// PlatformSource resolves streaming platforms for one title.
type PlatformSource interface {
	PlatformsByTitle(ctx context.Context, title string) []catalog.NormalizedPlatform
}

// ResolvedAnime is one search hit with its availability attached,
// cheapest platform first.
type ResolvedAnime struct {
	catalog.Anime
	Platforms []store.AvailabilityWithPlatform `json:"platforms"`
}

// Result is one resolved search.
type Result struct {
	Anime      []ResolvedAnime
	DataSource string
	TotalPages int
}

// Pipeline wires the store and the external sources together.
type Pipeline struct {
	Store       store.CatalogStore
	AniList     AnimeSearcher
	Sources     map[string]PlatformSource
	LookupOrder []string
	Log         *zap.Logger
}

// ParseLookupOrder splits a comma-separated source list, trimming
// blanks. An empty value yields the default tmdb-then-anilist order.
func ParseLookupOrder(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{"tmdb", "anilist"}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"tmdb", "anilist"}
	}
	return out
}

// Search resolves a query. Local hits win outright; otherwise the
// external fallback runs, its hits are persisted one by one (a bad
// record is skipped, not fatal) and re-read so clients always see
// canonical local ids. Every resolved record carries its availability.
func (p *Pipeline) Search(ctx context.Context, query string, page int) (Result, error) {
	variants := catalog.Normalize(query).List()

	// An unreachable store means "no local results", not a failed
	// search: the external fallback can still answer.
	local, err := p.Store.SearchLocal(ctx, variants)
	if err != nil {
		p.Log.Warn("local search failed", zap.String("query", query), zap.Error(err))
		local = nil
	}
	if len(local) > 0 {
		return Result{Anime: p.attach(ctx, local), DataSource: SourceDatabase, TotalPages: 1}, nil
	}

	external := p.AniList.Search(ctx, query, 10, page)
	if len(external) == 0 {
		return Result{Anime: []ResolvedAnime{}, DataSource: SourceAniListAPI, TotalPages: 0}, nil
	}

	var ids []int
	var persisted []catalog.Anime
	for _, n := range external {
		rec, err := p.Store.UpsertAnime(ctx, n)
		if err != nil {
			p.Log.Warn("persisting external result failed",
				zap.String("title", n.TitleJapanese), zap.Error(err))
			continue
		}
		persisted = append(persisted, rec)
		if rec.AnilistID != nil {
			ids = append(ids, *rec.AnilistID)
		}
	}

	anime := persisted
	if len(ids) > 0 {
		if hydrated, err := p.Store.AnimeByAnilistIDs(ctx, ids); err == nil && len(hydrated) > 0 {
			anime = hydrated
		}
	}
	return Result{Anime: p.attach(ctx, anime), DataSource: SourceAniListAPI, TotalPages: 1}, nil
}

func (p *Pipeline) attach(ctx context.Context, anime []catalog.Anime) []ResolvedAnime {
	out := make([]ResolvedAnime, 0, len(anime))
	for _, a := range anime {
		out = append(out, ResolvedAnime{Anime: a, Platforms: p.AvailabilityFor(ctx, a)})
	}
	return out
}

// AvailabilityFor returns the stored availability of an anime sorted
// cheapest-first, running the platform fallback chain once for records
// that never had a lookup. Read failures yield an empty list.
func (p *Pipeline) AvailabilityFor(ctx context.Context, a catalog.Anime) []store.AvailabilityWithPlatform {
	entries, err := p.Store.ListAvailability(ctx, a.ID)
	if err != nil {
		p.Log.Warn("availability read failed", zap.String("anime", a.ID), zap.Error(err))
		return []store.AvailabilityWithPlatform{}
	}
	if len(entries) == 0 {
		if p.HydrateAvailability(ctx, a) {
			if fresh, err := p.Store.ListAvailability(ctx, a.ID); err == nil {
				entries = fresh
			}
		}
	}
	return pricing.SortedByPrice(entries)
}

// Platforms resolves streaming platforms for an anime by walking the
// configured source order, trying the Japanese title before the
// English one within each source. First non-empty answer wins.
func (p *Pipeline) Platforms(ctx context.Context, titleJapanese, titleEnglish string) []catalog.NormalizedPlatform {
	titles := make([]string, 0, 2)
	if titleJapanese != "" {
		titles = append(titles, titleJapanese)
	}
	if titleEnglish != "" && titleEnglish != titleJapanese {
		titles = append(titles, titleEnglish)
	}

	for _, name := range p.LookupOrder {
		src, ok := p.Sources[name]
		if !ok {
			continue
		}
		for _, title := range titles {
			if platforms := src.PlatformsByTitle(ctx, title); len(platforms) > 0 {
				return platforms
			}
		}
	}
	return []catalog.NormalizedPlatform{}
}
