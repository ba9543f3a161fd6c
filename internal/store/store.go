// Package store is the sole writer of Anime and Availability rows derived
// from external data. Reads back results in canonical (local-id) form.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/anistream/internal/catalog"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("store: not found")

// MaxSearchResults caps tiered local search output.
const MaxSearchResults = 20

// AnimeUpdate carries the admin-editable fields of an anime record.
// Nil pointers leave the column untouched.
type AnimeUpdate struct {
	TitleJapanese *string
	TitleEnglish  *string
	TitleRomaji   *string
	Synopsis      *string
	ImageURL      *string
	Episodes      *int
	Status        *catalog.AiringStatus
	ReleaseYear   *int
	Genres        *[]string
}

// AvailabilityWithPlatform joins one availability row with its platform.
type AvailabilityWithPlatform struct {
	catalog.Availability
	Platform catalog.Platform `json:"platform"`
}

// CatalogStore is the persistence boundary for the resolution pipeline,
// the price-check job, and the HTTP handlers.
type CatalogStore interface {
	// SearchLocal runs tiered matching (exact, prefix, substring) of the
	// query variants against all title fields. Tiers are strictly ordered,
	// each tier sorted popularity DESC with nulls last, merged first-wins
	// and capped at MaxSearchResults.
	SearchLocal(ctx context.Context, variants []string) ([]catalog.Anime, error)

	GetAnime(ctx context.Context, id string) (*catalog.Anime, error)
	// UpsertAnime matches by anilistId, then malId, else inserts. Updates
	// refresh every synced field except the Japanese title, which stays as
	// curated once set, and stamp lastSyncedAt.
	UpsertAnime(ctx context.Context, in catalog.NormalizedAnime) (catalog.Anime, error)
	// AnimeByAnilistIDs rehydrates persisted records to canonical local ids,
	// ordered popularity DESC.
	AnimeByAnilistIDs(ctx context.Context, ids []int) ([]catalog.Anime, error)
	AnimeByMalID(ctx context.Context, malID int) (*catalog.Anime, error)
	UpdateAnime(ctx context.Context, id string, upd AnimeUpdate) (*catalog.Anime, error)
	DeleteAnime(ctx context.Context, id string) error
	RecentlySynced(ctx context.Context, source catalog.DataSource, limit int) ([]catalog.Anime, error)
	// TrendingAnime lists currently airing records, most popular first.
	TrendingAnime(ctx context.Context, limit int) ([]catalog.Anime, error)

	ListAvailability(ctx context.Context, animeID string) ([]AvailabilityWithPlatform, error)
	QueryAvailability(ctx context.Context, animeID, platformID string) ([]catalog.Availability, error)
	// UpsertAvailability enforces uniqueness on (animeId, platformId).
	UpsertAvailability(ctx context.Context, av catalog.Availability) (catalog.Availability, error)
	DeleteAvailability(ctx context.Context, id string) error

	ListPlatforms(ctx context.Context, onlyActive bool) ([]catalog.Platform, error)
	GetPlatformByName(ctx context.Context, name string) (*catalog.Platform, error)
	CreatePlatform(ctx context.Context, p catalog.Platform) (catalog.Platform, error)
	UpdatePlatformPrices(ctx context.Context, id string, monthly int, annual *int, freeTrial bool, freeTrialDays int, at time.Time) error
	TouchPriceCheck(ctx context.Context, ids []string, at time.Time) error
	InsertPriceHistory(ctx context.Context, rows []catalog.PriceHistory) error

	RecordClick(ctx context.Context, ev catalog.ClickEvent) error
}
