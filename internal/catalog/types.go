// Package catalog defines the canonical record types shared by the store,
// the source adapters, and the resolution pipeline.
package catalog

import "time"

// AiringStatus is the canonical airing state of an anime.
type AiringStatus string

const (
	StatusAiring   AiringStatus = "airing"
	StatusFinished AiringStatus = "finished"
	StatusUpcoming AiringStatus = "upcoming"
	StatusUnknown  AiringStatus = "unknown"
)

// DataSource identifies which system a record was last synced from.
type DataSource string

const (
	SourceManual  DataSource = "manual"
	SourceAniList DataSource = "anilist"
	SourceJikan   DataSource = "jikan"
	SourceTMDB    DataSource = "tmdb"
)

// Anime is the canonical persisted record. External ids are nullable so the
// unique constraints on them ignore rows that never saw that provider.
type Anime struct {
	ID            string       `json:"id"`
	MalID         *int         `json:"malId,omitempty"`
	AnilistID     *int         `json:"anilistId,omitempty"`
	TMDBID        *int         `json:"tmdbId,omitempty"`
	TitleJapanese string       `json:"titleJapanese"`
	TitleEnglish  string       `json:"titleEnglish,omitempty"`
	TitleRomaji   string       `json:"titleRomaji,omitempty"`
	Synopsis      string       `json:"synopsis,omitempty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Episodes      *int         `json:"episodes,omitempty"`
	Status        AiringStatus `json:"status"`
	ReleaseYear   *int         `json:"releaseYear,omitempty"`
	Genres        []string     `json:"genres"`
	Score         *float64     `json:"score,omitempty"`
	Popularity    *int         `json:"popularity,omitempty"`
	DataSource    DataSource   `json:"dataSource"`
	LastSyncedAt  time.Time    `json:"lastSyncedAt"`
}

// HasTitle reports whether at least one title field is set.
func (a Anime) HasTitle() bool {
	return a.TitleJapanese != "" || a.TitleEnglish != "" || a.TitleRomaji != ""
}

// Platform is a streaming service catalog entry. Prices are integer JPY.
type Platform struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"` // stable slug, e.g. "crunchyroll"
	DisplayName    string     `json:"displayName"`
	LogoURL        string     `json:"logoUrl,omitempty"`
	WebsiteURL     string     `json:"websiteUrl,omitempty"`
	MonthlyPrice   int        `json:"monthlyPrice"`
	AnnualPrice    *int       `json:"annualPrice,omitempty"`
	FreeTrial      bool       `json:"freeTrial"`
	FreeTrialDays  int        `json:"freeTrialDays"`
	IsActive       bool       `json:"isActive"`
	AffiliateURL   string     `json:"affiliateUrl,omitempty"`
	LastPriceCheck *time.Time `json:"lastPriceCheck,omitempty"`
}

// Availability relates one Anime to one Platform. Unique per
// (AnimeID, PlatformID); writes go through upsert.
type Availability struct {
	ID                string     `json:"id"`
	AnimeID           string     `json:"animeId"`
	PlatformID        string     `json:"platformId"`
	AvailableEpisodes *int       `json:"availableEpisodes,omitempty"`
	HasSub            bool       `json:"hasSub"`
	HasDub            bool       `json:"hasDub"`
	DirectURL         string     `json:"directUrl,omitempty"`
	ExpirationDate    *time.Time `json:"expirationDate,omitempty"`
	LastChecked       time.Time  `json:"lastChecked"`
}

// PriceChangeType classifies a price history entry.
type PriceChangeType string

const (
	ChangeIncrease PriceChangeType = "increase"
	ChangeDecrease PriceChangeType = "decrease"
	ChangeNone     PriceChangeType = "no_change"
)

// PriceHistory is an append-only log row produced by the price check job.
type PriceHistory struct {
	ID               string          `json:"id"`
	PlatformID       string          `json:"platformId"`
	OldMonthlyPrice  *int            `json:"oldMonthlyPrice,omitempty"`
	NewMonthlyPrice  int             `json:"newMonthlyPrice"`
	OldAnnualPrice   *int            `json:"oldAnnualPrice,omitempty"`
	NewAnnualPrice   *int            `json:"newAnnualPrice,omitempty"`
	ChangeType       PriceChangeType `json:"changeType"`
	ChangeDate       time.Time       `json:"changeDate"`
	PercentageChange float64         `json:"percentageChange"`
}

// ClickEvent records one affiliate-link click.
type ClickEvent struct {
	Platform  string    `json:"platform"`
	AnimeID   string    `json:"animeId"`
	UserID    string    `json:"userId,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	ClickedAt time.Time `json:"clickedAt"`
}

// NormalizedAnime is the in-memory shape every source adapter maps its
// provider response into. It has no lifecycle beyond one resolution call.
type NormalizedAnime struct {
	MalID         *int
	AnilistID     *int
	TMDBID        *int
	TitleJapanese string
	TitleEnglish  string
	TitleRomaji   string
	Synopsis      string
	ImageURL      string
	Episodes      *int
	Status        AiringStatus
	ReleaseYear   *int
	Genres        []string
	Score         *float64 // common 0-10 scale
	Popularity    *int
	Source        DataSource
}

// NormalizedPlatform is the adapter-output availability shape.
type NormalizedPlatform struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	DisplayName       string   `json:"displayName"`
	LogoURL           string   `json:"logoUrl,omitempty"`
	WebsiteURL        string   `json:"websiteUrl,omitempty"`
	MonthlyPrice      int      `json:"monthlyPrice"`
	AnnualPrice       *int     `json:"annualPrice,omitempty"`
	FreeTrial         bool     `json:"freeTrial"`
	FreeTrialDays     int      `json:"freeTrialDays"`
	AvailableEpisodes *int     `json:"availableEpisodes,omitempty"`
	HasSub            bool     `json:"hasSub"`
	HasDub            bool     `json:"hasDub"`
}
