package anilist

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/example/anistream/internal/catalog"
)

// AniList descriptions embed HTML markup (<br>, <i>, spoiler spans).
var synopsisPolicy = bluemonday.StrictPolicy()

// ToNormalized maps an AniList media object into the canonical shape.
// Missing provider fields become zero values, never errors.
func ToNormalized(m Media) catalog.NormalizedAnime {
	titleJapanese := m.Title.Native
	if titleJapanese == "" {
		titleJapanese = m.Title.Romaji
	}
	imageURL := m.CoverImage.Large
	if imageURL == "" {
		imageURL = m.CoverImage.Medium
	}

	var score *float64
	if m.AverageScore != nil {
		// AniList scores are 0-100; the canonical scale is 0-10.
		v := *m.AverageScore / 10
		score = &v
	}

	id := m.ID
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}

	return catalog.NormalizedAnime{
		MalID:         m.IDMal,
		AnilistID:     &id,
		TitleJapanese: titleJapanese,
		TitleEnglish:  m.Title.English,
		TitleRomaji:   m.Title.Romaji,
		Synopsis:      stripMarkup(m.Description),
		ImageURL:      imageURL,
		Episodes:      m.Episodes,
		Status:        mapStatus(m.Status),
		ReleaseYear:   m.SeasonYear,
		Genres:        genres,
		Score:         score,
		Popularity:    m.Popularity,
		Source:        catalog.SourceAniList,
	}
}

func stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(synopsisPolicy.Sanitize(s))
}

func mapStatus(s string) catalog.AiringStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RELEASING":
		return catalog.StatusAiring
	case "FINISHED":
		return catalog.StatusFinished
	case "NOT_YET_RELEASED":
		return catalog.StatusUpcoming
	default:
		return catalog.StatusUnknown
	}
}
