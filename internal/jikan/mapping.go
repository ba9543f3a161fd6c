package jikan

import (
	"strings"

	"github.com/example/anistream/internal/catalog"
)

// ToNormalized maps a Jikan anime object into the canonical shape.
func ToNormalized(a Anime) catalog.NormalizedAnime {
	titleJapanese := a.TitleJapanese
	if titleJapanese == "" {
		titleJapanese = a.Title
	}
	imageURL := a.Images.JPG.LargeImageURL
	if imageURL == "" {
		imageURL = a.Images.JPG.ImageURL
	}

	genres := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}

	malID := a.MalID
	return catalog.NormalizedAnime{
		MalID:         &malID,
		TitleJapanese: titleJapanese,
		TitleEnglish:  a.TitleEnglish,
		TitleRomaji:   a.Title,
		Synopsis:      a.Synopsis,
		ImageURL:      imageURL,
		Episodes:      a.Episodes,
		Status:        mapStatus(a.Status),
		ReleaseYear:   a.Year,
		Genres:        genres,
		Score:         a.Score, // MAL scores are already 0-10
		Popularity:    a.Members,
		Source:        catalog.SourceJikan,
	}
}

func mapStatus(s string) catalog.AiringStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currently airing":
		return catalog.StatusAiring
	case "finished airing":
		return catalog.StatusFinished
	case "not yet aired":
		return catalog.StatusUpcoming
	default:
		return catalog.StatusUnknown
	}
}
