package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
	"github.com/example/anistream/internal/pricing"
	"github.com/example/anistream/internal/store"
)

type animeDetailResponse struct {
	Anime       catalog.Anime                    `json:"anime"`
	Platforms   []store.AvailabilityWithPlatform `json:"platforms"`
	LowestPrice *store.AvailabilityWithPlatform  `json:"lowestPrice,omitempty"`
}

// GetAnime returns one record with its availability, cheapest first.
// Records that never had an availability lookup get one on first read.
func (h *Handlers) GetAnime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Store.GetAnime(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	entries := h.Pipeline.AvailabilityFor(r.Context(), *a)
	api.WriteJSON(w, http.StatusOK, animeDetailResponse{
		Anime:       *a,
		Platforms:   entries,
		LowestPrice: pricing.LowestPrice(entries),
	})
}

type updateAnimeRequest struct {
	TitleJapanese *string               `json:"titleJapanese"`
	TitleEnglish  *string               `json:"titleEnglish"`
	TitleRomaji   *string               `json:"titleRomaji"`
	Synopsis      *string               `json:"synopsis"`
	ImageURL      *string               `json:"imageUrl"`
	Episodes      *int                  `json:"episodes"`
	Status        *catalog.AiringStatus `json:"status"`
	ReleaseYear   *int                  `json:"releaseYear"`
	Genres        *[]string             `json:"genres"`
}

func validStatus(s catalog.AiringStatus) bool {
	switch s {
	case catalog.StatusAiring, catalog.StatusFinished, catalog.StatusUpcoming, catalog.StatusUnknown:
		return true
	}
	return false
}

// UpdateAnime applies a partial admin edit. Absent fields are untouched.
func (h *Handlers) UpdateAnime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateAnimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "INVALID_BODY", "malformed JSON body", requestID(r), nil)
		return
	}
	if req.TitleJapanese != nil && strings.TrimSpace(*req.TitleJapanese) == "" {
		api.BadRequest(w, "INVALID_TITLE", "titleJapanese cannot be blanked", requestID(r), nil)
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		api.BadRequest(w, "INVALID_STATUS", "unknown status value", requestID(r),
			map[string]any{"status": *req.Status})
		return
	}

	a, err := h.Store.UpdateAnime(r.Context(), id, store.AnimeUpdate{
		TitleJapanese: req.TitleJapanese,
		TitleEnglish:  req.TitleEnglish,
		TitleRomaji:   req.TitleRomaji,
		Synopsis:      req.Synopsis,
		ImageURL:      req.ImageURL,
		Episodes:      req.Episodes,
		Status:        req.Status,
		ReleaseYear:   req.ReleaseYear,
		Genres:        req.Genres,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"anime": a})
}

// DeleteAnime removes a record and its availability rows.
func (h *Handlers) DeleteAnime(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAnime(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
