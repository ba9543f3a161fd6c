package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

// QueryAvailability lists stored availability rows filtered by animeId
// and/or platformId.
func (h *Handlers) QueryAvailability(w http.ResponseWriter, r *http.Request) {
	animeID := strings.TrimSpace(r.URL.Query().Get("animeId"))
	platformID := strings.TrimSpace(r.URL.Query().Get("platformId"))
	if animeID == "" && platformID == "" {
		api.BadRequest(w, "MISSING_FILTER", "animeId or platformId is required", requestID(r), nil)
		return
	}

	rows, err := h.Store.QueryAvailability(r.Context(), animeID, platformID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if rows == nil {
		rows = []catalog.Availability{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"availability": rows,
		"count":        len(rows),
	})
}

type upsertAvailabilityRequest struct {
	AnimeID           string `json:"animeId"`
	PlatformID        string `json:"platformId"`
	AvailableEpisodes *int   `json:"availableEpisodes"`
	HasSub            bool   `json:"hasSub"`
	HasDub            bool   `json:"hasDub"`
	DirectURL         string `json:"directUrl"`
}

// UpsertAvailability creates or replaces the row for an
// (anime, platform) pair (admin only).
func (h *Handlers) UpsertAvailability(w http.ResponseWriter, r *http.Request) {
	var req upsertAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "INVALID_BODY", "malformed JSON body", requestID(r), nil)
		return
	}
	if req.AnimeID == "" || req.PlatformID == "" {
		api.BadRequest(w, "MISSING_FIELDS", "animeId and platformId are required", requestID(r), nil)
		return
	}
	if _, err := h.Store.GetAnime(r.Context(), req.AnimeID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	av, err := h.Store.UpsertAvailability(r.Context(), catalog.Availability{
		AnimeID:           req.AnimeID,
		PlatformID:        req.PlatformID,
		AvailableEpisodes: req.AvailableEpisodes,
		HasSub:            req.HasSub,
		HasDub:            req.HasDub,
		DirectURL:         req.DirectURL,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"availability": av})
}
