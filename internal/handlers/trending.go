package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

type trendingResponse struct {
	Anime  []catalog.Anime `json:"anime"`
	Count  int             `json:"count"`
	Cached bool            `json:"cached"`
}

// Trending lists currently airing anime, most popular first. A cold
// catalog triggers one seasonal sync so the list can be served
// store-backed from then on.
func (h *Handlers) Trending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := fmt.Sprintf("trending:%d", limit)
	var resp trendingResponse
	if hit, err := h.Cache.Get(r.Context(), key, &resp); err != nil {
		h.Log.Warn("trending cache read failed", zap.Error(err))
	} else if hit {
		resp.Cached = true
		api.WriteJSON(w, http.StatusOK, resp)
		return
	}

	anime, err := h.Store.TrendingAnime(r.Context(), limit)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if len(anime) == 0 {
		if _, err := h.Syncer.Run(r.Context(), "now"); err != nil {
			h.Log.Warn("trending season sync failed", zap.Error(err))
		}
		if fresh, err := h.Store.TrendingAnime(r.Context(), limit); err == nil {
			anime = fresh
		}
	}
	if anime == nil {
		anime = []catalog.Anime{}
	}

	resp = trendingResponse{Anime: anime, Count: len(anime)}
	if err := h.Cache.Set(r.Context(), key, resp); err != nil {
		h.Log.Warn("trending cache write failed", zap.Error(err))
	}
	api.WriteJSON(w, http.StatusOK, resp)
}
