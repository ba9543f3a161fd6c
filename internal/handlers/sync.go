package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

// SyncSeasonal runs the seasonal bulk sync. type is current (default)
// or upcoming. Guarded by the cron secret.
func (h *Handlers) SyncSeasonal(w http.ResponseWriter, r *http.Request) {
	season := "now"
	switch strings.TrimSpace(r.URL.Query().Get("type")) {
	case "", "current":
	case "upcoming":
		season = "upcoming"
	default:
		api.BadRequest(w, "INVALID_TYPE", "type must be current or upcoming", requestID(r), nil)
		return
	}

	report, err := h.Syncer.Run(r.Context(), season)
	if err != nil {
		h.Log.Error("seasonal sync failed", zap.String("season", season), zap.Error(err))
		api.Internal(w, requestID(r))
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// RecentlySynced lists the latest records the seasonal sync wrote.
func (h *Handlers) RecentlySynced(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	anime, err := h.Store.RecentlySynced(r.Context(), catalog.SourceJikan, limit)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if anime == nil {
		anime = []catalog.Anime{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"anime": anime,
		"count": len(anime),
	})
}
