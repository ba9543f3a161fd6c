package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

// countryScoped is implemented by sources whose availability differs
// per region (TMDB).
type countryScoped interface {
	PlatformsByTitleIn(ctx context.Context, title, country string) []catalog.NormalizedPlatform
}

// StreamingBySource resolves platforms for a title through one named
// source (tmdb or anilist). No match is an empty array, not an error.
func (h *Handlers) StreamingBySource(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		api.BadRequest(w, "MISSING_TITLE", "query parameter title is required", requestID(r), nil)
		return
	}
	src, ok := h.Pipeline.Sources[source]
	if !ok {
		api.NotFound(w, "UNKNOWN_SOURCE", "unknown streaming source", requestID(r))
		return
	}

	var platforms []catalog.NormalizedPlatform
	country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if cs, scoped := src.(countryScoped); scoped && country != "" {
		platforms = cs.PlatformsByTitleIn(r.Context(), title, country)
	} else {
		platforms = src.PlatformsByTitle(r.Context(), title)
	}
	if platforms == nil {
		platforms = []catalog.NormalizedPlatform{}
	}
	api.WriteJSON(w, http.StatusOK, platforms)
}
