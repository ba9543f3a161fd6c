package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/analytics"
	"github.com/example/anistream/internal/platform/api"
	"github.com/example/anistream/internal/platform/auth"
	"github.com/example/anistream/internal/resolve"
)

type searchResponse struct {
	Anime      []resolve.ResolvedAnime `json:"anime"`
	Count      int                     `json:"count"`
	DataSource string                  `json:"dataSource"`
	Cached     bool                    `json:"cached"`
	TotalPages int                     `json:"totalPages"`
}

// Search resolves a title query against the catalog with external
// fallback; every hit embeds its streaming platforms. Results are
// cached per (query, page). cached is true whenever the response did
// not cost an external search: a redis hit or a database-served query.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		api.BadRequest(w, "MISSING_QUERY", "query parameter q is required", requestID(r), nil)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	key := fmt.Sprintf("search:%s:%d", strings.ToLower(q), page)
	var resp searchResponse
	if hit, err := h.Cache.Get(r.Context(), key, &resp); err != nil {
		h.Log.Warn("search cache read failed", zap.Error(err))
	} else if hit {
		resp.Cached = true
		h.publishSearch(r, q, resp.Count, resp.DataSource, true)
		api.WriteJSON(w, http.StatusOK, resp)
		return
	}

	res, err := h.Pipeline.Search(r.Context(), q, page)
	if err != nil {
		h.Log.Error("search failed", zap.String("query", q), zap.Error(err))
		api.Internal(w, requestID(r))
		return
	}

	resp = searchResponse{
		Anime:      res.Anime,
		Count:      len(res.Anime),
		DataSource: res.DataSource,
		Cached:     res.DataSource == resolve.SourceDatabase,
		TotalPages: res.TotalPages,
	}
	if err := h.Cache.Set(r.Context(), key, resp); err != nil {
		h.Log.Warn("search cache write failed", zap.Error(err))
	}
	h.publishSearch(r, q, resp.Count, resp.DataSource, resp.Cached)
	api.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) publishSearch(r *http.Request, query string, count int, source string, cached bool) {
	userID, _ := auth.UserIDFromContext(r.Context())
	h.Analytics.Publish(analytics.SubjectSearchPerformed, "search_performed", userID, map[string]any{
		"query":        query,
		"result_count": count,
		"data_source":  source,
		"cached":       cached,
	})
}
