// Package handlers implements the public HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/affiliate"
	"github.com/example/anistream/internal/analytics"
	"github.com/example/anistream/internal/platform/api"
	"github.com/example/anistream/internal/platform/cache"
	"github.com/example/anistream/internal/platform/httpserver"
	"github.com/example/anistream/internal/pricing"
	"github.com/example/anistream/internal/resolve"
	"github.com/example/anistream/internal/seasonal"
	"github.com/example/anistream/internal/store"
)

// Handlers bundles the service dependencies behind the HTTP routes.
type Handlers struct {
	Store     store.CatalogStore
	Pipeline  *resolve.Pipeline
	Checker   *pricing.Checker
	Syncer    *seasonal.Syncer
	Cache     *cache.RedisCache
	Analytics *analytics.Publisher
	Affiliate affiliate.Config
	Log       *zap.Logger
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// writeStoreError maps store errors onto the API envelope.
func (h *Handlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		api.NotFound(w, "NOT_FOUND", "resource not found", requestID(r))
		return
	}
	h.Log.Error("store error", zap.String("path", r.URL.Path), zap.Error(err))
	api.Internal(w, requestID(r))
}
