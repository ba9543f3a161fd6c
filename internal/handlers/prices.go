package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/platform/api"
)

// CheckPrices runs the price check job. Guarded by the cron secret.
func (h *Handlers) CheckPrices(w http.ResponseWriter, r *http.Request) {
	report, err := h.Checker.Run(r.Context())
	if err != nil {
		h.Log.Error("price check failed", zap.Error(err))
		api.Internal(w, requestID(r))
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}
