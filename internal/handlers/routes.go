package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/anistream/internal/platform/auth"
	"github.com/example/anistream/internal/platform/httpserver"
)

// RouteConfig carries the auth material the route tree needs.
type RouteConfig struct {
	Verifier    auth.JWTVerifier
	CronSecret  string
	EnforceCron bool
	// Limiter, when set, rate-limits the /api subtree (health endpoints
	// stay unthrottled).
	Limiter *httpserver.RateLimiter
}

// Mount registers the API under /api. SetupRouter must have run on r
// already.
func (h *Handlers) Mount(r chi.Router, cfg RouteConfig) {
	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
		r.Get("/search", h.Search)

		r.Get("/anime/trending", h.Trending)
		r.Route("/anime/{id}", func(r chi.Router) {
			r.Get("/", h.GetAnime)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser(cfg.Verifier), auth.RequireAdmin)
				r.Put("/", h.UpdateAnime)
				r.Delete("/", h.DeleteAnime)
			})
		})

		r.Get("/streaming/{source}", h.StreamingBySource)

		r.Get("/platforms", h.ListPlatforms)
		r.With(auth.RequireUser(cfg.Verifier), auth.RequireAdmin).
			Post("/platforms", h.CreatePlatform)

		r.Get("/availability", h.QueryAvailability)
		r.With(auth.RequireUser(cfg.Verifier), auth.RequireAdmin).
			Post("/availability", h.UpsertAvailability)

		r.Route("/sync/seasonal", func(r chi.Router) {
			r.Get("/", h.RecentlySynced)
			r.With(auth.RequireCronSecret(cfg.CronSecret, cfg.EnforceCron)).
				Post("/", h.SyncSeasonal)
		})
		r.With(auth.RequireCronSecret(cfg.CronSecret, cfg.EnforceCron)).
			Post("/prices/check", h.CheckPrices)

		r.Get("/track/click", h.TrackClick)
	})
}
