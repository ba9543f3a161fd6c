package handlers

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/affiliate"
	"github.com/example/anistream/internal/analytics"
	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

// TrackClick records an affiliate click and redirects to the partner
// link. Tracking is fail-open: any failure past validation still
// redirects, at worst to the platform's home page.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	platform := affiliate.NormalizePlatformName(r.URL.Query().Get("platform"))
	animeID := strings.TrimSpace(r.URL.Query().Get("animeId"))
	if platform == "" || animeID == "" {
		api.BadRequest(w, "MISSING_PARAMS", "platform and animeId are required", requestID(r), nil)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))

	target := ""
	if p, err := h.Store.GetPlatformByName(r.Context(), platform); err == nil {
		if p.AffiliateURL != "" {
			target = p.AffiliateURL
		} else {
			target = p.WebsiteURL
		}
	}
	dest := h.Affiliate.Link(platform, target)

	if err := h.Store.RecordClick(r.Context(), catalog.ClickEvent{
		Platform:  platform,
		AnimeID:   animeID,
		UserID:    userID,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		h.Log.Warn("click record failed", zap.String("platform", platform), zap.Error(err))
		dest = affiliate.FallbackURL(platform)
	}
	h.Analytics.Publish(analytics.SubjectAffiliateClick, "affiliate_click", userID, map[string]any{
		"platform": platform,
		"anime_id": animeID,
	})

	http.Redirect(w, r, dest, http.StatusFound)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
