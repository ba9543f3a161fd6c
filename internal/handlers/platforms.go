package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

// ListPlatforms returns platforms, active ones only unless ?all=true.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("all") != "true"
	platforms, err := h.Store.ListPlatforms(r.Context(), onlyActive)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if platforms == nil {
		platforms = []catalog.Platform{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"platforms": platforms,
		"count":     len(platforms),
	})
}

type createPlatformRequest struct {
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	LogoURL       string `json:"logoUrl"`
	WebsiteURL    string `json:"websiteUrl"`
	MonthlyPrice  int    `json:"monthlyPrice"`
	AnnualPrice   *int   `json:"annualPrice"`
	FreeTrial     bool   `json:"freeTrial"`
	FreeTrialDays int    `json:"freeTrialDays"`
	AffiliateURL  string `json:"affiliateUrl"`
}

// CreatePlatform registers a new streaming platform (admin only).
func (h *Handlers) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	var req createPlatformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "INVALID_BODY", "malformed JSON body", requestID(r), nil)
		return
	}
	req.Name = strings.ToLower(strings.TrimSpace(req.Name))
	if req.Name == "" || req.DisplayName == "" {
		api.BadRequest(w, "MISSING_FIELDS", "name and displayName are required", requestID(r), nil)
		return
	}
	if req.MonthlyPrice < 0 {
		api.BadRequest(w, "INVALID_PRICE", "monthlyPrice cannot be negative", requestID(r), nil)
		return
	}
	if existing, err := h.Store.GetPlatformByName(r.Context(), req.Name); err == nil && existing != nil {
		api.Conflict(w, "PLATFORM_EXISTS", "platform already registered", requestID(r),
			map[string]any{"name": req.Name})
		return
	}

	p, err := h.Store.CreatePlatform(r.Context(), catalog.Platform{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		LogoURL:       req.LogoURL,
		WebsiteURL:    req.WebsiteURL,
		MonthlyPrice:  req.MonthlyPrice,
		AnnualPrice:   req.AnnualPrice,
		FreeTrial:     req.FreeTrial,
		FreeTrialDays: req.FreeTrialDays,
		IsActive:      true,
		AffiliateURL:  req.AffiliateURL,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"platform": p})
}
