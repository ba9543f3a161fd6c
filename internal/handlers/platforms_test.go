package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/anistream/internal/catalog"
)

func TestListPlatformsFiltersInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.CreatePlatform(ctx, catalog.Platform{Name: "netflix", DisplayName: "Netflix", MonthlyPrice: 1490, IsActive: true})
	env.store.CreatePlatform(ctx, catalog.Platform{Name: "funimation", DisplayName: "Funimation", MonthlyPrice: 700, IsActive: false})

	req := httptest.NewRequest(http.MethodGet, "/api/platforms", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var resp struct {
		Platforms []catalog.Platform `json:"platforms"`
		Count     int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Platforms[0].Name != "netflix" {
		t.Fatalf("inactive platforms must be hidden by default: %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/platforms?all=true", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("all=true must include inactive, got %d", resp.Count)
	}
}

func TestCreatePlatformAdminOnlyAndConflict(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"U-NEXT","displayName":"U-NEXT","monthlyPrice":2189}`

	req := httptest.NewRequest(http.MethodPost, "/api/platforms", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/platforms", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", "admin"))
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if p, err := env.store.GetPlatformByName(context.Background(), "u-next"); err != nil || !p.IsActive {
		t.Fatalf("platform name must be lowercased and active: %v %v", p, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/platforms", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", "admin"))
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name: want 409, got %d", rec.Code)
	}
}

func TestAvailabilityQueryAndUpsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := seedAnime(t, env.store, "推しの子", 150672)
	p, _ := env.store.CreatePlatform(ctx, catalog.Platform{Name: "abema-premium", DisplayName: "ABEMA", MonthlyPrice: 960, IsActive: true})

	body := `{"animeId":"` + a.ID + `","platformId":"` + p.ID + `","hasSub":true,"availableEpisodes":11}`
	req := httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", "admin"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: want 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/availability?animeId="+a.ID, nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query: want 200, got %d", rec.Code)
	}
	var resp struct {
		Availability []catalog.Availability `json:"availability"`
		Count        int                    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Availability[0].PlatformID != p.ID {
		t.Fatalf("unexpected rows %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("no filter: want 400, got %d", rec.Code)
	}
}
