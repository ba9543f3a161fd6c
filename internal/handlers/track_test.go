package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/anistream/internal/catalog"
)

func TestTrackClickRequiresParams(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/track/click?platform=netflix", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestTrackClickRecordsAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.store.CreatePlatform(ctx, catalog.Platform{
		Name: "crunchyroll", DisplayName: "Crunchyroll",
		WebsiteURL: "https://www.crunchyroll.com/series/GY9", IsActive: true,
	}); err != nil {
		t.Fatalf("seed platform: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/track/click?platform=crunchyroll&animeId=abc&userId=u1", nil)
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("want 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://www.crunchyroll.com/series/GY9?referrer=demo" {
		t.Fatalf("redirect must carry the affiliate id, got %q", loc)
	}

	clicks := env.store.Clicks()
	if len(clicks) != 1 {
		t.Fatalf("want 1 recorded click, got %d", len(clicks))
	}
	c := clicks[0]
	if c.Platform != "crunchyroll" || c.AnimeID != "abc" || c.UserID != "u1" {
		t.Fatalf("unexpected click record %+v", c)
	}
	if c.UserAgent != "test-agent" {
		t.Fatalf("user agent must be captured, got %q", c.UserAgent)
	}
	if c.ClickedAt.IsZero() {
		t.Fatal("clickedAt must be stamped")
	}
}

func TestTrackClickUnknownPlatformStillRedirects(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/track/click?platform=weird-tv&animeId=abc", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("tracking is fail-open, want 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://www.crunchyroll.com" {
		t.Fatalf("unknown platforms land on the default home, got %q", loc)
	}
}
