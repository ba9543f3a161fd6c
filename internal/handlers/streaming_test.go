package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/anistream/internal/catalog"
)

func TestStreamingRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/streaming/tmdb", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestStreamingUnknownSource(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/streaming/justwatch?title=x", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
}

func TestStreamingReturnsPlatformArray(t *testing.T) {
	env := newTestEnv(t)
	env.anilist.platforms = []catalog.NormalizedPlatform{
		{Name: "crunchyroll", DisplayName: "Crunchyroll", MonthlyPrice: 1180, HasSub: true},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/streaming/anilist?title=SPY%C3%97FAMILY", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got []catalog.NormalizedPlatform
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body must be a bare array: %v", err)
	}
	if len(got) != 1 || got[0].Name != "crunchyroll" {
		t.Fatalf("unexpected platforms %+v", got)
	}
}

func TestStreamingNoMatchIsEmptyArray(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/streaming/tmdb?title=unknown", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("no match is not an error, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("want empty JSON array, got %q", body)
	}
}
