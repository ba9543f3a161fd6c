package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/api"
)

func doSearch(t *testing.T, env *testEnv, query string) (*httptest.ResponseRecorder, searchResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q="+url.QueryEscape(query), nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	var resp searchResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding search response: %v", err)
		}
	}
	return rec, resp
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	var envelope api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("error body must be the envelope: %v", err)
	}
	if envelope.Error.Code != "MISSING_QUERY" {
		t.Fatalf("want MISSING_QUERY, got %q", envelope.Error.Code)
	}
}

func TestSearchFallsBackThenServesLocally(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.results = []catalog.NormalizedAnime{{
		AnilistID:     intp(101),
		TitleJapanese: "ぼっち・ざ・ろっく！",
		Status:        catalog.StatusFinished,
		Source:        catalog.SourceAniList,
	}}

	rec, resp := doSearch(t, env, "ぼっち・ざ・ろっく！")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if resp.DataSource != "anilist_api" || resp.Count != 1 {
		t.Fatalf("first search must come from the fallback: %+v", resp)
	}
	if resp.Cached {
		t.Fatalf("fallback-served searches are not cached: %+v", resp)
	}

	rec, resp = doSearch(t, env, "ぼっち・ざ・ろっく！")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if resp.DataSource != "database" {
		t.Fatalf("second search must be local, got %q", resp.DataSource)
	}
	if !resp.Cached {
		t.Fatalf("database-served searches report cached: %+v", resp)
	}
	if env.searcher.calls != 1 {
		t.Fatalf("external source consulted %d times, want 1", env.searcher.calls)
	}
}

func TestSearchEmbedsPlatforms(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.results = []catalog.NormalizedAnime{{
		AnilistID:     intp(154587),
		TitleJapanese: "葬送のフリーレン",
		Source:        catalog.SourceAniList,
	}}
	env.tmdb.platforms = []catalog.NormalizedPlatform{
		{Name: "netflix", DisplayName: "Netflix", MonthlyPrice: 990, HasSub: true},
	}

	rec, resp := doSearch(t, env, "葬送のフリーレン")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if resp.Count != 1 || len(resp.Anime[0].Platforms) != 1 {
		t.Fatalf("search hits must carry their platforms: %+v", resp.Anime)
	}
	if resp.Anime[0].Platforms[0].Platform.Name != "netflix" {
		t.Fatalf("unexpected platform %+v", resp.Anime[0].Platforms[0])
	}

	// The local round trip keeps the platform list intact.
	_, resp = doSearch(t, env, "葬送のフリーレン")
	if resp.DataSource != "database" || len(resp.Anime[0].Platforms) != 1 {
		t.Fatalf("platforms must survive the database-served search: %+v", resp)
	}
}

func TestSearchEmptyEverywhere(t *testing.T) {
	env := newTestEnv(t)
	rec, resp := doSearch(t, env, "nothing matches this")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if resp.Count != 0 || resp.Anime == nil {
		t.Fatalf("empty searches return an empty list: %+v", resp)
	}
}
