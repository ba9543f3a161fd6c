package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/anistream/internal/catalog"
)

func doTrending(t *testing.T, env *testEnv, target string) (*httptest.ResponseRecorder, trendingResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	var resp trendingResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding trending response: %v", err)
		}
	}
	return rec, resp
}

func TestTrendingSyncsColdCatalogOnce(t *testing.T) {
	env := newTestEnv(t)
	env.lister.listing = []catalog.NormalizedAnime{
		{
			MalID:         intp(52991),
			TitleJapanese: "葬送のフリーレン",
			Status:        catalog.StatusAiring,
			Popularity:    intp(900000),
			Source:        catalog.SourceJikan,
		},
		{
			MalID:         intp(54857),
			TitleJapanese: "薬屋のひとりごと",
			Status:        catalog.StatusAiring,
			Popularity:    intp(400000),
			Source:        catalog.SourceJikan,
		},
	}

	rec, resp := doTrending(t, env, "/api/anime/trending")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if resp.Count != 2 {
		t.Fatalf("cold catalog must be filled from the season listing: %+v", resp)
	}
	if resp.Anime[0].TitleJapanese != "葬送のフリーレン" {
		t.Fatalf("most popular first, got %q", resp.Anime[0].TitleJapanese)
	}
	if env.lister.calls != 1 {
		t.Fatalf("season listing fetched %d times, want 1", env.lister.calls)
	}

	// Warm catalog serves straight from the store.
	_, resp = doTrending(t, env, "/api/anime/trending")
	if resp.Count != 2 || env.lister.calls != 1 {
		t.Fatalf("warm catalog must not re-sync: count=%d calls=%d", resp.Count, env.lister.calls)
	}
}

func TestTrendingHonorsLimit(t *testing.T) {
	env := newTestEnv(t)
	for i, title := range []string{"ワンピース", "名探偵コナン", "ちいかわ"} {
		if _, err := env.store.UpsertAnime(context.Background(), catalog.NormalizedAnime{
			MalID:         intp(1000 + i),
			TitleJapanese: title,
			Status:        catalog.StatusAiring,
			Popularity:    intp(100 * (i + 1)),
			Source:        catalog.SourceJikan,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec, resp := doTrending(t, env, "/api/anime/trending?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if resp.Count != 2 {
		t.Fatalf("limit must cap the list, got %d", resp.Count)
	}
	if resp.Anime[0].TitleJapanese != "ちいかわ" {
		t.Fatalf("most popular first, got %q", resp.Anime[0].TitleJapanese)
	}

	// Out-of-range limits fall back to the default of ten.
	rec, resp = doTrending(t, env, "/api/anime/trending?limit=500")
	if rec.Code != http.StatusOK || resp.Count != 3 {
		t.Fatalf("junk limit must use the default: code=%d count=%d", rec.Code, resp.Count)
	}
}

func TestTrendingExcludesFinishedShows(t *testing.T) {
	env := newTestEnv(t)
	seedAnime(t, env.store, "カウボーイビバップ", 1)
	if _, err := env.store.UpsertAnime(context.Background(), catalog.NormalizedAnime{
		AnilistID:     intp(154587),
		TitleJapanese: "葬送のフリーレン",
		Status:        catalog.StatusAiring,
		Popularity:    intp(500),
		Source:        catalog.SourceAniList,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, resp := doTrending(t, env, "/api/anime/trending")
	if resp.Count != 1 || resp.Anime[0].TitleJapanese != "葬送のフリーレン" {
		t.Fatalf("only airing shows trend: %+v", resp.Anime)
	}
}
