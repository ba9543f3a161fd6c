package jikan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/anistream/internal/catalog"
)

func TestSearchOrdersByMembers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("order_by") != "members" || q.Get("sort") != "desc" {
			t.Fatalf("search must order by members desc, got %v", q)
		}
		w.Write([]byte(`{"data":[{"mal_id":5114,"title":"Fullmetal Alchemist: Brotherhood","title_japanese":"鋼の錬金術師"}],
			"pagination":{"last_visible_page":1,"has_next_page":false}}`))
	}))
	defer srv.Close()

	data, pg, err := New(srv.URL).Search(context.Background(), "fullmetal", 10, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(data) != 1 || data[0].MalID != 5114 {
		t.Fatalf("unexpected results %+v", data)
	}
	if pg.HasNextPage {
		t.Fatal("pagination must carry through")
	}
}

func TestClientRetriesOnceOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":[],"pagination":{"has_next_page":false}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, _, err := c.Search(context.Background(), "x", 1, 1); err != nil {
		t.Fatalf("retry should recover from a single 429: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", got)
	}
}

func TestClientGivesUpAfterSecond429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, _, err := New(srv.URL).Search(context.Background(), "x", 1, 1); err == nil {
		t.Fatal("persistent throttling must surface as an error")
	}
}

func TestClientPacesConsecutiveRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"pagination":{"has_next_page":false}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	if _, _, err := c.Search(ctx, "a", 1, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	start := time.Now()
	if _, _, err := c.Search(ctx, "b", 1, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Fatalf("second request must wait for the gate, took %v", elapsed)
	}
}

func TestSeasonWalksAllPages(t *testing.T) {
	var page1, page2 = `{"data":[{"mal_id":1,"title":"A"}],"pagination":{"has_next_page":true}}`,
		`{"data":[{"mal_id":2,"title":"B"}],"pagination":{"has_next_page":false}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/now" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(page1))
			return
		}
		w.Write([]byte(page2))
	}))
	defer srv.Close()

	src := NewSource(New(srv.URL), testLogger())
	got, err := src.Season(context.Background(), "now")
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both pages merged, got %d records", len(got))
	}
	if got[0].MalID == nil || *got[0].MalID != 1 {
		t.Fatalf("records must be normalized in page order: %+v", got[0])
	}
}

func TestToNormalizedFallbacks(t *testing.T) {
	a := Anime{MalID: 20, Title: "Naruto", Status: "Finished Airing"}
	a.Images.JPG.ImageURL = "https://cdn.example/small.jpg"

	got := ToNormalized(a)
	if got.TitleJapanese != "Naruto" {
		t.Fatalf("default title must fill a missing japanese title, got %q", got.TitleJapanese)
	}
	if got.ImageURL != "https://cdn.example/small.jpg" {
		t.Fatalf("small image must be the fallback, got %q", got.ImageURL)
	}
	if got.Status != catalog.StatusFinished {
		t.Fatalf("status mapping, got %q", got.Status)
	}
	if got.Source != catalog.SourceJikan {
		t.Fatalf("source must be jikan, got %q", got.Source)
	}
}
