package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchTVReturnsFirstHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("language"); got != "ja-JP" {
			t.Fatalf("search must request japanese locale, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":85937},{"id":12}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	id, err := c.SearchTV(context.Background(), "鬼滅の刃")
	if err != nil {
		t.Fatalf("SearchTV: %v", err)
	}
	if id != 85937 {
		t.Fatalf("want first result id, got %d", id)
	}
}

func TestSearchTVNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	id, err := New(srv.URL, "test-key").SearchTV(context.Background(), "no such show")
	if err != nil {
		t.Fatalf("SearchTV: %v", err)
	}
	if id != 0 {
		t.Fatalf("no match must return 0, got %d", id)
	}
}

func TestWatchProvidersCountryScoped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/85937/watch/providers" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":85937,"results":{
			"JP":{"link":"https://example.org/jp","flatrate":[{"provider_id":8,"provider_name":"Netflix"}]},
			"US":{"link":"https://example.org/us","flatrate":[{"provider_id":371,"provider_name":"Hulu"}]}
		}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	providers, link, err := c.WatchProviders(context.Background(), 85937, "JP")
	if err != nil {
		t.Fatalf("WatchProviders: %v", err)
	}
	if link != "https://example.org/jp" {
		t.Fatalf("wrong country link %q", link)
	}
	if len(providers) != 1 || providers[0].ProviderID != 8 {
		t.Fatalf("want only JP flatrate providers, got %+v", providers)
	}

	providers, _, err = c.WatchProviders(context.Background(), 85937, "DE")
	if err != nil {
		t.Fatalf("WatchProviders: %v", err)
	}
	if providers != nil {
		t.Fatalf("absent country must yield nothing, got %+v", providers)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "bad-key").SearchTV(context.Background(), "x"); err == nil {
		t.Fatal("expected error for rejected api key")
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	if _, err := New("", "").SearchTV(context.Background(), "x"); err == nil {
		t.Fatal("expected error when api key is not configured")
	}
}
