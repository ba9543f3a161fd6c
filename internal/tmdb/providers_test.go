package tmdb

import "testing"

func TestMapProvidersKnownAndUnknown(t *testing.T) {
	providers := []WatchProvider{
		{ProviderID: 8, ProviderName: "Netflix", LogoPath: "/nf.png"},
		{ProviderID: 283, ProviderName: "Crunchyroll"},
		{ProviderID: 99999, ProviderName: "Obscure TV"},
	}
	got := MapProviders(providers, "https://www.themoviedb.org/tv/1/watch", nil)
	if len(got) != 2 {
		t.Fatalf("unknown provider ids must be dropped, got %d entries", len(got))
	}
	if got[0].Name != "netflix" || got[1].Name != "crunchyroll" {
		t.Fatalf("encounter order must be preserved, got %q %q", got[0].Name, got[1].Name)
	}
	if got[0].LogoURL != "https://image.tmdb.org/t/p/original/nf.png" {
		t.Fatalf("logo path must resolve against the image CDN, got %q", got[0].LogoURL)
	}
	if got[1].LogoURL != "" {
		t.Fatalf("missing logo path must stay empty, got %q", got[1].LogoURL)
	}
	if got[0].WebsiteURL != "https://www.themoviedb.org/tv/1/watch" {
		t.Fatalf("country link must be used as website url")
	}
	if !got[1].FreeTrial || got[1].FreeTrialDays != 14 {
		t.Fatalf("crunchyroll trial metadata missing: %+v", got[1])
	}
	if got[0].AnnualPrice == nil || *got[0].AnnualPrice != 11880 {
		t.Fatalf("netflix annual price missing: %+v", got[0])
	}
}

func TestMapProvidersDeduplicates(t *testing.T) {
	providers := []WatchProvider{
		{ProviderID: 8, ProviderName: "Netflix"},
		{ProviderID: 8, ProviderName: "Netflix"},
	}
	if got := MapProviders(providers, "", nil); len(got) != 1 {
		t.Fatalf("duplicate provider ids must collapse, got %d", len(got))
	}
}

func TestMapProvidersNoAnnualPlan(t *testing.T) {
	got := MapProviders([]WatchProvider{{ProviderID: 384}}, "", nil)
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}
	if got[0].AnnualPrice != nil {
		t.Fatalf("services without an annual plan must have nil annual price")
	}
}
