package affiliate

import "testing"

func TestLinkDecoratesCrunchyroll(t *testing.T) {
	c := Config{CrunchyrollID: "partner-7"}
	got := c.Link("crunchyroll", "https://www.crunchyroll.com/series/GY9")
	if got != "https://www.crunchyroll.com/series/GY9?referrer=partner-7" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkDecoratesAmazonWithTag(t *testing.T) {
	c := Config{AmazonTag: "mystore-22"}
	got := c.Link("Amazon Prime Video", "https://www.amazon.co.jp/dp/B0X?ref=x")
	if got != "https://www.amazon.co.jp/dp/B0X?ref=x&tag=mystore-22" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkDefaultsToDemoIDs(t *testing.T) {
	got := Config{}.Link("crunchyroll", "")
	if got != "https://www.crunchyroll.com?referrer=demo" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkPassthroughForUntaggedPlatforms(t *testing.T) {
	got := Config{}.Link("netflix", "https://www.netflix.com/title/80014749")
	if got != "https://www.netflix.com/title/80014749" {
		t.Fatalf("netflix links carry no affiliate params, got %q", got)
	}
}

func TestFallbackURL(t *testing.T) {
	if got := FallbackURL("hulu"); got != "https://www.hulu.jp" {
		t.Fatalf("got %q", got)
	}
	if got := FallbackURL("some-unknown-service"); got != defaultFallbackURL {
		t.Fatalf("unknown platforms must fall back to the default, got %q", got)
	}
}

func TestNormalizePlatformName(t *testing.T) {
	cases := map[string]string{
		"Amazon Prime Video": "amazon-prime",
		"prime video":        "amazon-prime",
		"Disney+":            "disney-plus",
		"UNEXT":              "u-next",
		"Crunchyroll":        "crunchyroll",
	}
	for in, want := range cases {
		if got := NormalizePlatformName(in); got != want {
			t.Fatalf("NormalizePlatformName(%q) = %q, want %q", in, got, want)
		}
	}
}
