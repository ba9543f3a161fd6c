// Package affiliate builds outbound affiliate links and the fallback
// destinations used when a tracked redirect cannot be resolved.
package affiliate

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the partner ids. Empty values fall back to demo ids so
// redirects keep working in development.
type Config struct {
	CrunchyrollID string
	AmazonTag     string
}

func (c Config) crunchyrollID() string {
	if c.CrunchyrollID != "" {
		return c.CrunchyrollID
	}
	return "demo"
}

func (c Config) amazonTag() string {
	if c.AmazonTag != "" {
		return c.AmazonTag
	}
	return "demo-20"
}

// homeURLs are where a click lands when the platform has no stored
// affiliate or website URL.
var homeURLs = map[string]string{
	"crunchyroll":  "https://www.crunchyroll.com",
	"netflix":      "https://www.netflix.com",
	"hulu":         "https://www.hulu.jp",
	"amazon-prime": "https://www.amazon.co.jp/gp/video/storefront",
	"disney-plus":  "https://www.disneyplus.com",
	"u-next":       "https://video.unext.jp",
}

const defaultFallbackURL = "https://www.crunchyroll.com"

// FallbackURL returns the platform's home page, or the default when the
// platform is unknown.
func FallbackURL(platform string) string {
	if u, ok := homeURLs[NormalizePlatformName(platform)]; ok {
		return u
	}
	return defaultFallbackURL
}

// NormalizePlatformName maps loose platform spellings to catalog slugs.
func NormalizePlatformName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	switch s {
	case "amazon", "amazon-prime-video", "prime-video":
		return "amazon-prime"
	case "disney+", "disneyplus":
		return "disney-plus"
	case "unext":
		return "u-next"
	}
	return s
}

// Link builds the affiliate destination for a platform. target is the
// stored affiliate or website URL; when it is empty the platform home
// page is decorated instead.
func (c Config) Link(platform, target string) string {
	slug := NormalizePlatformName(platform)
	if target == "" {
		target = FallbackURL(slug)
	}
	switch slug {
	case "crunchyroll":
		return appendParam(target, "referrer", c.crunchyrollID())
	case "amazon-prime":
		return appendParam(target, "tag", c.amazonTag())
	default:
		return target
	}
}

func appendParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%s%s=%s", rawURL, sep, key, url.QueryEscape(value))
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
