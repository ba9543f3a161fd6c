// Package tmdb adapts the TMDB watch-provider API (data powered by
// JustWatch) for per-title streaming availability lookups.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// WatchProvider is one entry of a country's watch-provider list.
type WatchProvider struct {
	LogoPath        string `json:"logo_path"`
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	DisplayPriority int    `json:"display_priority"`
}

type countryProviders struct {
	Link     string          `json:"link"`
	Flatrate []WatchProvider `json:"flatrate"`
}

type providersResponse struct {
	ID      int                         `json:"id"`
	Results map[string]countryProviders `json:"results"`
}

type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(b, &e) == nil && e.StatusMessage != "" {
			return fmt.Errorf("tmdb: status %d: %s", resp.StatusCode, e.StatusMessage)
		}
		return fmt.Errorf("tmdb: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("tmdb: decode error: %w", err)
	}
	return nil
}

// SearchTV returns the TMDB id of the most relevant TV series for the
// title, or 0 when nothing matches.
func (c *Client) SearchTV(ctx context.Context, title string) (int, error) {
	if c.APIKey == "" {
		return 0, fmt.Errorf("tmdb: api key not configured")
	}
	u := fmt.Sprintf("%s/search/tv?api_key=%s&query=%s&language=ja-JP",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(title))
	var out searchResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return 0, err
	}
	if len(out.Results) == 0 {
		return 0, nil
	}
	return out.Results[0].ID, nil
}

// WatchProviders returns the flatrate (subscription) providers for the
// series in the given country, plus the JustWatch deep link.
func (c *Client) WatchProviders(ctx context.Context, tmdbID int, country string) ([]WatchProvider, string, error) {
	if c.APIKey == "" {
		return nil, "", fmt.Errorf("tmdb: api key not configured")
	}
	u := fmt.Sprintf("%s/tv/%d/watch/providers?api_key=%s", c.BaseURL, tmdbID, url.QueryEscape(c.APIKey))
	var out providersResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, "", err
	}
	cp, ok := out.Results[country]
	if !ok {
		return nil, "", nil
	}
	return cp.Flatrate, cp.Link, nil
}
