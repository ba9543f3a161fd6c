// Package jikan adapts the Jikan (unofficial MyAnimeList) REST API. It
// is the bulk-sync source: seasonal listings and full records by MAL id.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.jikan.moe/v4"

// minInterval keeps well under Jikan's published limit of 3 req/s.
const minInterval = 350 * time.Millisecond

// retryBackoff is applied once when Jikan answers 429 anyway.
const retryBackoff = time.Second

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Anime is the subset of a Jikan anime object the catalog consumes.
type Anime struct {
	MalID  int    `json:"mal_id"`
	URL    string `json:"url"`
	Images struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english"`
	TitleJapanese string   `json:"title_japanese"`
	Episodes      *int     `json:"episodes"`
	Status        string   `json:"status"`
	Score         *float64 `json:"score"`
	Members       *int     `json:"members"`
	Year          *int     `json:"year"`
	Synopsis      string   `json:"synopsis"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
}

type listResponse struct {
	Data       []Anime    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type singleResponse struct {
	Data Anime `json:"data"`
}

// getJSON performs a rate-gated GET. Every caller shares one limiter so
// concurrent syncs still respect the provider's limit. A single retry
// covers the case where Jikan throttles despite the gate.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	retried := false
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && !retried {
			retried = true
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("jikan: status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("jikan: decode error: %w", err)
		}
		return nil
	}
}

// Search queries anime ordered by member count descending.
func (c *Client) Search(ctx context.Context, query string, limit, page int) ([]Anime, Pagination, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	u := fmt.Sprintf("%s/anime?q=%s&limit=%d&page=%d&order_by=members&sort=desc",
		c.BaseURL, url.QueryEscape(query), limit, page)
	var out listResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, Pagination{}, err
	}
	return out.Data, out.Pagination, nil
}

// SeasonNow returns one page of the currently airing season.
func (c *Client) SeasonNow(ctx context.Context, page int) ([]Anime, Pagination, error) {
	return c.seasonPage(ctx, "now", page)
}

// SeasonUpcoming returns one page of the upcoming season.
func (c *Client) SeasonUpcoming(ctx context.Context, page int) ([]Anime, Pagination, error) {
	return c.seasonPage(ctx, "upcoming", page)
}

func (c *Client) seasonPage(ctx context.Context, which string, page int) ([]Anime, Pagination, error) {
	if page <= 0 {
		page = 1
	}
	u := fmt.Sprintf("%s/seasons/%s?page=%d", c.BaseURL, which, page)
	var out listResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, Pagination{}, err
	}
	return out.Data, out.Pagination, nil
}

// FullByMalID fetches the full record for one MAL id.
func (c *Client) FullByMalID(ctx context.Context, malID int) (*Anime, error) {
	u := fmt.Sprintf("%s/anime/%d/full", c.BaseURL, malID)
	var out singleResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	if out.Data.MalID == 0 {
		return nil, nil
	}
	return &out.Data, nil
}
