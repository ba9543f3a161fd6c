// Package anilist adapts the AniList GraphQL API to the canonical model.
// It is the only title-search fallback used by the interactive flow.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://graphql.anilist.co"

type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const searchQuery = `query ($search: String, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { total currentPage lastPage hasNextPage }
    media(search: $search, type: ANIME, sort: POPULARITY_DESC) {
      id
      idMal
      title { romaji english native }
      coverImage { large medium }
      description
      episodes
      status
      season
      seasonYear
      averageScore
      popularity
      genres
      externalLinks { site url }
      streamingEpisodes { title url site }
    }
  }
}`

const mediaByTitleQuery = `query ($search: String) {
  Media(search: $search, type: ANIME, sort: POPULARITY_DESC) {
    id
    idMal
    title { romaji english native }
    episodes
    status
    externalLinks { site url }
    streamingEpisodes { title url site }
  }
}`

// Media is the subset of the AniList media object this service consumes.
type Media struct {
	ID    int  `json:"id"`
	IDMal *int `json:"idMal"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	CoverImage struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"coverImage"`
	Description       string   `json:"description"`
	Episodes          *int     `json:"episodes"`
	Status            string   `json:"status"`
	Season            string   `json:"season"`
	SeasonYear        *int     `json:"seasonYear"`
	AverageScore      *float64 `json:"averageScore"`
	Popularity        *int     `json:"popularity"`
	Genres            []string `json:"genres"`
	ExternalLinks     []Link   `json:"externalLinks"`
	StreamingEpisodes []Link   `json:"streamingEpisodes"`
}

type Link struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type pageResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				Total       int  `json:"total"`
				CurrentPage int  `json:"currentPage"`
				LastPage    int  `json:"lastPage"`
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []Media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type mediaResponse struct {
	Data struct {
		Media *Media `json:"Media"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

func (c *Client) post(ctx context.Context, q string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: q, Variables: vars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
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
		return fmt.Errorf("anilist: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("anilist: decode error: %w", err)
	}
	return nil
}

// SearchPage queries AniList for anime by title, sorted by popularity.
func (c *Client) SearchPage(ctx context.Context, title string, limit, page int) ([]Media, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	var out pageResponse
	err := c.post(ctx, searchQuery, map[string]any{"search": title, "page": page, "perPage": limit}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("anilist: graphql error: %s", out.Errors[0].Message)
	}
	return out.Data.Page.Media, nil
}

// MediaByTitle returns the most popular media for a title, or nil when
// nothing matches.
func (c *Client) MediaByTitle(ctx context.Context, title string) (*Media, error) {
	var out mediaResponse
	err := c.post(ctx, mediaByTitleQuery, map[string]any{"search": title}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("anilist: graphql error: %s", out.Errors[0].Message)
	}
	return out.Data.Media, nil
}
