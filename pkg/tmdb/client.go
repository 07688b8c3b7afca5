package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

// ErrNotFound is returned when the requested content doesn't exist in TMDB.
var ErrNotFound = errors.New("content not found")

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the response cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON executes a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchMovies searches for movies by title. A non-zero year narrows the search.
// Results come back in TMDB relevance order.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]Movie, error) {
	key := fmt.Sprintf("search:movie:%s:%d", query, year)
	if v, ok := c.cache.get(key); ok {
		return v.([]Movie), nil
	}

	params := url.Values{"query": {query}}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var page movieSearchPage
	if err := c.getJSON(ctx, "/3/search/movie", params, &page); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}

	c.cache.set(key, page.Results)
	return page.Results, nil
}

// SearchTV searches for series by name. A non-zero year narrows the search
// by first air date. Results come back in TMDB relevance order.
func (c *Client) SearchTV(ctx context.Context, query string, year int) ([]TVShow, error) {
	key := fmt.Sprintf("search:tv:%s:%d", query, year)
	if v, ok := c.cache.get(key); ok {
		return v.([]TVShow), nil
	}

	params := url.Values{"query": {query}}
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var page tvSearchPage
	if err := c.getJSON(ctx, "/3/search/tv", params, &page); err != nil {
		return nil, fmt.Errorf("search tv: %w", err)
	}

	c.cache.set(key, page.Results)
	return page.Results, nil
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	key := fmt.Sprintf("movie:%d", tmdbID)
	if v, ok := c.cache.get(key); ok {
		return v.(*Movie), nil
	}

	var movie Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/3/movie/%d", tmdbID), nil, &movie); err != nil {
		return nil, err
	}

	c.cache.set(key, &movie)
	return &movie, nil
}

// GetTVShow fetches series metadata by TMDB ID, including season summaries.
func (c *Client) GetTVShow(ctx context.Context, tmdbID int64) (*TVShow, error) {
	key := fmt.Sprintf("tv:%d", tmdbID)
	if v, ok := c.cache.get(key); ok {
		return v.(*TVShow), nil
	}

	var show TVShow
	if err := c.getJSON(ctx, fmt.Sprintf("/3/tv/%d", tmdbID), nil, &show); err != nil {
		return nil, err
	}

	c.cache.set(key, &show)
	return &show, nil
}

// GetSeason fetches one season of a series with its full episode list.
func (c *Client) GetSeason(ctx context.Context, tmdbID int64, seasonNumber int) (*Season, error) {
	key := fmt.Sprintf("tv:%d:season:%d", tmdbID, seasonNumber)
	if v, ok := c.cache.get(key); ok {
		return v.(*Season), nil
	}

	var season Season
	if err := c.getJSON(ctx, fmt.Sprintf("/3/tv/%d/season/%d", tmdbID, seasonNumber), nil, &season); err != nil {
		return nil, err
	}

	c.cache.set(key, &season)
	return &season, nil
}
