// Package websearch implements domain.WebSearcher over a SearxNG-compatible JSON API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client queries a SearxNG-compatible search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	logger     *zap.Logger
}

// Config holds the search endpoint settings.
type Config struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewClient creates a search client. The endpoint must have the JSON output
// format enabled.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		logger:     cfg.Logger,
	}
}

// searxResponse mirrors the SearxNG JSON search response.
type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements domain.WebSearcher. The endpoint returns results ranked
// by engine score; the first limit entries are kept.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.WebSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if c.language != "" {
		params.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if limit <= 0 || limit > len(parsed.Results) {
		limit = len(parsed.Results)
	}

	results := make([]domain.WebSearchResult, 0, limit)
	for _, r := range parsed.Results[:limit] {
		results = append(results, domain.WebSearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	return results, nil
}
