// Package websearch provides MCP tools for querying the web: a Tavily
// search tool and a plain URL fetch tool.
package websearch

// file: internal/providers/websearch/client.go

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// defaultBaseURL is the Tavily API endpoint.
const defaultBaseURL = "https://api.tavily.com"

// TavilyClient calls the Tavily search API.
type TavilyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTavilyClient creates a client for the Tavily API. An empty baseURL
// uses the public endpoint.
func NewTavilyClient(apiKey, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchOptions tunes a search request. The zero value asks for the API
// defaults.
type SearchOptions struct {
	MaxResults    int
	IncludeAnswer bool
}

// SearchResult is one ranked result.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// SearchResponse is the answer to one search query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer bool   `json:"include_answer,omitempty"`
}

// Search runs one query against the API.
func (c *TavilyClient) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    opts.MaxResults,
		IncludeAnswer: opts.IncludeAnswer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling search API")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Newf("search API returned %s: %s", resp.Status, string(detail))
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding search response")
	}
	return &result, nil
}
