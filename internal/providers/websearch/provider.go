// Package websearch provides MCP tools for querying the web.
package websearch

// file: internal/providers/websearch/provider.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// maxFetchBytes caps how much of a fetched page is returned to the client.
const maxFetchBytes = 10000

// fetchUserAgent identifies web_fetch requests.
const fetchUserAgent = "Mozilla/5.0 (compatible; SwissknifeMCP/1.0)"

// Provider exposes web_search and web_fetch tools. web_search requires a
// configured Tavily client; without one only web_fetch is advertised.
type Provider struct {
	search *TavilyClient
	fetch  *http.Client
	logger logging.Logger
}

// NewProvider creates the web tool provider. search may be nil when no API
// key is configured.
func NewProvider(search *TavilyClient, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Provider{
		search: search,
		fetch:  &http.Client{Timeout: 30 * time.Second},
		logger: logger.WithField("component", "websearch_provider"),
	}
}

// Name returns the provider's tool name prefix.
func (p *Provider) Name() string { return "web" }

// Description describes the provider for diagnostics.
func (p *Provider) Description() string {
	return "Web search and URL fetching."
}

// Tools lists the advertised tools.
func (p *Provider) Tools() []mcptypes.Tool {
	var tools []mcptypes.Tool

	if p.search != nil {
		searchSchema := json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query"},
				"max_results": {"type": "integer", "description": "Maximum number of results to return"}
			},
			"required": ["query"]
		}`)
		tools = append(tools, mcptypes.NewTool("web_search").
			WithDescription("Search the web using the Tavily search engine").
			WithSchema(searchSchema))
	}

	fetchSchema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "The URL to fetch"}
		},
		"required": ["url"]
	}`)
	tools = append(tools, mcptypes.NewTool("web_fetch").
		WithDescription("Fetch content from a URL").
		WithSchema(fetchSchema))

	return tools
}

// CallTool dispatches one of the provider's tools.
func (p *Provider) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcptypes.ToolResult, error) {
	switch name {
	case "web_search":
		return p.callSearch(ctx, args)
	case "web_fetch":
		return p.callFetch(ctx, args)
	default:
		return mcptypes.ErrorResult(fmt.Sprintf("Tool not found: %s", name)), nil
	}
}

func (p *Provider) callSearch(ctx context.Context, args json.RawMessage) (*mcptypes.ToolResult, error) {
	if p.search == nil {
		return mcptypes.ErrorResult("Web search is not configured: missing API key."), nil
	}

	var params struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.Unmarshal(args, &params); err != nil || params.Query == "" {
		return mcptypes.ErrorResult("Missing required parameter: query"), nil
	}

	response, err := p.search.Search(ctx, params.Query, SearchOptions{
		MaxResults:    params.MaxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		p.logger.Warn("Web search failed.", "query", params.Query, "error", err)
		return mcptypes.ErrorResult(fmt.Sprintf("Search failed: %v", err)), nil
	}

	p.logger.Debug("Web search completed.", "query", params.Query, "results", len(response.Results))
	return mcptypes.JSONResult(response), nil
}

// callFetch retrieves a URL and returns its status line and body, truncated
// so a large page cannot blow out the message size limit.
func (p *Provider) callFetch(ctx context.Context, args json.RawMessage) (*mcptypes.ToolResult, error) {
	var params struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(args, &params); err != nil || params.URL == "" {
		return mcptypes.ErrorResult("Missing required parameter: url"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, params.URL, nil)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("Invalid URL: %v", err)), nil
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := p.fetch.Do(req)
	if err != nil {
		p.logger.Warn("URL fetch failed.", "url", params.URL, "error", err)
		return mcptypes.ErrorResult(fmt.Sprintf("Fetch failed: %v", err)), nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("Failed to read response body: %v", err)), nil
	}

	if len(body) > maxFetchBytes {
		return mcptypes.TextResult(fmt.Sprintf("Status: %s\nContent (truncated):\n%s",
			resp.Status, body[:maxFetchBytes])), nil
	}
	return mcptypes.TextResult(fmt.Sprintf("Status: %s\nContent:\n%s", resp.Status, body)), nil
}
