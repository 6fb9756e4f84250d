// file: internal/providers/websearch/provider_test.go
package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Tools_OmitsSearchWithoutClient(t *testing.T) {
	p := NewProvider(nil, nil)

	var names []string
	for _, tool := range p.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"web_fetch"}, names, "Only web_fetch should be advertised without a search client.")
}

func TestProvider_Tools_IncludesSearchWithClient(t *testing.T) {
	p := NewProvider(NewTavilyClient("key", ""), nil)

	var names []string
	for _, tool := range p.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"web_search", "web_fetch"}, names, "Both tools should be advertised with a search client.")
}

func TestProvider_WebSearch_ReturnsResults(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path, "The client should call the search endpoint.")

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req), "The request body should be JSON.")
		assert.Equal(t, "golang routers", req["query"], "The query should be forwarded.")
		assert.Equal(t, "key-123", req["api_key"], "The API key should be included.")

		_ = json.NewEncoder(w).Encode(SearchResponse{
			Query:  "golang routers",
			Answer: "Use a mux.",
			Results: []SearchResult{
				{Title: "Routers in Go", URL: "https://example.com/routers", Content: "..."},
			},
		})
	}))
	defer api.Close()

	p := NewProvider(NewTavilyClient("key-123", api.URL), nil)
	result, err := p.CallTool(context.Background(), "web_search",
		json.RawMessage(`{"query":"golang routers","max_results":3}`))

	require.NoError(t, err, "A successful search should not be a provider error.")
	require.False(t, result.IsError, "A successful search should not be flagged as an error.")
	require.Len(t, result.Content, 1, "The result should carry one content part.")
	assert.Contains(t, result.Content[0].Text, "Use a mux.", "The answer should be in the serialized response.")
	assert.Contains(t, result.Content[0].Text, "https://example.com/routers", "The result URLs should be included.")
}

func TestProvider_WebSearch_APIFailureIsInBandError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer api.Close()

	p := NewProvider(NewTavilyClient("key", api.URL), nil)
	result, err := p.CallTool(context.Background(), "web_search", json.RawMessage(`{"query":"x"}`))

	require.NoError(t, err, "An upstream failure should be reported in band, not as a provider error.")
	assert.True(t, result.IsError, "An upstream failure should be flagged as an error result.")
	assert.Contains(t, result.Content[0].Text, "Search failed", "The message should describe the failure.")
}

func TestProvider_WebSearch_MissingQueryIsInBandError(t *testing.T) {
	p := NewProvider(NewTavilyClient("key", ""), nil)

	result, err := p.CallTool(context.Background(), "web_search", json.RawMessage(`{}`))
	require.NoError(t, err, "A missing parameter should be reported in band.")
	assert.True(t, result.IsError, "A missing parameter should be flagged as an error result.")
	assert.Contains(t, result.Content[0].Text, "query", "The message should name the missing parameter.")
}

func TestProvider_WebSearch_UnconfiguredIsInBandError(t *testing.T) {
	p := NewProvider(nil, nil)

	result, err := p.CallTool(context.Background(), "web_search", json.RawMessage(`{"query":"x"}`))
	require.NoError(t, err, "Calling an unconfigured search should be reported in band.")
	assert.True(t, result.IsError, "Calling an unconfigured search should be flagged as an error result.")
}

func TestProvider_WebFetch_ReturnsStatusAndBody(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "SwissknifeMCP", "The fetch should identify itself.")
		_, _ = w.Write([]byte("hello page"))
	}))
	defer site.Close()

	p := NewProvider(nil, nil)
	result, err := p.CallTool(context.Background(), "web_fetch",
		json.RawMessage(`{"url":"`+site.URL+`"}`))

	require.NoError(t, err, "A successful fetch should not be a provider error.")
	require.False(t, result.IsError, "A successful fetch should not be flagged as an error.")
	assert.Contains(t, result.Content[0].Text, "Status: 200 OK", "The status line should be included.")
	assert.Contains(t, result.Content[0].Text, "hello page", "The body should be included.")
}

func TestProvider_WebFetch_TruncatesLargeBodies(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxFetchBytes*2)))
	}))
	defer site.Close()

	p := NewProvider(nil, nil)
	result, err := p.CallTool(context.Background(), "web_fetch",
		json.RawMessage(`{"url":"`+site.URL+`"}`))

	require.NoError(t, err, "A successful fetch should not be a provider error.")
	assert.Contains(t, result.Content[0].Text, "(truncated)", "An oversized body should be marked as truncated.")
	assert.Less(t, len(result.Content[0].Text), maxFetchBytes+200, "The returned text should be capped.")
}

func TestProvider_WebFetch_ConnectionFailureIsInBandError(t *testing.T) {
	p := NewProvider(nil, nil)

	result, err := p.CallTool(context.Background(), "web_fetch",
		json.RawMessage(`{"url":"http://127.0.0.1:1/nope"}`))
	require.NoError(t, err, "A connection failure should be reported in band.")
	assert.True(t, result.IsError, "A connection failure should be flagged as an error result.")
}

func TestProvider_CallTool_UnknownNameIsInBandError(t *testing.T) {
	p := NewProvider(nil, nil)

	result, err := p.CallTool(context.Background(), "web_teleport", nil)
	require.NoError(t, err, "An unknown tool name should be reported in band.")
	assert.True(t, result.IsError, "An unknown tool name should be flagged as an error result.")
}
