// Package memory provides persistent note storage backed by SQLite.
package memory

// file: internal/providers/memory/provider.go

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// recentURI is the resource listing the newest stored memories.
const recentURI = "memory://recent"

// recentLimit bounds the recent-memories resource.
const recentLimit = 20

// Provider exposes the memory store as MCP tools and a resource. It
// implements both the tool and resource provider interfaces.
type Provider struct {
	store  *Store
	logger logging.Logger
}

// NewProvider creates the memory provider over store.
func NewProvider(store *Store, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Provider{
		store:  store,
		logger: logger.WithField("component", "memory_provider"),
	}
}

// Name returns the provider's tool name prefix.
func (p *Provider) Name() string { return "memory" }

// Description describes the provider for diagnostics.
func (p *Provider) Description() string {
	return "Persistent memory storage and retrieval."
}

// Tools lists the memory tools.
func (p *Provider) Tools() []mcptypes.Tool {
	storeSchema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string", "description": "The text to remember"},
			"tags": {"type": "array", "items": {"type": "string"}, "description": "Optional tags for later retrieval"}
		},
		"required": ["content"]
	}`)
	searchSchema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Text to search for in content and tags"},
			"limit": {"type": "integer", "description": "Maximum number of results"}
		},
		"required": ["query"]
	}`)
	deleteSchema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "The memory ID to delete"}
		},
		"required": ["id"]
	}`)

	return []mcptypes.Tool{
		mcptypes.NewTool("memory_store").
			WithDescription("Store a piece of text for later recall").
			WithSchema(storeSchema),
		mcptypes.NewTool("memory_search").
			WithDescription("Search stored memories by content or tag").
			WithSchema(searchSchema),
		mcptypes.NewTool("memory_delete").
			WithDescription("Delete a stored memory by ID").
			WithSchema(deleteSchema),
	}
}

// CallTool dispatches one of the memory tools.
func (p *Provider) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcptypes.ToolResult, error) {
	switch name {
	case "memory_store":
		return p.callStore(ctx, args)
	case "memory_search":
		return p.callSearch(ctx, args)
	case "memory_delete":
		return p.callDelete(ctx, args)
	default:
		return mcptypes.ErrorResult(fmt.Sprintf("Tool not found: %s", name)), nil
	}
}

func (p *Provider) callStore(ctx context.Context, args json.RawMessage) (*mcptypes.ToolResult, error) {
	var params struct {
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal(args, &params); err != nil || params.Content == "" {
		return mcptypes.ErrorResult("Missing required parameter: content"), nil
	}

	record, err := p.store.Save(ctx, params.Content, params.Tags)
	if err != nil {
		return nil, mcperrors.NewProviderError("storing memory", err)
	}

	p.logger.Debug("Memory stored.", "id", record.ID)
	return mcptypes.JSONResult(record), nil
}

func (p *Provider) callSearch(ctx context.Context, args json.RawMessage) (*mcptypes.ToolResult, error) {
	var params struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &params); err != nil || params.Query == "" {
		return mcptypes.ErrorResult("Missing required parameter: query"), nil
	}

	records, err := p.store.Search(ctx, params.Query, params.Limit)
	if err != nil {
		return nil, mcperrors.NewProviderError("searching memories", err)
	}
	if len(records) == 0 {
		return mcptypes.TextResult("No memories matched the query."), nil
	}
	return mcptypes.JSONResult(records), nil
}

func (p *Provider) callDelete(ctx context.Context, args json.RawMessage) (*mcptypes.ToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(args, &params); err != nil || params.ID == "" {
		return mcptypes.ErrorResult("Missing required parameter: id"), nil
	}

	deleted, err := p.store.Delete(ctx, params.ID)
	if err != nil {
		return nil, mcperrors.NewProviderError("deleting memory", err)
	}
	if !deleted {
		return mcptypes.ErrorResult(fmt.Sprintf("No memory found with ID: %s", params.ID)), nil
	}
	return mcptypes.TextResult(fmt.Sprintf("Deleted memory %s.", params.ID)), nil
}

// Resources lists the recent-memories resource.
func (p *Provider) Resources() []mcptypes.Resource {
	return []mcptypes.Resource{{
		URI:         recentURI,
		Name:        "Recent memories",
		Description: "The most recently stored memories, newest first.",
		MimeType:    "application/json",
	}}
}

// ReadResource serves the recent-memories resource.
func (p *Provider) ReadResource(ctx context.Context, uri string) (*mcptypes.ResourceContent, error) {
	if uri != recentURI {
		return nil, mcperrors.NewResourceNotFoundError(uri)
	}

	records, err := p.store.Recent(ctx, recentLimit)
	if err != nil {
		return nil, mcperrors.NewProviderError("reading recent memories", err)
	}
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, mcperrors.NewProviderError("encoding recent memories", err)
	}
	content := mcptypes.NewTextResource(recentURI, "application/json", string(data))
	return &content, nil
}
