// Package router aggregates independent capability providers behind one
// uniform dispatch surface. Backend integrations implement one or more of
// the provider interfaces below; the router computes server capabilities
// from the registered set and routes each list/call/read/get operation to
// the provider that declared the requested name or URI.
package router

// file: internal/mcp/router/provider.go

import (
	"context"
	"encoding/json"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// ToolProvider is implemented by a backend integration that contributes
// callable tools. Tool names should be globally unique by convention;
// providers self-prefix them (e.g. "memory_store") since the router does
// not enforce uniqueness across providers.
//
// CallTool is only invoked for a name the provider declared in Tools(), so
// implementations need not defend against foreign names, but they must
// fail cleanly (never panic) if invoked incorrectly. Domain failures are
// reported inside the returned ToolResult with IsError set, never as a Go
// error; the error return is for handling failures around the call itself.
// Implementations must tolerate concurrent invocation.
type ToolProvider interface {
	// Name identifies the provider, used for logging and name prefixing.
	Name() string

	// Description summarizes the provider for diagnostics.
	Description() string

	// Tools returns the provider's declared tool definitions in a stable order.
	Tools() []mcptypes.Tool

	// CallTool executes the named tool with the given raw arguments.
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcptypes.ToolResult, error)
}

// ResourceProvider is implemented by a backend integration that contributes
// URI-addressed readable artifacts. Unlike tools, a failed read propagates
// as an error; ResourceContent has no failure flag.
// Implementations must tolerate concurrent invocation.
type ResourceProvider interface {
	// Name identifies the provider.
	Name() string

	// Resources returns the provider's declared resources in a stable order.
	Resources() []mcptypes.Resource

	// ReadResource reads the resource addressed by uri.
	ReadResource(ctx context.Context, uri string) (*mcptypes.ResourceContent, error)
}

// PromptProvider is implemented by a backend integration that contributes
// parameterized prompt templates. Like resources, a failed get propagates
// as an error.
// Implementations must tolerate concurrent invocation.
type PromptProvider interface {
	// Name identifies the provider.
	Name() string

	// Prompts returns the provider's declared prompts in a stable order.
	Prompts() []mcptypes.Prompt

	// GetPrompt renders the named prompt with the given arguments.
	GetPrompt(ctx context.Context, name string, arguments map[string]string) (*mcptypes.PromptContent, error)
}
