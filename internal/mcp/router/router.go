// Package router aggregates independent capability providers behind one
// uniform dispatch surface.
package router

// file: internal/mcp/router/router.go

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// Router owns three ordered provider collections and dispatches capability
// operations across them. Dispatch re-derives ownership from each
// provider's own declared list on every call; there is no separate routing
// table to drift out of sync.
//
// The provider lists are the router's only state. Reads during dispatch
// take a shared lock; registration takes an exclusive lock, so providers
// may be added while the server is live and the next Capabilities() call
// reflects them.
type Router struct {
	name         string
	version      string
	instructions string

	mu                sync.RWMutex
	toolProviders     []ToolProvider
	resourceProviders []ResourceProvider
	promptProviders   []PromptProvider

	logger logging.Logger
}

// NewRouter creates an empty router identified by the given server name and
// version. A nil logger falls back to the no-op logger.
func NewRouter(name, version string, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Router{
		name:    name,
		version: version,
		logger:  logger.WithField("component", "mcp_router"),
	}
}

// WithInstructions sets the optional instructions text returned from the
// initialize handshake and returns the router for chaining.
func (r *Router) WithInstructions(instructions string) *Router {
	r.instructions = instructions
	return r
}

// AddToolProvider appends a tool provider. This is the canonical
// registration primitive; WithToolProvider is a thin wrapper around it.
func (r *Router) AddToolProvider(p ToolProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolProviders = append(r.toolProviders, p)
	r.logger.Debug("Registered tool provider.", "provider", p.Name())
}

// AddResourceProvider appends a resource provider.
func (r *Router) AddResourceProvider(p ResourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resourceProviders = append(r.resourceProviders, p)
	r.logger.Debug("Registered resource provider.", "provider", p.Name())
}

// AddPromptProvider appends a prompt provider.
func (r *Router) AddPromptProvider(p PromptProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptProviders = append(r.promptProviders, p)
	r.logger.Debug("Registered prompt provider.", "provider", p.Name())
}

// WithToolProvider registers a tool provider and returns the router,
// enabling builder-style composition.
func (r *Router) WithToolProvider(p ToolProvider) *Router {
	r.AddToolProvider(p)
	return r
}

// WithResourceProvider registers a resource provider and returns the router.
func (r *Router) WithResourceProvider(p ResourceProvider) *Router {
	r.AddResourceProvider(p)
	return r
}

// WithPromptProvider registers a prompt provider and returns the router.
func (r *Router) WithPromptProvider(p PromptProvider) *Router {
	r.AddPromptProvider(p)
	return r
}

// ServerInfo returns the server's name and version.
func (r *Router) ServerInfo() mcptypes.Implementation {
	return mcptypes.Implementation{Name: r.name, Version: r.version}
}

// Instructions returns the optional instructions text, empty when unset.
func (r *Router) Instructions() string {
	return r.instructions
}

// Capabilities computes the server capabilities from the current provider
// lists. It is recomputed on every call rather than cached, so a provider
// registered after construction is advertised immediately. Each capability
// kind is present iff at least one provider of that kind is registered;
// logging is always advertised.
func (r *Router) Capabilities() mcptypes.ServerCapabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := mcptypes.ServerCapabilities{
		Logging: &mcptypes.LoggingCapability{},
	}
	if len(r.toolProviders) > 0 {
		caps.Tools = &mcptypes.ToolsCapability{ListChanged: true}
	}
	if len(r.resourceProviders) > 0 {
		caps.Resources = &mcptypes.ResourcesCapability{ListChanged: true}
	}
	if len(r.promptProviders) > 0 {
		caps.Prompts = &mcptypes.PromptsCapability{ListChanged: true}
	}
	return caps
}

// ListTools concatenates every registered provider's declared tools, in
// provider-registration order and then each provider's own declaration
// order. Colliding names across providers are not deduplicated; callers
// are expected to self-prefix.
func (r *Router) ListTools() []mcptypes.Tool {
	tools := make([]mcptypes.Tool, 0)
	for _, p := range r.snapshotToolProviders() {
		tools = append(tools, p.Tools()...)
	}
	return tools
}

// CallTool dispatches a tool call to the first provider that declares the
// name and returns that provider's result verbatim, including its IsError
// flag. An unknown name is a soft miss: the call itself succeeds and the
// failure travels as an IsError result, so a model that invented a tool
// name receives ordinary text it can react to.
func (r *Router) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcptypes.ToolResult, error) {
	for _, p := range r.snapshotToolProviders() {
		for _, tool := range p.Tools() {
			if tool.Name == name {
				r.logger.Debug("Dispatching tool call.", "tool", name, "provider", p.Name())
				return p.CallTool(ctx, name, arguments)
			}
		}
	}

	r.logger.Warn("Tool call for undeclared name.", "tool", name)
	return mcptypes.ErrorResult(fmt.Sprintf("Tool not found: %s", name)), nil
}

// ListResources concatenates every registered provider's declared resources.
func (r *Router) ListResources() []mcptypes.Resource {
	resources := make([]mcptypes.Resource, 0)
	for _, p := range r.snapshotResourceProviders() {
		resources = append(resources, p.Resources()...)
	}
	return resources
}

// ReadResource dispatches a read to the first provider declaring a resource
// whose URI matches exactly or is a prefix of the requested URI (providers
// may declare a URI root and serve a subtree under it). An unknown URI is a
// hard miss: the call fails, and the transport boundary translates the
// failure into a JSON-RPC error. There is no soft-failure flag on
// ResourceContent; resources are referenced by static identifiers, so a
// miss is a caller bug rather than something to adapt to.
func (r *Router) ReadResource(ctx context.Context, uri string) (*mcptypes.ResourceContent, error) {
	for _, p := range r.snapshotResourceProviders() {
		for _, res := range p.Resources() {
			if res.URI == uri || hasURIPrefix(uri, res.URI) {
				r.logger.Debug("Dispatching resource read.", "uri", uri, "provider", p.Name())
				return p.ReadResource(ctx, uri)
			}
		}
	}

	r.logger.Warn("Resource read for undeclared uri.", "uri", uri)
	return nil, mcperrors.NewResourceNotFoundError(uri)
}

// ListPrompts concatenates every registered provider's declared prompts.
func (r *Router) ListPrompts() []mcptypes.Prompt {
	prompts := make([]mcptypes.Prompt, 0)
	for _, p := range r.snapshotPromptProviders() {
		prompts = append(prompts, p.Prompts()...)
	}
	return prompts
}

// GetPrompt dispatches to the first provider declaring the prompt name.
// Like resources and unlike tools, a miss is a hard failure.
func (r *Router) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*mcptypes.PromptContent, error) {
	for _, p := range r.snapshotPromptProviders() {
		for _, prompt := range p.Prompts() {
			if prompt.Name == name {
				r.logger.Debug("Dispatching prompt get.", "prompt", name, "provider", p.Name())
				return p.GetPrompt(ctx, name, arguments)
			}
		}
	}

	r.logger.Warn("Prompt get for undeclared name.", "prompt", name)
	return nil, mcperrors.NewPromptNotFoundError(name)
}

// snapshotToolProviders copies the provider slice under the read lock so
// dispatch can proceed without holding it across provider calls.
func (r *Router) snapshotToolProviders() []ToolProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolProvider, len(r.toolProviders))
	copy(out, r.toolProviders)
	return out
}

func (r *Router) snapshotResourceProviders() []ResourceProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResourceProvider, len(r.resourceProviders))
	copy(out, r.resourceProviders)
	return out
}

func (r *Router) snapshotPromptProviders() []PromptProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PromptProvider, len(r.promptProviders))
	copy(out, r.promptProviders)
	return out
}

// hasURIPrefix reports whether uri lives under the declared root URI.
func hasURIPrefix(uri, root string) bool {
	return len(uri) > len(root) && uri[:len(root)] == root
}
