// Command server runs the swissknife MCP server.
package main

// file: cmd/server/run.go

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/config"
	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/router"
	"github.com/alexchoi0/swissknife-mcp/internal/providers/files"
	"github.com/alexchoi0/swissknife-mcp/internal/providers/memory"
	"github.com/alexchoi0/swissknife-mcp/internal/providers/websearch"
	"github.com/alexchoi0/swissknife-mcp/internal/schema"
	"github.com/alexchoi0/swissknife-mcp/internal/secrets"
	"github.com/alexchoi0/swissknife-mcp/internal/transport"
)

// tavilyKeyName is the secret-store key holding the search API key.
const tavilyKeyName = "tavily_api_key"

// runServer wires the configured providers into a router and serves one
// session over the configured transport.
func runServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	rt, cleanup, err := buildRouter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := mcp.NewServer(rt, schema.NewValidator(logger), mcp.DefaultServerOptions(), logger)
	if err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case "stdio":
		logger.Info("Serving MCP over stdio.", "server", cfg.Server.Name, "version", cfg.Server.Version)
		t := transport.NewStdioTransport(logger)
		defer func() { _ = t.Close() }()
		return serveUntilDone(ctx, srv, t)
	case "sse":
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		t := transport.NewSSEServerTransport(addr, logger)
		if err := t.Start(); err != nil {
			return err
		}
		defer func() { _ = t.Close() }()
		logger.Info("Serving MCP over SSE.", "addr", addr, "server", cfg.Server.Name)
		return serveUntilDone(ctx, srv, t)
	default:
		return errors.Newf("unsupported transport %q", cfg.Server.Transport)
	}
}

// serveUntilDone runs the server loop and treats context cancellation as a
// clean shutdown.
func serveUntilDone(ctx context.Context, srv *mcp.Server, t transport.Transport) error {
	err := srv.Serve(ctx, t)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// buildRouter assembles the router from the enabled providers. The
// returned cleanup releases provider resources.
func buildRouter(ctx context.Context, cfg *config.Config, logger logging.Logger) (*router.Router, func(), error) {
	rt := router.NewRouter(cfg.Server.Name, cfg.Server.Version, logger)
	if cfg.Server.Instructions != "" {
		rt.WithInstructions(cfg.Server.Instructions)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Providers.WebSearch.Enabled {
		apiKey, err := resolveSearchKey(cfg, logger)
		if err != nil {
			logger.Warn("Could not resolve search API key; web search disabled.", "error", err)
		}
		var client *websearch.TavilyClient
		if apiKey != "" {
			client = websearch.NewTavilyClient(apiKey, cfg.Providers.WebSearch.BaseURL)
		}
		rt.AddToolProvider(websearch.NewProvider(client, logger))
	}

	if cfg.Providers.Memory.Enabled {
		dbPath, err := config.ExpandPath(cfg.Providers.Memory.DBPath)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store, err := memory.NewStore(dbPath, logger)
		if err != nil {
			cleanup()
			return nil, nil, errors.Wrap(err, "opening memory store")
		}
		cleanups = append(cleanups, func() { _ = store.Close() })

		provider := memory.NewProvider(store, logger)
		rt.AddToolProvider(provider)
		rt.AddResourceProvider(provider)
	}

	if cfg.Providers.Files.Enabled {
		root, err := config.ExpandPath(cfg.Providers.Files.Root)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		provider, err := files.NewProvider(root, cfg.Providers.Files.Ignore, logger)
		if err != nil {
			cleanup()
			return nil, nil, errors.Wrap(err, "creating files provider")
		}
		if err := provider.Start(ctx); err != nil {
			logger.Warn("File change watching unavailable; listings will walk the tree.", "error", err)
		} else {
			cleanups = append(cleanups, func() { _ = provider.Close() })
		}
		rt.AddResourceProvider(provider)
		rt.AddPromptProvider(provider)
	}

	return rt, cleanup, nil
}

// resolveSearchKey finds the search API key: config and environment first,
// then the secret store.
func resolveSearchKey(cfg *config.Config, logger logging.Logger) (string, error) {
	if cfg.Providers.WebSearch.APIKey != "" {
		return cfg.Providers.WebSearch.APIKey, nil
	}

	fallbackPath, err := config.ExpandPath(cfg.Secrets.FallbackPath)
	if err != nil {
		return "", err
	}
	store, err := secrets.NewStore(fallbackPath, logger)
	if err != nil {
		return "", err
	}
	return store.Get(tavilyKeyName)
}
