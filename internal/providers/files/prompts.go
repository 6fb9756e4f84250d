// Package files exposes a directory tree as MCP resources.
package files

// file: internal/providers/files/prompts.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// Prompts lists the file-oriented prompt templates.
func (p *Provider) Prompts() []mcptypes.Prompt {
	return []mcptypes.Prompt{
		{
			Name:        "files_summarize",
			Description: "Summarize the contents of a file under the served root.",
			Arguments: []mcptypes.PromptArgument{
				{Name: "path", Description: "Root-relative path of the file to summarize", Required: true},
			},
		},
		{
			Name:        "files_code_review",
			Description: "Review a source file and point out problems.",
			Arguments: []mcptypes.PromptArgument{
				{Name: "path", Description: "Root-relative path of the file to review", Required: true},
				{Name: "focus", Description: "Optional aspect to focus on, e.g. concurrency or error handling"},
			},
		},
	}
}

// GetPrompt expands one of the file prompts. The named file is inlined
// into the prompt text so the client needs no follow-up resource read.
func (p *Provider) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*mcptypes.PromptContent, error) {
	switch name {
	case "files_summarize", "files_code_review":
	default:
		return nil, mcperrors.NewPromptNotFoundError(name)
	}

	path := arguments["path"]
	if path == "" {
		return nil, mcperrors.NewInvalidParamsError("prompt argument 'path' is required", nil)
	}

	content, err := p.ReadResource(ctx, uriScheme+strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, err
	}
	if content.Text == nil {
		return nil, mcperrors.NewInvalidParamsError(fmt.Sprintf("file %q is not text and cannot be used in a prompt", path), nil)
	}

	switch name {
	case "files_summarize":
		return &mcptypes.PromptContent{
			Description: fmt.Sprintf("Summarize %s", path),
			Messages: []mcptypes.PromptMessage{
				mcptypes.NewUserMessage(fmt.Sprintf(
					"Summarize the following file (%s). Keep the summary short and factual.\n\n%s",
					path, *content.Text)),
			},
		}, nil
	default:
		instruction := fmt.Sprintf("Review the following source file (%s) and point out bugs, risky patterns, and unclear code.", path)
		if focus := arguments["focus"]; focus != "" {
			instruction += fmt.Sprintf(" Focus on %s.", focus)
		}
		return &mcptypes.PromptContent{
			Description: fmt.Sprintf("Code review of %s", path),
			Messages: []mcptypes.PromptMessage{
				mcptypes.NewUserMessage(instruction + "\n\n" + *content.Text),
			},
		}, nil
	}
}
