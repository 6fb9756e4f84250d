// Package mcptypes defines the shared protocol data model for the MCP server.
package mcptypes

// file: internal/mcp/mcptypes/content.go

import (
	"encoding/json"
)

// Content type discriminators shared by the tool and prompt vocabularies.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// ToolContent is one part of a tool result: either text or a base64 image.
// The Type field discriminates; only the fields belonging to that type are
// serialized.
type ToolContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// NewTextContent creates a text tool content part.
func NewTextContent(text string) ToolContent {
	return ToolContent{Type: ContentTypeText, Text: text}
}

// NewImageContent creates an image tool content part from base64 data.
func NewImageContent(data, mimeType string) ToolContent {
	return ToolContent{Type: ContentTypeImage, Data: data, MimeType: mimeType}
}

// ToolResult is the outcome of a tool call. IsError marks a domain failure
// and is always delivered inside a structurally successful response; tool
// failures never surface as JSON-RPC errors.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// TextResult builds a successful single-text-part tool result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ToolContent{NewTextContent(text)}}
}

// JSONResult builds a successful tool result whose single text part holds
// the pretty-printed serialization of value. A value that cannot be
// serialized degrades to an empty text part rather than failing the call.
func JSONResult(value any) *ToolResult {
	text, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		text = nil
	}
	return TextResult(string(text))
}

// ErrorResult builds a domain-failure tool result carrying the message as text.
func ErrorResult(message string) *ToolResult {
	return &ToolResult{
		Content: []ToolContent{NewTextContent(message)},
		IsError: true,
	}
}

// ImageResult builds a successful single-image-part tool result.
func ImageResult(data, mimeType string) *ToolResult {
	return &ToolResult{Content: []ToolContent{NewImageContent(data, mimeType)}}
}

// ResourceContent is the content of one resource read. A well-formed value
// carries exactly one of Text and Blob (base64), never both, never neither.
// The fields are pointers so an empty payload still serializes; an empty
// text file reads as "text":"", not as an absent field.
type ResourceContent struct {
	URI      string  `json:"uri"`
	MimeType string  `json:"mimeType,omitempty"`
	Text     *string `json:"text,omitempty"`
	Blob     *string `json:"blob,omitempty"`
}

// NewTextResource creates a text resource content value.
func NewTextResource(uri, mimeType, text string) ResourceContent {
	return ResourceContent{URI: uri, MimeType: mimeType, Text: &text}
}

// NewBlobResource creates a binary resource content value from base64 data.
func NewBlobResource(uri, mimeType, blob string) ResourceContent {
	return ResourceContent{URI: uri, MimeType: mimeType, Blob: &blob}
}

// PromptRole identifies the speaker of a prompt message.
type PromptRole string

// Prompt message roles.
const (
	RoleUser      PromptRole = "user"
	RoleAssistant PromptRole = "assistant"
)

// PromptMessageContent is one content part of a prompt message. It is
// structurally parallel to ToolContent but kept as a distinct type so the
// two vocabularies can evolve independently.
type PromptMessageContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// NewPromptText creates a text prompt content part.
func NewPromptText(text string) PromptMessageContent {
	return PromptMessageContent{Type: ContentTypeText, Text: text}
}

// PromptMessage is one message of a rendered prompt.
type PromptMessage struct {
	Role    PromptRole           `json:"role"`
	Content PromptMessageContent `json:"content"`
}

// NewUserMessage creates a user-role text message.
func NewUserMessage(text string) PromptMessage {
	return PromptMessage{Role: RoleUser, Content: NewPromptText(text)}
}

// NewAssistantMessage creates an assistant-role text message.
func NewAssistantMessage(text string) PromptMessage {
	return PromptMessage{Role: RoleAssistant, Content: NewPromptText(text)}
}

// PromptContent is the rendered form of a prompt: an optional description
// plus the ordered message list.
type PromptContent struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}
