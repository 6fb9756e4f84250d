// Package mcptypes defines the shared protocol data model for the MCP server.
package mcptypes

// file: internal/mcp/mcptypes/types.go

import (
	"encoding/json"
)

// ProtocolVersion is the protocol revision this server implements. The
// initialize handshake always answers with this constant; no version
// negotiation is performed.
const ProtocolVersion = "2024-11-05"

// Implementation describes the name and version of an MCP client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities describes optional protocol features supported by the client.
type ClientCapabilities struct {
	Roots    *RootsCapability    `json:"roots,omitempty"`
	Sampling *SamplingCapability `json:"sampling,omitempty"`
}

// RootsCapability indicates client support for filesystem roots.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability indicates client support for LLM sampling requests.
type SamplingCapability struct{}

// ServerCapabilities describes optional protocol features supported by the
// server. Each sub-capability is present only when at least one provider of
// the corresponding kind is registered; Logging is always advertised.
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
	Logging   *LoggingCapability   `json:"logging,omitempty"`
}

// ToolsCapability indicates server support for tools.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability indicates server support for resources.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability indicates server support for prompts.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability indicates server support for log-level control.
type LoggingCapability struct{}

// InitializeRequest carries the parameters of the 'initialize' request.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

// InitializeResult is the successful result of an 'initialize' request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// Tool describes a named, schema-described callable capability.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// DefaultInputSchema is the schema a tool gets when none is declared.
var DefaultInputSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// NewTool creates a tool definition with the default (empty object) schema.
func NewTool(name string) Tool {
	return Tool{Name: name, InputSchema: DefaultInputSchema}
}

// WithDescription returns a copy of the tool with the description set.
func (t Tool) WithDescription(description string) Tool {
	t.Description = description
	return t
}

// WithSchema returns a copy of the tool with the input schema set.
func (t Tool) WithSchema(schema json.RawMessage) Tool {
	t.InputSchema = schema
	return t
}

// ListToolsResult is the result of a 'tools/list' request. NextCursor is
// part of the wire shape but is never populated by the router; pagination,
// if any, belongs to the caller.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolParams carries the parameters of a 'tools/call' request.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Resource describes a named, URI-addressed readable artifact.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult is the result of a 'resources/list' request.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ReadResourceParams carries the parameters of a 'resources/read' request.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ReadResourceResult is the result of a 'resources/read' request.
type ReadResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}

// Prompt describes a named, parameterized message template.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument describes one parameter accepted by a prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ListPromptsResult is the result of a 'prompts/list' request.
type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// GetPromptParams carries the parameters of a 'prompts/get' request.
type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// SetLevelParams carries the parameters of a 'logging/setLevel' request.
type SetLevelParams struct {
	Level LogLevel `json:"level"`
}

// LogLevel is one of the eight syslog-style severities. The router carries
// it as an opaque serializable value and does not interpret it.
type LogLevel string

// Log severities in ascending order.
const (
	LogLevelDebug     LogLevel = "debug"
	LogLevelInfo      LogLevel = "info"
	LogLevelNotice    LogLevel = "notice"
	LogLevelWarning   LogLevel = "warning"
	LogLevelError     LogLevel = "error"
	LogLevelCritical  LogLevel = "critical"
	LogLevelAlert     LogLevel = "alert"
	LogLevelEmergency LogLevel = "emergency"
)

// Valid reports whether the level is one of the eight defined severities.
func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelNotice, LogLevelWarning,
		LogLevelError, LogLevelCritical, LogLevelAlert, LogLevelEmergency:
		return true
	}
	return false
}
