// file: internal/mcp/server_test.go
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/router"
	"github.com/alexchoi0/swissknife-mcp/internal/transport"
)

// echoToolProvider is a minimal tool provider for server round-trip tests.
type echoToolProvider struct{}

func (p *echoToolProvider) Name() string        { return "echo" }
func (p *echoToolProvider) Description() string { return "Echo test provider." }

func (p *echoToolProvider) Tools() []mcptypes.Tool {
	schemaDoc := json.RawMessage(`{
		"type": "object",
		"properties": {"text": {"type": "string"}},
		"required": ["text"]
	}`)
	return []mcptypes.Tool{
		mcptypes.NewTool("echo_say").WithDescription("Repeats its input.").WithSchema(schemaDoc),
	}
}

func (p *echoToolProvider) CallTool(_ context.Context, name string, args json.RawMessage) (*mcptypes.ToolResult, error) {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return mcptypes.ErrorResult("bad arguments"), nil
	}
	return mcptypes.TextResult("echo: " + parsed.Text), nil
}

// noteResourceProvider serves a single fixed resource.
type noteResourceProvider struct{}

func (p *noteResourceProvider) Name() string { return "notes" }

func (p *noteResourceProvider) Resources() []mcptypes.Resource {
	return []mcptypes.Resource{{URI: "note://greeting", Name: "Greeting", MimeType: "text/plain"}}
}

func (p *noteResourceProvider) ReadResource(_ context.Context, uri string) (*mcptypes.ResourceContent, error) {
	content := mcptypes.NewTextResource(uri, "text/plain", "hello")
	return &content, nil
}

// testClient drives a served session over the in-memory transport pair.
type testClient struct {
	t      *testing.T
	tr     transport.Transport
	nextID int64
}

func (c *testClient) call(method string, params any) *mcptypes.JSONRPCResponse {
	c.t.Helper()
	c.nextID++

	var rawParams json.RawMessage
	if params != nil {
		var err error
		rawParams, err = json.Marshal(params)
		require.NoError(c.t, err, "Marshaling request params should succeed.")
	}

	req := mcptypes.JSONRPCRequest{
		JSONRPC: mcptypes.JSONRPCVersion,
		ID:      mcptypes.NewNumberID(c.nextID),
		Method:  method,
		Params:  rawParams,
	}
	reqBytes, err := json.Marshal(req)
	require.NoError(c.t, err, "Marshaling the request should succeed.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(c.t, c.tr.WriteMessage(ctx, reqBytes), "Writing the request should succeed.")

	respBytes, err := c.tr.ReadMessage(ctx)
	require.NoError(c.t, err, "Reading the response should succeed.")

	var resp mcptypes.JSONRPCResponse
	require.NoError(c.t, json.Unmarshal(respBytes, &resp), "The response should be valid JSON-RPC.")
	assert.Equal(c.t, req.ID.String(), resp.ID.String(), "The response ID should match the request ID.")
	return &resp
}

func (c *testClient) notify(method string) {
	c.t.Helper()
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","method":%q}`, method)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(c.t, c.tr.WriteMessage(ctx, []byte(msg)), "Writing the notification should succeed.")
}

func (c *testClient) initialize() {
	c.t.Helper()
	resp := c.call("initialize", mcptypes.InitializeRequest{
		ProtocolVersion: mcptypes.ProtocolVersion,
		ClientInfo:      mcptypes.Implementation{Name: "test-client", Version: "0.0.1"},
	})
	require.Nil(c.t, resp.Error, "The initialize request should succeed.")
	c.notify("notifications/initialized")
}

// startTestServer serves a router over an in-memory pair and returns the
// client side.
func startTestServer(t *testing.T, rt *router.Router) *testClient {
	t.Helper()

	srv, err := NewServer(rt, nil, DefaultServerOptions(), nil)
	require.NoError(t, err, "Creating the server should succeed.")

	pair := transport.NewInMemoryTransportPair()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, pair.Server)
	}()

	t.Cleanup(func() {
		cancel()
		_ = pair.Client.Close()
		_ = pair.Server.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Server loop did not stop after shutdown.")
		}
	})

	return &testClient{t: t, tr: pair.Client}
}

func newTestRouter() *router.Router {
	rt := router.NewRouter("test-server", "1.0.0", nil)
	rt.AddToolProvider(&echoToolProvider{})
	rt.AddResourceProvider(&noteResourceProvider{})
	return rt
}

func TestServer_Initialize_ReturnsIdentityAndCapabilities(t *testing.T) {
	client := startTestServer(t, newTestRouter())

	resp := client.call("initialize", mcptypes.InitializeRequest{
		ProtocolVersion: mcptypes.ProtocolVersion,
		ClientInfo:      mcptypes.Implementation{Name: "test-client", Version: "0.0.1"},
	})
	require.Nil(t, resp.Error, "The initialize request should succeed.")

	var result mcptypes.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result), "The result should decode as an initialize result.")
	assert.Equal(t, mcptypes.ProtocolVersion, result.ProtocolVersion, "The server should echo its protocol version.")
	assert.Equal(t, "test-server", result.ServerInfo.Name, "The server identity should come from the router.")
	assert.NotNil(t, result.Capabilities.Tools, "Tool capability should be advertised with a tool provider present.")
	assert.NotNil(t, result.Capabilities.Resources, "Resource capability should be advertised with a resource provider present.")
	assert.Nil(t, result.Capabilities.Prompts, "Prompt capability should be absent without a prompt provider.")
}

func TestServer_RequestBeforeInitialize_IsRejected(t *testing.T) {
	client := startTestServer(t, newTestRouter())

	resp := client.call("tools/list", nil)
	require.NotNil(t, resp.Error, "Requests before the handshake should be rejected.")
	assert.Equal(t, mcptypes.CodeInvalidRequest, resp.Error.Code, "Out-of-order requests should be invalid-request errors.")
}

func TestServer_Ping_WorksBeforeInitialize(t *testing.T) {
	client := startTestServer(t, newTestRouter())

	resp := client.call("ping", nil)
	assert.Nil(t, resp.Error, "Ping should be allowed in any session state.")
	assert.JSONEq(t, `{}`, string(resp.Result), "Ping should return an empty object.")
}

func TestServer_ToolsCall_RoundTrips(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	listResp := client.call("tools/list", nil)
	require.Nil(t, listResp.Error, "Listing tools should succeed.")
	var listResult mcptypes.ListToolsResult
	require.NoError(t, json.Unmarshal(listResp.Result, &listResult), "The list result should decode.")
	require.Len(t, listResult.Tools, 1, "The echo provider's tool should be listed.")
	assert.Equal(t, "echo_say", listResult.Tools[0].Name, "The tool name should be prefixed by its provider.")

	callResp := client.call("tools/call", mcptypes.CallToolParams{
		Name:      "echo_say",
		Arguments: json.RawMessage(`{"text":"hi"}`),
	})
	require.Nil(t, callResp.Error, "Calling a known tool should succeed.")
	var result mcptypes.ToolResult
	require.NoError(t, json.Unmarshal(callResp.Result, &result), "The call result should decode.")
	require.Len(t, result.Content, 1, "The result should carry one content item.")
	assert.Equal(t, "echo: hi", result.Content[0].Text, "The tool output should round-trip.")
	assert.False(t, result.IsError, "A successful call should not be flagged as an error.")
}

func TestServer_ToolsCall_UnknownToolIsInBandError(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("tools/call", mcptypes.CallToolParams{Name: "no_such_tool"})
	require.Nil(t, resp.Error, "An unknown tool name should not be a protocol error.")

	var result mcptypes.ToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result), "The miss result should decode.")
	assert.True(t, result.IsError, "The miss should be flagged as an in-band error result.")
	require.Len(t, result.Content, 1, "The miss result should carry a message.")
	assert.Contains(t, result.Content[0].Text, "no_such_tool", "The message should name the missing tool.")
}

func TestServer_ToolsCall_SchemaViolationIsInBandError(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("tools/call", mcptypes.CallToolParams{
		Name:      "echo_say",
		Arguments: json.RawMessage(`{"text":42}`),
	})
	require.Nil(t, resp.Error, "A schema violation should not be a protocol error.")

	var result mcptypes.ToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result), "The validation result should decode.")
	assert.True(t, result.IsError, "A schema violation should come back as an in-band error result.")
	assert.Contains(t, result.Content[0].Text, "text", "The message should name the failing argument.")
}

func TestServer_ResourcesRead_RoundTrips(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("resources/read", mcptypes.ReadResourceParams{URI: "note://greeting"})
	require.Nil(t, resp.Error, "Reading a known resource should succeed.")

	var result mcptypes.ReadResourceResult
	require.NoError(t, json.Unmarshal(resp.Result, &result), "The read result should decode.")
	require.Len(t, result.Contents, 1, "The read should return one content entry.")
	require.NotNil(t, result.Contents[0].Text, "The content should be text.")
	assert.Equal(t, "hello", *result.Contents[0].Text, "The resource text should round-trip.")
}

func TestServer_ResourcesRead_UnknownURIIsProtocolError(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("resources/read", mcptypes.ReadResourceParams{URI: "note://missing"})
	require.NotNil(t, resp.Error, "An unknown resource URI should be a protocol error.")
	assert.Equal(t, mcptypes.CodeInvalidParams, resp.Error.Code, "A resource miss should map to invalid params.")
}

func TestServer_PromptsGet_UnknownNameIsProtocolError(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("prompts/get", mcptypes.GetPromptParams{Name: "missing"})
	require.NotNil(t, resp.Error, "An unknown prompt name should be a protocol error.")
	assert.Equal(t, mcptypes.CodeInvalidParams, resp.Error.Code, "A prompt miss should map to invalid params.")
}

func TestServer_UnknownMethod_IsMethodNotFound(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("tools/destroy", nil)
	require.NotNil(t, resp.Error, "An unknown method should be rejected.")
	assert.Equal(t, mcptypes.CodeMethodNotFound, resp.Error.Code, "An unknown method should be method-not-found.")
}

func TestServer_DoubleInitialize_IsRejected(t *testing.T) {
	client := startTestServer(t, newTestRouter())
	client.initialize()

	resp := client.call("initialize", mcptypes.InitializeRequest{
		ProtocolVersion: mcptypes.ProtocolVersion,
		ClientInfo:      mcptypes.Implementation{Name: "test-client", Version: "0.0.1"},
	})
	require.NotNil(t, resp.Error, "A second initialize should be rejected.")
	assert.Equal(t, mcptypes.CodeInvalidRequest, resp.Error.Code, "A repeated handshake should be an invalid request.")
}

func TestServer_SetLevel_ValidatesAndRecordsLevel(t *testing.T) {
	rt := newTestRouter()
	srv, err := NewServer(rt, nil, DefaultServerOptions(), nil)
	require.NoError(t, err, "Creating the server should succeed.")

	pair := transport.NewInMemoryTransportPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx, pair.Server) }()
	t.Cleanup(func() {
		_ = pair.Client.Close()
		_ = pair.Server.Close()
	})

	client := &testClient{t: t, tr: pair.Client}
	client.initialize()

	resp := client.call("logging/setLevel", mcptypes.SetLevelParams{Level: mcptypes.LogLevelWarning})
	require.Nil(t, resp.Error, "Setting a valid log level should succeed.")
	assert.Equal(t, mcptypes.LogLevelWarning, srv.MinLogLevel(), "The session log level should be recorded.")

	resp = client.call("logging/setLevel", mcptypes.SetLevelParams{Level: mcptypes.LogLevel("shouting")})
	require.NotNil(t, resp.Error, "An unknown log level should be rejected.")
	assert.Equal(t, mcptypes.CodeInvalidParams, resp.Error.Code, "An unknown level should be an invalid-params error.")
}

func TestServer_MalformedJSON_GetsParseErrorResponse(t *testing.T) {
	client := startTestServer(t, newTestRouter())

	ctx, cancelWrite := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelWrite()
	require.NoError(t, client.tr.WriteMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":`)),
		"Writing the malformed payload should succeed at the transport level.")

	respBytes, err := client.tr.ReadMessage(ctx)
	require.NoError(t, err, "The server should answer malformed JSON with an error response.")

	var resp mcptypes.JSONRPCResponse
	require.NoError(t, json.Unmarshal(respBytes, &resp), "The error response should be valid JSON-RPC.")
	require.NotNil(t, resp.Error, "The response should carry an error.")
	assert.Equal(t, mcptypes.CodeParseError, resp.Error.Code, "Malformed JSON should map to a parse error.")
}

func TestServer_Metrics_RecordsRequestsAndToolCalls(t *testing.T) {
	rt := newTestRouter()
	srv, err := NewServer(rt, nil, DefaultServerOptions(), nil)
	require.NoError(t, err, "Creating the server should succeed.")

	pair := transport.NewInMemoryTransportPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx, pair.Server) }()
	t.Cleanup(func() {
		_ = pair.Client.Close()
		_ = pair.Server.Close()
	})

	client := &testClient{t: t, tr: pair.Client}
	client.initialize()

	resp := client.call("tools/call", mcptypes.CallToolParams{
		Name:      "echo_say",
		Arguments: json.RawMessage(`{"text":"hi"}`),
	})
	require.Nil(t, resp.Error, "The tool call should succeed.")
	resp = client.call("tools/call", mcptypes.CallToolParams{
		Name:      "no_such_tool",
		Arguments: json.RawMessage(`{}`),
	})
	require.Nil(t, resp.Error, "An unknown tool should still produce a result.")

	snapshot := srv.Metrics()
	assert.GreaterOrEqual(t, snapshot.TotalRequests, 3, "Initialize and both tool calls should be counted.")
	assert.Equal(t, 1, snapshot.ToolCalls["echo_say"], "The known tool call should be counted.")
	assert.Equal(t, 1, snapshot.ToolErrors["no_such_tool"], "The unknown tool miss should count as an in-band error.")
	assert.Contains(t, snapshot.RequestLatencies, "tools/call", "Latency should be tracked per method.")
}
