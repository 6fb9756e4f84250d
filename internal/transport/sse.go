// Package transport defines interfaces and implementations for sending and
// receiving framed MCP messages.
package transport

// file: internal/transport/sse.go

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// SSEServerTransport carries MCP messages over HTTP: the client opens a GET
// stream that is upgraded to Server-Sent Events for server-to-client
// messages, and POSTs client-to-server messages to the endpoint URL
// announced on that stream. One downstream session is active at a time; a
// second subscriber is rejected until the first disconnects.
type SSEServerTransport struct {
	addr   string
	logger logging.Logger

	incoming chan []byte
	server   *http.Server

	mu        sync.Mutex
	session   *sse.Session
	sessionID string

	closeOnce sync.Once
	done      chan struct{}
}

// NewSSEServerTransport creates an SSE transport listening on addr.
// Call Start before using ReadMessage/WriteMessage.
func NewSSEServerTransport(addr string, logger logging.Logger) *SSEServerTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &SSEServerTransport{
		addr:     addr,
		logger:   logger.WithField("component", "sse_transport"),
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// Start begins serving the SSE and message endpoints. It returns once the
// listener is running; serve errors after startup are logged.
func (t *SSEServerTransport) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sse", t.handleSubscribe)
	mux.HandleFunc("POST /message", t.handleMessage)

	t.server = &http.Server{
		Addr:              t.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("SSE server stopped.", "error", err)
			errCh <- err
		}
	}()

	// Give an immediate bind failure a moment to surface.
	select {
	case err := <-errCh:
		return errors.Wrapf(err, "starting SSE server on %s", t.addr)
	case <-time.After(100 * time.Millisecond):
		t.logger.Info("SSE transport listening.", "addr", t.addr)
		return nil
	}
}

// handleSubscribe upgrades the connection to an SSE stream, announces the
// message endpoint for this session, and holds the connection open.
func (t *SSEServerTransport) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	t.mu.Lock()
	if t.session != nil {
		t.mu.Unlock()
		http.Error(w, "session already active", http.StatusConflict)
		return
	}

	session, err := sse.Upgrade(w, r)
	if err != nil {
		t.mu.Unlock()
		http.Error(w, "failed to upgrade to SSE", http.StatusInternalServerError)
		return
	}

	sessionID := uuid.New().String()
	t.session = session
	t.sessionID = sessionID
	t.mu.Unlock()

	t.logger.Info("SSE session established.", "session", sessionID)

	endpoint := sse.Message{Type: sse.Type("endpoint")}
	endpoint.AppendData("/message?sessionID=" + sessionID)
	if err := session.Send(&endpoint); err == nil {
		err = session.Flush()
	}
	if err != nil {
		t.logger.Error("Failed to announce message endpoint.", "error", err)
		t.dropSession(sessionID)
		return
	}

	select {
	case <-r.Context().Done():
	case <-t.done:
	}
	t.dropSession(sessionID)
	t.logger.Info("SSE session ended.", "session", sessionID)
}

// handleMessage accepts one client-to-server message for the active session.
func (t *SSEServerTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	t.mu.Lock()
	activeID := t.sessionID
	t.mu.Unlock()

	if activeID == "" || r.URL.Query().Get("sessionID") != activeID {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxMessageSize+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if err := ValidateMessage(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case t.incoming <- body:
		w.WriteHeader(http.StatusAccepted)
	case <-t.done:
		http.Error(w, "transport closed", http.StatusServiceUnavailable)
	}
}

// ReadMessage returns the next message POSTed by the client.
func (t *SSEServerTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "context canceled during read")
	case <-t.done:
		return nil, NewClosedError("read")
	case msg := <-t.incoming:
		return msg, nil
	}
}

// WriteMessage pushes a message down the active SSE stream.
func (t *SSEServerTransport) WriteMessage(_ context.Context, message []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.done:
		return NewClosedError("write")
	default:
	}
	if t.session == nil {
		return NewError(ErrGeneric, "no active SSE session", nil)
	}

	msg := sse.Message{Type: sse.Type("message")}
	msg.AppendData(string(message))
	if err := t.session.Send(&msg); err != nil {
		return errors.Wrap(err, "sending SSE message")
	}
	if err := t.session.Flush(); err != nil {
		return errors.Wrap(err, "flushing SSE message")
	}
	return nil
}

// Close shuts down the HTTP server and ends the active session.
func (t *SSEServerTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if t.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = t.server.Shutdown(ctx)
		}
	})
	return err
}

// dropSession clears the active session if it still matches sessionID.
func (t *SSEServerTransport) dropSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == sessionID {
		t.session = nil
		t.sessionID = ""
	}
}
