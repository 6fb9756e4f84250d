// Package transport defines interfaces and implementations for sending and
// receiving framed MCP messages.
package transport

// file: internal/transport/stdio.go

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// StdioTransport frames messages as newline-delimited JSON over a reader
// and writer pair, conventionally stdin/stdout when the server is launched
// as a child process by an MCP client. Log output must go to stderr;
// stdout carries protocol bytes only.
type StdioTransport struct {
	reader *bufio.Scanner
	writer io.Writer
	closer func() error
	logger logging.Logger

	readMu  sync.Mutex
	writeMu sync.Mutex

	closeMu sync.RWMutex
	closed  bool
}

// NewStdioTransport creates a transport over os.Stdin and os.Stdout.
func NewStdioTransport(logger logging.Logger) *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout, logger)
}

// NewStreamTransport creates a newline-delimited transport over an
// arbitrary reader and writer, used by tests and the in-process client.
func NewStreamTransport(r io.Reader, w io.Writer, logger logging.Logger) *StdioTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)

	t := &StdioTransport{
		reader: scanner,
		writer: w,
		logger: logger.WithField("component", "stdio_transport"),
	}
	if c, ok := r.(io.Closer); ok {
		t.closer = c.Close
	}
	return t
}

// ReadMessage reads the next newline-delimited message. Empty lines are
// skipped. Context cancellation is checked between lines; a read blocked
// on the underlying stream unblocks when the stream closes.
func (t *StdioTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	for {
		if err := t.checkClosed("read"); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context canceled during read")
		default:
		}

		if !t.reader.Scan() {
			if err := t.reader.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return nil, NewMessageSizeError(MaxMessageSize+1, MaxMessageSize)
				}
				return nil, errors.Wrap(err, "reading message line")
			}
			return nil, io.EOF
		}

		line := t.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		// Copy out of the scanner's buffer before the next Scan reuses it.
		msg := make([]byte, len(line))
		copy(msg, line)

		if err := ValidateMessage(msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
}

// WriteMessage writes a message followed by a newline.
func (t *StdioTransport) WriteMessage(_ context.Context, message []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.checkClosed("write"); err != nil {
		return err
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize)
	}

	// Copy before framing; appending to the caller's slice could scribble
	// into its backing array.
	framed := make([]byte, 0, len(message)+1)
	framed = append(framed, message...)
	framed = append(framed, '\n')
	if _, err := t.writer.Write(framed); err != nil {
		return errors.Wrap(err, "writing message")
	}
	return nil
}

// Close marks the transport closed and closes the underlying reader when
// it supports closing, which unblocks a pending Scan.
func (t *StdioTransport) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.logger.Debug("Stdio transport closed.")
	if t.closer != nil {
		return t.closer()
	}
	return nil
}

func (t *StdioTransport) checkClosed(operation string) error {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	if t.closed {
		return NewClosedError(operation)
	}
	return nil
}
