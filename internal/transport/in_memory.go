// Package transport defines interfaces and implementations for sending and
// receiving framed MCP messages.
package transport

// file: internal/transport/in_memory.go

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// InMemoryTransport implements Transport over in-memory channels. It exists
// for tests: two linked instances talk to each other without real I/O.
type InMemoryTransport struct {
	incoming chan []byte
	outgoing chan []byte

	closeMu sync.RWMutex
	closed  bool
}

// InMemoryTransportPair is a pair of linked in-memory transports; a message
// written to one side is read from the other.
type InMemoryTransportPair struct {
	Client *InMemoryTransport
	Server *InMemoryTransport
}

// NewInMemoryTransportPair creates a linked transport pair with buffered
// channels so tests do not block on unread traffic.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)

	return &InMemoryTransportPair{
		Client: &InMemoryTransport{incoming: serverToClient, outgoing: clientToServer},
		Server: &InMemoryTransport{incoming: clientToServer, outgoing: serverToClient},
	}
}

// ReadMessage reads the next message from the paired transport.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if err := t.checkClosed("read"); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "context canceled during read")
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, NewClosedError("read")
		}
		if err := ValidateMessage(msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
}

// WriteMessage sends a message to the paired transport.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	if err := t.checkClosed("write"); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "context canceled during write")
	case t.outgoing <- message:
		return nil
	}
}

// Close marks the transport closed and closes its outgoing channel so the
// paired side's reads unblock.
func (t *InMemoryTransport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.outgoing)
	return nil
}

func (t *InMemoryTransport) checkClosed(operation string) error {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	if t.closed {
		return NewClosedError(operation)
	}
	return nil
}
