package wshub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Zubra14/verista-tracking/pkg/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn wraps a single websocket connection. Writes are serialized by the
// internal mutex so topic fan-out goroutines may send concurrently;
// reading stays on the owning handler goroutine.
type Conn struct {
	id      uuid.UUID
	conn    *websocket.Conn
	doneCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

func NewConn(ctx context.Context, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		id:      uuid.New(),
		conn:    conn,
		doneCtx: ctx,
		cancel:  cancel,
	}
}

// ID returns the hub-scoped connection identifier.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Done is closed when the connection has been shut down.
func (c *Conn) Done() <-chan struct{} {
	return c.doneCtx.Done()
}

// Send writes v as a JSON frame. Safe for concurrent use.
func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return errors.New("connection closed")
	default:
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.conn.WriteJSON(v)
}

// ReadJSON blocks until the next inbound frame and decodes it into dst.
// Only the handler goroutine that owns the connection may call it.
func (c *Conn) ReadJSON(dst any) error {
	select {
	case <-c.doneCtx.Done():
		return errors.New("read stopped: connection closed")
	default:
	}

	// Returned unwrapped: gorilla's close-error helpers type-assert on
	// *websocket.CloseError, so callers need the original error.
	return c.conn.ReadJSON(dst)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
