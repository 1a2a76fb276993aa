// Package stream maintains a reconnecting WebSocket subscription to the
// metrics broadcast endpoint.
package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// DefaultReconnectDelay is the fixed wait between reconnect attempts.
const DefaultReconnectDelay = 3 * time.Second

// State is the client connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Handler receives decoded wire messages.
type Handler interface {
	OnMessage(ctx context.Context, msg model.WireMessage)
}

// Client dials the broadcast endpoint and feeds decoded messages to a
// handler. After any disconnect it schedules exactly one reconnect attempt
// after a fixed delay; stopping the client cancels the pending attempt.
type Client struct {
	url     string
	handler Handler
	dialer  *websocket.Dialer
	delay   time.Duration

	mu    sync.Mutex
	state State
}

// NewClient creates a stream client for the given ws:// URL. A zero delay
// selects DefaultReconnectDelay.
func NewClient(url string, handler Handler, delay time.Duration) *Client {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	return &Client{
		url:     url,
		handler: handler,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		delay: delay,
		state: StateDisconnected,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run connects and reads until ctx is cancelled, reconnecting after the
// fixed delay on dial failure or connection loss. Returns ctx.Err() on
// teardown.
func (c *Client) Run(ctx context.Context) error {
	defer c.setState(StateDisconnected)

	for {
		c.setState(StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.setState(StateDisconnected)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("dialing stream", "url", c.url, "error", err)
			if err := c.waitReconnect(ctx); err != nil {
				return err
			}
			continue
		}

		c.setState(StateConnected)
		slog.Info("stream connected", "url", c.url)

		err = c.readLoop(ctx, conn)
		conn.Close()
		c.setState(StateDisconnected)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("stream disconnected", "error", err)

		if err := c.waitReconnect(ctx); err != nil {
			return err
		}
	}
}

// waitReconnect blocks for the reconnect delay. The timer is stopped when
// ctx is cancelled so no attempt outlives the client.
func (c *Client) waitReconnect(ctx context.Context) error {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readLoop decodes messages until the connection drops or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg model.WireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.Type != model.MessageTypeMetrics {
			slog.Debug("skipping unknown message type", "type", msg.Type)
			continue
		}
		c.handler.OnMessage(ctx, msg)
	}
}
