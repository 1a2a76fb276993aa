package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// ErrSubscriberGone is returned by Send once a subscriber's outbound queue
// is closed or saturated; the hub prunes the subscriber in response.
var ErrSubscriberGone = errors.New("subscriber gone")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Local dashboard; the stream carries no secrets and accepts no input.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber adapts one WebSocket connection to the hub's Subscriber
// interface. Send enqueues without blocking; a full queue means the peer has
// stopped draining, and the connection is abandoned rather than stalling the
// broadcast loop.
type wsSubscriber struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan model.WireMessage
	closed bool
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{
		conn: conn,
		send: make(chan model.WireMessage, 8),
	}
}

// Send queues one message for delivery.
func (s *wsSubscriber) Send(msg model.WireMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSubscriberGone
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrSubscriberGone
	}
}

func (s *wsSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// writePump drains the outbound queue onto the connection.
func (s *wsSubscriber) writePump() {
	for msg := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := s.conn.WriteJSON(msg); err != nil {
			slog.Debug("writing to subscriber", "error", err)
			break
		}
	}
	s.conn.Close()
}

// handleWS upgrades the connection, registers it with the hub and primes it
// with one immediate payload so the first chart point appears without
// waiting a full interval.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("upgrading websocket", "error", err)
		return
	}

	sub := newWSSubscriber(conn)
	go sub.writePump()

	s.hub.Add(sub)
	s.broadcaster.Prime(r.Context(), sub)

	// The stream is one-way; reads only detect the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Remove(sub)
	sub.close()
}
