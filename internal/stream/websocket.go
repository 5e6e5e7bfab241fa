package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// WSTransport is the push transport over a provider WebSocket. It is
// deliberately dumb: reconnection, backoff, and heartbeat policy live in the
// stream client, which closes and reopens the transport as needed.
type WSTransport struct {
	url              string
	apiKey           string
	handshakeTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	msgCh  chan []byte
	errCh  chan error
	closed bool
}

// NewWSTransport creates a WebSocket transport for the given endpoint.
func NewWSTransport(url, apiKey string, handshakeTimeout time.Duration) *WSTransport {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 15 * time.Second
	}
	return &WSTransport{url: url, apiKey: apiKey, handshakeTimeout: handshakeTimeout}
}

// Open dials the endpoint and starts the read pump. It may be called again
// after Close to establish a fresh link.
func (t *WSTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: t.handshakeTimeout}
	header := http.Header{}
	if t.apiKey != "" {
		header.Set("Authorization", "Bearer "+t.apiKey)
	}

	conn, _, err := dialer.DialContext(ctx, t.url, header)
	if err != nil {
		return fmt.Errorf("ws dial %s: %w", t.url, err)
	}

	t.conn = conn
	t.closed = false
	t.msgCh = make(chan []byte, 1024)
	t.errCh = make(chan error, 1)

	go t.readPump(conn, t.msgCh, t.errCh)
	return nil
}

// Send marshals and writes one outbound envelope.
func (t *WSTransport) Send(ctx context.Context, env *models.Envelope) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return models.ErrNotConnected
	}

	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", env.Type, err)
	}

	deadline := time.Now().Add(wsWriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("ws write %s: %w", env.Type, err)
	}
	return nil
}

// Messages yields raw inbound frames for the current link.
func (t *WSTransport) Messages() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.msgCh
}

// Errors yields the fatal link error, if any.
func (t *WSTransport) Errors() <-chan error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errCh
}

// Close performs a normal closure. The read pump exits without surfacing an
// error, so an intentional close never looks like a failure upstream.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || t.closed {
		return nil
	}
	t.closed = true
	_ = t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait),
	)
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *WSTransport) readPump(conn *websocket.Conn, msgCh chan []byte, errCh chan error) {
	defer close(msgCh)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				errCh <- fmt.Errorf("ws read: %w", err)
			}
			return
		}
		msgCh <- raw
	}
}

var _ drepo.Transport = (*WSTransport)(nil)
