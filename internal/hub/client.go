package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Abduqodir7007/twitter-clone/internal/config"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
)

// Client is one live websocket connection. It is process-local and
// ephemeral; the Hub owns it between registration and removal.
type Client struct {
	ID   string
	Room string // empty for feed clients

	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig

	// mu orders send attempts against closeSend. The hub may evict and
	// close a client while its connection handler is still answering a
	// pull, so both paths go through the flag.
	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection. room may be empty for clients
// that only join the global feed.
func NewClient(conn *websocket.Conn, room string, cfg config.WebSocketConfig) *Client {
	size := cfg.SendBufferSize
	if size <= 0 {
		size = 256
	}
	return &Client{
		ID:   uuid.New().String(),
		Room: room,
		conn: conn,
		send: make(chan []byte, size),
		cfg:  cfg,
	}
}

// trySend queues payload without blocking. A full buffer means the
// reader is not draining; the caller treats that as a dead connection.
// Sending after closeSend reports false instead of panicking on the
// closed channel.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Send queues payload for this client only, without blocking. It reports
// whether the payload was accepted; a false return means the connection
// buffer is full and the client should be torn down.
func (c *Client) Send(payload []byte) bool {
	return c.trySend(payload)
}

// closeSend signals the write pump to finish. Safe to call more than
// once; later send attempts are rejected rather than racing the close.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump blocks reading inbound frames until the peer closes or the
// transport fails, then closes the connection and returns. Cleanup after
// it returns runs on every exit path, clean close and error alike.
// onMessage may be nil, in which case inbound frames are drained and
// ignored.
func (c *Client) ReadPump(onMessage func([]byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.L().Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket read failed")
			}
			return
		}

		if onMessage != nil {
			onMessage(message)
		}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// peer alive with pings. Run it in its own goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
