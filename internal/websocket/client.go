package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	readWait   = 60 * time.Second
)

// Client is one persistent connection. UserID is bound once at protocol
// connect and never re-derived per frame.
type Client struct {
	ID       string
	UserID   uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	channels map[string]bool
	mu       sync.RWMutex // protects channels and conn writes
}

func NewClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		conn:     conn,
		send:     make(chan []byte, 256),
		channels: make(map[string]bool),
	}
}

func (c *Client) addChannel(channel string) {
	c.mu.Lock()
	c.channels[channel] = true
	c.mu.Unlock()
}

func (c *Client) removeChannel(channel string) {
	c.mu.Lock()
	delete(c.channels, channel)
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

// WriteLoop drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.send:
			if !ok {
				c.close()
				return
			}
			c.write(websocket.TextMessage, msg)
		case <-ticker.C:
			c.write(websocket.PingMessage, []byte("ping"))
		}
	}
}

func (c *Client) write(messageType int, payload []byte) {
	c.mu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(messageType, payload)
	c.mu.Unlock()
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Enqueue hands a payload to the write loop without blocking. A slow
// consumer with a full buffer loses the frame.
func (c *Client) Enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}
