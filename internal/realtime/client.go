package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"openkanban/internal/presence"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	leaveWait      = 2 * time.Second
)

// Client is one websocket viewer of a board. send is owned by the hub, which
// closes it; pong is only signalled by the reader and drained by the writer.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	pong     chan struct{}
	slug     string
	id       string
	presence *presence.Tracker
}

func NewClient(hub *Hub, conn *websocket.Conn, slug, id string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		pong:     make(chan struct{}, 1),
		slug:     slug,
		id:       id,
		presence: hub.tracker(slug, id),
	}
}

// ReadPump handles incoming messages until the connection fails.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	if c.presence != nil {
		c.presence.OnChange(func(n int) {
			c.hub.Present(c, n)
		})
		c.presence.Join(ctx)
		defer func() {
			leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaveWait)
			defer cancel()
			c.presence.Leave(leaveCtx)
		}()
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket error on board %q: %v", c.slug, err)
			}
			return
		}
		c.hub.metrics.Messages.WithLabelValues("in").Inc()

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case TypePing:
			select {
			case c.pong <- struct{}{}:
			default:
			}
		case TypeSync:
			c.hub.announce(ctx, c)
		}
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.pong:
			data, _ := json.Marshal(Message{Type: TypePong})
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			c.hub.metrics.Messages.WithLabelValues("out").Inc()
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
