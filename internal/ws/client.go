package ws

import (
	"encoding/json"
	"time"

	"ai_todo/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 16
)

// Client is one websocket subscribed to an owner's refresh events.
type Client struct {
	Owner string
	Conn  *websocket.Conn
	Send  chan []byte

	Hub  *Hub
	Done chan struct{}
}

func NewClient(owner string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Owner: owner,
		Conn:  conn,
		Send:  make(chan []byte, sendBuffer),
		Hub:   hub,
		Done:  make(chan struct{}),
	}
}

// Run queues the ready handshake, registers with the hub and blocks until the
// peer goes away.
func (c *Client) Run() {
	ready, _ := json.Marshal(Event{Type: MsgReady, Owner: c.Owner, At: time.Now().UTC()})
	c.Send <- ready

	c.Hub.Register(c)
	go c.writePump()
	c.readPump()
}

// read: only pings and close frames are expected from the client
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(1024)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("feed read error", "owner", c.Owner, "error", err)
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(msg, &in) == nil && in.Type == MsgPing {
			pong, _ := json.Marshal(Event{Type: MsgPong, At: time.Now().UTC()})
			c.trySend(pong)
		}
	}
}

// trySend queues msg unless the hub already closed the queue.
func (c *Client) trySend(msg []byte) {
	c.Hub.mu.Lock()
	defer c.Hub.mu.Unlock()
	if _, ok := c.Hub.subs[c.Owner][c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("feed write error", "owner", c.Owner, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
