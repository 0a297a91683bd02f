package ws

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// UserClient binds a verified user identity to one websocket connection.
// Handle is the opaque connection identifier stored in the presence
// registry; a reconnect produces a new handle.
type UserClient struct {
	UserId string
	Handle string
	hub    IHub
	conn   *websocket.Conn
	send   chan []byte
}

func NewClient(userId string, hub IHub, conn *websocket.Conn) *UserClient {
	return &UserClient{
		UserId: userId,
		Handle: uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ReadPump reads events from the connection and hands them to onMessage
// one at a time, in arrival order. It returns when the connection closes,
// unregistering the client on the way out.
func (c *UserClient) ReadPump(onMessage func(data []byte)) {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ReadPump error: %v", err)
			}
			break
		}
		onMessage(data)
	}
}

// WritePump drains the send channel onto the connection and keeps the
// transport alive with periodic pings. One writer per connection.
func (c *UserClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
