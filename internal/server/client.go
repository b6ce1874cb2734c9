package server

import (
	"encoding/json"

	"github.com/gelaws-hub/board-game/internal/protocol"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket connection. Its ID is the volatile
// connection identity; the stable player identity lives in the game and is
// associated through the hub's PlayerConnections map.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ID   string
}

// ReadPump handles incoming messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnw("unexpected close", "conn_id", c.ID, "error", err)
			}
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.hub.log.Warnw("unreadable message", "conn_id", c.ID, "error", err)
			continue
		}

		c.hub.processMessage <- clientMessage{client: c, message: msg}
	}
}

// WritePump handles outgoing messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.log.Warnw("write error", "conn_id", c.ID, "error", err)
			break
		}
	}
}
