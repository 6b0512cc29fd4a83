package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum gap between INTERACT actions from one client. Skip and
	// dismiss are latency-sensitive and never throttled.
	interactCooldown = 500 * time.Millisecond
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type      string `json:"type"`                 // "SKIP", "DISMISS", "INTERACT", "ANIMATION_DONE", "START_REPLAY"
	Name      string `json:"name,omitempty"`       // interaction name for "INTERACT"
	IsSuccess bool   `json:"is_success,omitempty"` // interaction score for "INTERACT"
}

// Client represents an active WebSocket connection.
type Client struct {
	hub              *Hub
	conn             *websocket.Conn
	send             chan []byte
	lastInteractTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.sendBuf),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the action handler.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: %v", err)
				c.hub.metrics.RecordWSError()
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket: %v", err)
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	switch action.Type {
	case "SKIP", "DISMISS", "ANIMATION_DONE", "START_REPLAY":
		// Pass through untouched.
	case "INTERACT":
		if action.Name == "" {
			c.hub.logger.Warn("INTERACT without a name, ignored")
			return
		}
		if time.Since(c.lastInteractTime) < interactCooldown {
			c.hub.logger.Warn("Rate limit exceeded for INTERACT %q", action.Name)
			return
		}
		c.lastInteractTime = time.Now()
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: %q", action.Type)
		return
	}

	if c.hub.handler != nil {
		c.hub.handler.HandleAction(action)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
