package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 30 * time.Second
	pongWait   = 300 * time.Second
	pingPeriod = 240 * time.Second
	maxFrame   = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one authenticated socket. Room subscriptions only scope event
// delivery; joining a channel never makes the user a room participant.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uint
	username string

	// subscribed is touched only by the hub's Run goroutine.
	subscribed map[uint]bool
}

// ServeWS upgrades the request and starts the read/write pumps for an
// already-authenticated user.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, 256),
		userID:     userID,
		username:   username,
		subscribed: make(map[uint]bool),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// clientCommand is the inbound frame shape: subscription control and ping.
type clientCommand struct {
	Type   string `json:"type"`
	RoomID uint   `json:"roomId"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrame)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("user_id", c.userID).Debug("Client read error")
			}
			break
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			logrus.WithField("user_id", c.userID).Debug("Dropping malformed client frame")
			continue
		}

		switch cmd.Type {
		case "join_room":
			if cmd.RoomID != 0 {
				c.hub.join <- subscription{client: c, roomID: cmd.RoomID}
			}
		case "leave_room":
			if cmd.RoomID != 0 {
				c.hub.leave <- subscription{client: c, roomID: cmd.RoomID}
			}
		case "ping":
			if data, err := json.Marshal(Envelope{Type: "pong"}); err == nil {
				c.enqueue(data)
			}
		case "pong":
			// Connection is healthy, nothing to do.
		default:
			logrus.WithFields(logrus.Fields{
				"user_id": c.userID,
				"type":    cmd.Type,
			}).Debug("Ignoring unknown client frame")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// enqueue hands a frame to the client's write pump, dropping it when the
// buffer is full so one slow consumer cannot stall the hub.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		logrus.WithField("user_id", c.userID).Warn("Client send buffer full, dropping frame")
	}
}

func (c *Client) confirm(event string, roomID uint) {
	data, err := json.Marshal(Envelope{Type: event, Payload: mustRaw(map[string]uint{"roomId": roomID})})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func mustRaw(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
