package ws

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Envelope is the wire frame for every server-pushed event.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscription struct {
	client *Client
	roomID uint
}

type roomPacket struct {
	roomID uint
	data   []byte
}

type userPacket struct {
	userID uint
	data   []byte
}

// Hub owns all live connections. Two addressing planes exist: personal
// channels keyed by user ID (every connection of that user) and room
// channels a client explicitly subscribes to. All state is touched only by
// the Run goroutine, which also gives per-room FIFO delivery.
type Hub struct {
	users map[uint]map[*Client]bool
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	roomCast   chan roomPacket
	userCast   chan userPacket
}

func NewHub() *Hub {
	return &Hub{
		users:      make(map[uint]map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		roomCast:   make(chan roomPacket, 64),
		userCast:   make(chan userPacket, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.users[client.userID] == nil {
				h.users[client.userID] = make(map[*Client]bool)
			}
			h.users[client.userID][client] = true
			logrus.WithField("user_id", client.userID).Debug("Client connected")

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.join:
			if h.rooms[sub.roomID] == nil {
				h.rooms[sub.roomID] = make(map[*Client]bool)
			}
			h.rooms[sub.roomID][sub.client] = true
			sub.client.subscribed[sub.roomID] = true
			sub.client.confirm("room_joined", sub.roomID)

		case sub := <-h.leave:
			h.dropFromRoom(sub.client, sub.roomID)
			sub.client.confirm("room_left", sub.roomID)

		case pkt := <-h.roomCast:
			for client := range h.rooms[pkt.roomID] {
				client.enqueue(pkt.data)
			}

		case pkt := <-h.userCast:
			for client := range h.users[pkt.userID] {
				client.enqueue(pkt.data)
			}
		}
	}
}

// drop removes a client from the user plane and every room it subscribed to.
// Disconnecting never changes room membership, only delivery.
func (h *Hub) drop(client *Client) {
	if conns, ok := h.users[client.userID]; ok {
		if conns[client] {
			delete(conns, client)
			close(client.send)
		}
		if len(conns) == 0 {
			delete(h.users, client.userID)
		}
	}
	for roomID := range client.subscribed {
		h.dropFromRoom(client, roomID)
	}
}

func (h *Hub) dropFromRoom(client *Client, roomID uint) {
	delete(client.subscribed, roomID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ToRoom delivers an event to every client subscribed to the room channel.
func (h *Hub) ToRoom(roomID uint, event string, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		return
	}
	h.roomCast <- roomPacket{roomID: roomID, data: data}
}

// ToUser delivers an event to every live connection of the user.
func (h *Hub) ToUser(userID uint, event string, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		return
	}
	h.userCast <- userPacket{userID: userID, data: data}
}

func encodeEnvelope(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode event payload")
		return nil, err
	}
	data, err := json.Marshal(Envelope{Type: event, Payload: raw})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode event frame")
		return nil, err
	}
	return data, nil
}
