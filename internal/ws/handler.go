package ws

import (
	"bytes"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the frame format of a spectator connection.
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding maps the enc query value to an Encoding, defaulting to JSON.
func ParseEncoding(v string) Encoding {
	if v == string(EncodingMsgpack) {
		return EncodingMsgpack
	}
	return EncodingJSON
}

// Client is one spectator or host connection watching a session
type Client struct {
	conn     *websocket.Conn
	token    string
	encoding Encoding
	send     chan []byte
}

// Hub fans session messages out to the clients watching that session
type Hub struct {
	rooms      map[string]map[*Client]struct{} // session token -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.token]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.token] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Client joined session %s (room_size=%d, enc=%s)", client.token, size, client.encoding)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.token]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
				}
				if len(room) == 0 {
					delete(h.rooms, client.token)
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] Client left session %s", client.token)
		}
	}
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// BroadcastToSession sends a message to every client in a session, encoding it once
// per wire format in use.
func (h *Hub) BroadcastToSession(token string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[token]
	if !ok {
		return
	}

	encoded := make(map[Encoding][]byte, 2)
	for client := range room {
		data, ok := encoded[client.encoding]
		if !ok {
			var err error
			data, err = encode(client.encoding, message)
			if err != nil {
				log.Printf("[WS] Error encoding message for session %s: %v", token, err)
				return
			}
			encoded[client.encoding] = data
		}
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Client send buffer full in session %s, dropping message", token)
		}
	}
}

// encode marshals message in the given format. Msgpack reuses the json struct tags so
// both formats carry identical field names.
func encode(enc Encoding, message interface{}) ([]byte, error) {
	if enc != EncodingMsgpack {
		return json.Marshal(message)
	}
	var buf bytes.Buffer
	e := msgpack.NewEncoder(&buf)
	e.SetCustomStructTag("json")
	if err := e.Encode(message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) messageType() int {
	if c.encoding == EncodingMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(c.messageType(), message); err != nil {
				log.Printf("[WS] write error in session %s: %v", c.token, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error in session %s: %v", c.token, err)
				return
			}
		}
	}
}

// readPump drains client frames until the connection closes. Spectators never steer
// the run; the only message understood is a ping.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error in session %s: %v", c.token, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(raw, &msg) != nil || msg.Type != "ping" {
			continue
		}
		c.enqueue(map[string]interface{}{"type": "pong", "at": time.Now().UnixMilli()})
	}
}

// enqueue must run before readPump starts or from readPump itself. readPump is the
// only path that unregisters the client, so send is still open here.
func (c *Client) enqueue(message interface{}) {
	data, err := encode(c.encoding, message)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
