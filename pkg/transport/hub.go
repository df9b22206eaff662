package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shellstorm/server/pkg/logger"
)

// writeWait bounds how long a single write to a client may block before
// the client is considered stalled and dropped.
const writeWait = 10 * time.Second

// Envelope is the wire format for every server-to-client event
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SnapshotProvider produces the catch-up events for a client that joins a
// room late. Each returned envelope is delivered to the new subscriber
// before any live traffic.
type SnapshotProvider func(gameID string) []Envelope

// Hub fans events out to websocket clients grouped by game room. It
// implements the game layer's Broadcaster interface. A slow or dead client
// is dropped rather than allowed to block the room.
type Hub struct {
	mu           sync.RWMutex
	rooms        map[string]map[*client]struct{}
	snapshot     SnapshotProvider
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	log          logger.Logger
}

type client struct {
	conn    *websocket.Conn
	timeout time.Duration
	mu      sync.Mutex // serializes writes to conn
}

func (c *client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// NewHub creates an empty hub. The snapshot provider may be nil, in which
// case late joiners start from live traffic only.
func NewHub(snapshot SnapshotProvider) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*client]struct{}),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: writeWait,
		log:          logger.WithPrefix("hub"),
	}
}

// ServeHTTP upgrades the request to a websocket and subscribes it to the
// room named by the "game" query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, timeout: h.writeTimeout}
	h.subscribe(gameID, c)
	h.log.Debugf("client joined room %s", gameID)

	if h.snapshot != nil {
		for _, env := range h.snapshot(gameID) {
			payload, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := c.send(payload); err != nil {
				h.drop(gameID, c)
				return
			}
		}
	}

	// Reader loop: inbound messages are ignored, but reading is what
	// detects disconnects
	go func() {
		defer h.drop(gameID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Emit delivers an event to every client in the room. Unknown rooms are a
// no-op: sessions broadcast before any client has joined.
func (h *Hub) Emit(gameID, event string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		h.log.Errorf("marshal %s: %v", event, err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[gameID]))
	for c := range h.rooms[gameID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(payload); err != nil {
			h.drop(gameID, c)
		}
	}
}

// RoomSize reports the subscriber count of a room
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// Close disconnects every client in every room
func (h *Hub) Close() {
	h.mu.Lock()
	for _, room := range h.rooms {
		for c := range room {
			_ = c.conn.Close()
		}
	}
	h.rooms = make(map[string]map[*client]struct{})
	h.mu.Unlock()
}

func (h *Hub) subscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[gameID]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[gameID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) drop(gameID string, c *client) {
	h.mu.Lock()
	room := h.rooms[gameID]
	if _, ok := room[c]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, gameID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
