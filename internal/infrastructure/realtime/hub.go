// Package realtime pushes chat events to websocket clients grouped in rooms.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Event names on the wire
const (
	EventJoin        = "join"
	EventJoined      = "joined"
	EventLeave       = "leave"
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
	EventError       = "error"
)

// ErrHubStopped is returned once the hub loop has exited
var ErrHubStopped = errors.New("realtime hub stopped")

// Frame is one JSON message on the socket: {"event": "...", "data": {...}}
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals an event and its payload
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

type membership struct {
	client *Client
	room   string
	join   bool
}

type delivery struct {
	room    string
	payload []byte
}

type directDelivery struct {
	client  *Client
	payload []byte
}

type roomQuery struct {
	room  string
	reply chan int
}

// Hub owns room membership. All maps are touched only by the Run goroutine;
// other goroutines talk to it through unbuffered channels, so operations from
// one goroutine are applied in order.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	membership chan membership
	broadcast  chan delivery
	direct     chan directDelivery
	query      chan roomQuery
	done       chan struct{}

	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	logger  *zap.Logger
}

// NewHub creates a hub; call Run to start it
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		membership: make(chan membership),
		broadcast:  make(chan delivery),
		direct:     make(chan directDelivery),
		query:      make(chan roomQuery),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]map[string]struct{}),
		logger:     logger,
	}
}

// Run processes hub operations until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = make(map[string]struct{})
		case c := <-h.unregister:
			h.drop(c)
		case m := <-h.membership:
			h.applyMembership(m)
		case d := <-h.broadcast:
			for c := range h.rooms[d.room] {
				h.deliver(c, d.payload)
			}
		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.payload)
			}
		case q := <-h.query:
			q.reply <- len(h.rooms[q.room])
		}
	}
}

func (h *Hub) applyMembership(m membership) {
	joined, ok := h.clients[m.client]
	if !ok {
		return
	}
	if m.join {
		if h.rooms[m.room] == nil {
			h.rooms[m.room] = make(map[*Client]struct{})
		}
		h.rooms[m.room][m.client] = struct{}{}
		joined[m.room] = struct{}{}
		return
	}
	h.leaveRoom(m.client, m.room)
	delete(joined, m.room)
}

// deliver never blocks: a client whose buffer is full is dropped
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("Dropping slow websocket client", zap.String("zid", c.session.Zid))
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range rooms {
		h.leaveRoom(c, room)
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) leaveRoom(c *Client, room string) {
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes a client from every room and closes its send channel
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Join subscribes a client to a room
func (h *Hub) Join(ctx context.Context, c *Client, room string) error {
	return h.changeMembership(ctx, membership{client: c, room: room, join: true})
}

// Leave unsubscribes a client from a room
func (h *Hub) Leave(ctx context.Context, c *Client, room string) error {
	return h.changeMembership(ctx, membership{client: c, room: room})
}

func (h *Hub) changeMembership(ctx context.Context, m membership) error {
	select {
	case h.membership <- m:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Broadcast sends event to every client in room
func (h *Hub) Broadcast(ctx context.Context, room, event string, data any) error {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- delivery{room: room, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendTo sends event to a single client
func (h *Hub) SendTo(ctx context.Context, c *Client, event string, data any) error {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}
	select {
	case h.direct <- directDelivery{client: c, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomSize returns the number of clients in room
func (h *Hub) RoomSize(ctx context.Context, room string) (int, error) {
	q := roomQuery{room: room, reply: make(chan int, 1)}
	select {
	case h.query <- q:
		return <-q.reply, nil
	case <-h.done:
		return 0, ErrHubStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
