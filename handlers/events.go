// handlers/events.go - Live problem event feed over websockets
package handlers

import (
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// jsonWriter is the slice of the websocket connection the hub writes
// through.
type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// subscriber pairs a connection with a write mutex. The underlying
// websocket connection supports one concurrent writer, and two
// transitions on the same problem can publish back-to-back from
// different request goroutines.
type subscriber struct {
	conn    *websocket.Conn
	sink    jsonWriter
	writeMu sync.Mutex
}

func (s *subscriber) send(event map[string]interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.sink.WriteJSON(event)
}

// Hub fans out lock-transition events to websocket subscribers of a
// problem page. Subscriptions are keyed by slug.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]*subscriber
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]*subscriber)}
}

func (h *Hub) subscribe(slug string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[slug] == nil {
		h.rooms[slug] = make(map[*websocket.Conn]*subscriber)
	}
	h.rooms[slug][conn] = &subscriber{conn: conn, sink: conn}
}

func (h *Hub) unsubscribe(slug string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[slug], conn)
	if len(h.rooms[slug]) == 0 {
		delete(h.rooms, slug)
	}
}

// Publish sends an event to every subscriber of the slug. Dead
// connections are dropped on write failure.
func (h *Hub) Publish(slug string, event map[string]interface{}) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.rooms[slug]))
	for _, sub := range h.rooms[slug] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(event); err != nil {
			log.Printf("❌ Websocket write failed for %s: %v", slug, err)
			h.unsubscribe(slug, sub.conn)
			sub.conn.Close()
		}
	}
}

// WebsocketUpgrade rejects plain HTTP requests on the websocket route.
func WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ProblemEvents holds the subscriber connection open until the client
// disconnects. Events are pushed by the Hub, never pulled.
// GET /ws/problems/:slug
var ProblemEvents = websocket.New(func(conn *websocket.Conn) {
	slug := conn.Params("slug")
	eventHub.subscribe(slug, conn)
	defer func() {
		eventHub.unsubscribe(slug, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
})
