// handlers/events_test.go
package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

// overlapDetector records whether two WriteJSON calls ever ran at the
// same time. The connection tolerates exactly one concurrent writer.
type overlapDetector struct {
	active  int32
	overlap int32
	writes  int32
}

func (d *overlapDetector) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&d.active, 1) > 1 {
		atomic.StoreInt32(&d.overlap, 1)
	}
	time.Sleep(200 * time.Microsecond)
	atomic.AddInt32(&d.active, -1)
	atomic.AddInt32(&d.writes, 1)
	return nil
}

func TestHubPublishSerializesWritesPerConnection(t *testing.T) {
	hub := NewHub()
	conn := &websocket.Conn{}
	detector := &overlapDetector{}
	hub.rooms["calculus-limits"] = map[*websocket.Conn]*subscriber{
		conn: {conn: conn, sink: detector},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish("calculus-limits", map[string]interface{}{"event": "locked"})
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&detector.overlap) == 1 {
		t.Fatal("two publishes wrote to the same connection concurrently")
	}
	if got := atomic.LoadInt32(&detector.writes); got != 8 {
		t.Fatalf("expected 8 writes, got %d", got)
	}
}

func TestHubSubscriptionBookkeeping(t *testing.T) {
	hub := NewHub()
	c1, c2 := &websocket.Conn{}, &websocket.Conn{}

	hub.subscribe("calc", c1)
	hub.subscribe("calc", c2)
	if len(hub.rooms["calc"]) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(hub.rooms["calc"]))
	}

	hub.unsubscribe("calc", c1)
	if len(hub.rooms["calc"]) != 1 {
		t.Fatalf("expected 1 subscriber after unsubscribe, got %d", len(hub.rooms["calc"]))
	}

	hub.unsubscribe("calc", c2)
	if _, ok := hub.rooms["calc"]; ok {
		t.Fatal("expected empty room to be dropped")
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Publish("nobody-listening", map[string]interface{}{"event": "released"})
}
