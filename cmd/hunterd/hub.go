package main

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/k3dep/hunterd/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon serves the local UI; same-origin checks stay off like any
	// other localhost control socket.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusEvent is one websocket push: a state change or a fresh
// frequency/mode reading.
type statusEvent struct {
	Type      string `json:"type"` // "state" or "status"
	State     string `json:"state,omitempty"`
	Frequency int64  `json:"frequency,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// statusHub fans status events out to every connected websocket client.
type statusHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan statusEvent
	closed  bool
}

func newStatusHub() *statusHub {
	return &statusHub{clients: make(map[*websocket.Conn]chan statusEvent)}
}

func (h *statusHub) broadcastState(state string) {
	h.broadcast(statusEvent{Type: "state", State: state})
}

func (h *statusHub) broadcastStatus(freq int64, mode string) {
	h.broadcast(statusEvent{Type: "status", Frequency: freq, Mode: mode})
}

func (h *statusHub) broadcast(ev statusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Slow client; drop it rather than block CAT callbacks.
			close(ch)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *statusHub) add(conn *websocket.Conn) chan statusEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	ch := make(chan statusEvent, 16)
	h.clients[conn] = ch
	return ch
}

func (h *statusHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

func (h *statusHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for conn, ch := range h.clients {
		close(ch)
		conn.Close()
		delete(h.clients, conn)
	}
}

// handleWebSocket upgrades the connection and streams status events until
// the client goes away.
func (d *HunterDaemon) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warnf("daemon", "websocket upgrade: %v", err)
		return
	}

	ch := d.hub.add(conn)
	if ch == nil {
		conn.Close()
		return
	}
	defer func() {
		d.hub.remove(conn)
		conn.Close()
	}()

	// Send the current snapshot so clients do not wait for the next event.
	st := d.status()
	conn.WriteJSON(statusEvent{Type: "state", State: st.State})
	if st.Frequency > 0 {
		conn.WriteJSON(statusEvent{Type: "status", Frequency: st.Frequency, Mode: st.Mode})
	}

	// Reader goroutine just detects disconnects; clients send nothing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
