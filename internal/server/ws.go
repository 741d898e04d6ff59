package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/puppet"
)

// writeWait bounds how long a slow client may hold up a broadcast.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// CommandsMessage is one frame's worth of draw commands as sent to clients.
type CommandsMessage struct {
	Seq         uint64               `json:"seq"`
	Mode        app.Mode             `json:"mode"`
	Commands    []puppet.DrawCommand `json:"commands"`
	Environment environment.State    `json:"environment"`
	Advisory    string               `json:"advisory,omitempty"`
	Timestamp   int64                `json:"timestamp"`
}

// CommandsHub broadcasts each frame's draw commands to websocket clients, so
// a remote canvas can draw the puppet itself.
type CommandsHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// NewCommandsHub creates an empty hub.
func NewCommandsHub() *CommandsHub {
	return &CommandsHub{clients: make(map[*websocket.Conn]bool)}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *CommandsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *CommandsHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends f to every client. Clients that cannot keep up are dropped.
// It matches the app's OnFrame callback signature.
func (h *CommandsHub) Publish(f *app.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(CommandsMessage{
		Seq:         f.Seq,
		Mode:        f.Mode,
		Commands:    f.Commands,
		Environment: f.Env,
		Advisory:    f.Advisory,
		Timestamp:   f.Timestamp.UnixMilli(),
	})
	if err != nil {
		log.Printf("commands encode error: %v", err)
		return
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("dropping commands client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
