package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
)

const (
	wsSendBuffer   = 16
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// Event types pushed to websocket clients.
const (
	EventSnapshot = "snapshot"
	EventViewport = "viewport"
	EventRotation = "rotation"
	EventError    = "error"
)

// wsEvent is sent from server to client.
type wsEvent struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is sent from client to server.
//
//	{"action":"viewport","viewport":{"zoom":17}}
//	{"action":"rotate","enabled":true}
//	{"action":"toggle_rotate"}
type wsCommand struct {
	Action   string                `json:"action"`
	Viewport *domain.ViewportPatch `json:"viewport,omitempty"`
	Enabled  *bool                 `json:"enabled,omitempty"`
}

type wsClient struct {
	send chan []byte
}

// Hub fans snapshots and viewport changes out to websocket clients. It
// implements ports.SnapshotPublisher. A client whose buffer is full misses
// the message; the next snapshot supersedes it anyway.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

func (h *Hub) PublishSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(wsEvent{Type: EventSnapshot, Data: snap})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) PublishViewport(ctx context.Context, vp domain.Viewport) error {
	data, err := json.Marshal(wsEvent{Type: EventViewport, Data: vp})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) PublishRotation(ctx context.Context, enabled bool) error {
	data, err := json.Marshal(wsEvent{Type: EventRotation, Data: rotationResponse{Enabled: enabled}})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		deliver(c, data)
	}
}

func deliver(c *wsClient, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		metrics.WebSocketDropped.Inc()
		return false
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.ActiveWebSockets.Inc()
}

// unregister removes the client and closes its send channel. Broadcasts hold
// the read lock, so none can be sending on the channel concurrently.
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.ActiveWebSockets.Dec()
	}
	h.mu.Unlock()
}

// WebSocketHandler returns a handler that streams view state to the client
// and applies its camera commands. The current snapshot is sent first so
// that a new client renders immediately.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		client := &wsClient{send: make(chan []byte, wsSendBuffer)}
		if data, err := json.Marshal(wsEvent{Type: EventSnapshot, Data: deps.Loop.Current()}); err == nil {
			client.send <- data
		}
		deps.Hub.register(client)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			writeLoop(c, client.send)
		}()

		reply := func(ev wsEvent) {
			if data, err := json.Marshal(ev); err == nil {
				deliver(client, data)
			}
		}

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd wsCommand
			if err := json.Unmarshal(msg, &cmd); err != nil {
				reply(wsEvent{Type: EventError, Error: "invalid JSON"})
				continue
			}

			switch cmd.Action {
			case "viewport":
				if cmd.Viewport == nil {
					reply(wsEvent{Type: EventError, Error: "viewport is required"})
					continue
				}
				// On success every client, this one included, receives the
				// viewport event from the hub. Rotation changes work the same way.
				if _, err := deps.Loop.SetViewport(context.Background(), *cmd.Viewport); err != nil {
					reply(wsEvent{Type: EventError, Error: err.Error()})
				}
			case "rotate":
				if cmd.Enabled == nil {
					reply(wsEvent{Type: EventError, Error: "enabled is required"})
					continue
				}
				deps.Loop.SetRotate(context.Background(), *cmd.Enabled)
			case "toggle_rotate":
				deps.Loop.ToggleRotate(context.Background())
			default:
				reply(wsEvent{Type: EventError, Error: "unknown action: " + cmd.Action})
			}
		}

		deps.Hub.unregister(client)
		<-writerDone
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}

// writeLoop owns all writes to the connection until send is closed or a
// write fails.
func writeLoop(c *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-send:
			if !ok {
				_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				logWriteError(err)
				drain(send)
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				logWriteError(err)
				drain(send)
				return
			}
		}
	}
}

// drain discards queued messages until the hub closes the channel, so the
// broadcaster never blocks on a dead client.
func drain(send <-chan []byte) {
	for range send {
	}
}

func logWriteError(err error) {
	slog.Debug("ws write failed", "error", err)
}
