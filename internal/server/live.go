package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/editor"
	"github.com/kapu/socialforge-go/internal/metrics"
	"github.com/kapu/socialforge-go/internal/profile"
	"go.uber.org/zap"
)

// LiveMessage is pushed to every live preview client.
type LiveMessage struct {
	Type     string          `json:"type"`
	Version  uint64          `json:"version,omitempty"`
	HTML     string          `json:"html,omitempty"`
	BioState editor.BioState `json:"bioState,omitempty"`
}

const (
	messagePreview = "preview"
	messageState   = "state"
)

type previewFunc func(p domain.Profile) (template.HTML, error)

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans record changes out to websocket clients. Slow clients are dropped
// rather than blocking the broadcast.
type Hub struct {
	store   *profile.Store
	editor  *editor.Editor
	render  previewFunc
	metrics *metrics.Metrics
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*liveClient]struct{}

	states chan editor.BioState
	done   chan struct{}
}

func NewHub(store *profile.Store, ed *editor.Editor, render previewFunc, m *metrics.Metrics, logger *zap.Logger) *Hub {
	h := &Hub{
		store:   store,
		editor:  ed,
		render:  render,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*liveClient]struct{}),
		states:  make(chan editor.BioState, 8),
	}
	if ed != nil {
		ed.OnBioStateChange(func(s editor.BioState) {
			select {
			case h.states <- s:
			default:
			}
		})
	}
	return h
}

// Start subscribes to the store and forwards changes until ctx is done, then
// disconnects every client. The subscription is active when Start returns.
func (h *Hub) Start(ctx context.Context) {
	changes, unsubscribe := h.store.Subscribe()
	h.done = make(chan struct{})
	go h.run(ctx, changes, unsubscribe)
}

// Done is closed once the loop started by Start has exited.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) run(ctx context.Context, changes <-chan profile.Change, unsubscribe func()) {
	defer close(h.done)
	defer unsubscribe()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			msg, err := h.previewMessage(change.Profile, change.Version)
			if err != nil {
				h.logger.Error("Failed to render live preview", zap.Error(err))
				continue
			}
			h.broadcast(msg)
		case state := <-h.states:
			h.broadcast(LiveMessage{Type: messageState, BioState: state})
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &liveClient{
		conn: conn,
		send: make(chan []byte, constants.WebSocketConfig.SendBuffer),
	}

	// The initial frame is queued under the lock so no broadcast can overtake it.
	h.mu.Lock()
	p, version := h.store.Snapshot()
	if msg, err := h.previewMessage(p, version); err == nil {
		if data, err := json.Marshal(msg); err == nil {
			c.send <- data
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.LiveClientConnected()
	h.logger.Debug("Live preview client connected", zap.String("remote", r.RemoteAddr))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) previewMessage(p domain.Profile, version uint64) (LiveMessage, error) {
	html, err := h.render(p)
	if err != nil {
		return LiveMessage{}, err
	}
	return LiveMessage{Type: messagePreview, Version: version, HTML: string(html)}, nil
}

func (h *Hub) broadcast(msg LiveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode live message", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*liveClient
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow live preview client")
		h.remove(c)
	}
}

// readLoop only services control frames; clients never send data.
func (h *Hub) readLoop(c *liveClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketConfig.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketConfig.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *liveClient) {
	ticker := time.NewTicker(constants.WebSocketConfig.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Live preview write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *liveClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	h.metrics.LiveClientDisconnected()
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*liveClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}
