package notify

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	clientBuffer = 16
)

// Hub streams notifications to WebSocket clients. It keeps the latest
// notification per tag and replays them to clients that connect later.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	latest  map[string]Notification
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan Notification
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		latest:  make(map[string]Notification),
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) Name() string { return "websocket" }

func (h *Hub) Send(ctx context.Context, n Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[n.Tag] = n
	for client := range h.clients {
		select {
		case client.send <- n:
		default:
			h.logger.Warn("ws client too slow, dropping")
			h.removeLocked(client)
		}
	}
	return nil
}

// Latest returns the current notification for every tag, oldest first.
func (h *Hub) Latest() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Dismiss forgets a tag, the equivalent of the user swiping the notification away.
func (h *Hub) Dismiss(tag string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.latest, tag)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := &hubClient{conn: conn, send: make(chan Notification, clientBuffer)}
	h.mu.Lock()
	pending := h.snapshotLocked()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("ws client connected", zap.String("remote", r.RemoteAddr), zap.Int("replay", len(pending)))

	go h.readPump(client)
	h.writePump(client, pending)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) snapshotLocked() []Notification {
	out := make([]Notification, 0, len(h.latest))
	for _, n := range h.latest {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].Tag < out[j].Tag
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out
}

func (h *Hub) removeLocked(client *hubClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) readPump(client *hubClient) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(client)
		h.mu.Unlock()
	}()
	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *hubClient, pending []Notification) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for _, n := range pending {
		if err := h.write(client, n); err != nil {
			return
		}
	}

	for {
		select {
		case n, ok := <-client.send:
			if !ok {
				_ = client.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			if err := h.write(client, n); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(client *hubClient, n Notification) error {
	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.conn.WriteJSON(n); err != nil {
		h.logger.Debug("ws write failed", zap.Error(err))
		return err
	}
	return nil
}
