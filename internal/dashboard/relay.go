package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Event is the envelope pushed to connected dashboard clients.
type Event struct {
	Event string  `json:"event"`
	Data  Message `json:"data"`
}

// Relay fans conversation traffic out to websocket clients and persists it to
// the transcript store. It is the pipeline's DashboardNotifier.
type Relay struct {
	store    Store
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

var _ conversation.DashboardNotifier = (*Relay)(nil)

// NewRelay creates a relay. The store may be nil; events are then broadcast
// only to live connections.
func NewRelay(store Store, logger *logging.Logger) *Relay {
	if logger == nil {
		logger = logging.Default()
	}
	return &Relay{
		store: store,
		upgrader: websocket.Upgrader{
			// The dashboard is served from arbitrary hosts during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// ServeWS upgrades GET /ws and keeps the connection registered until the
// client goes away. Clients only listen; inbound frames are discarded.
func (rl *Relay) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	rl.mu.Lock()
	rl.conns[conn] = struct{}{}
	clients := len(rl.conns)
	rl.mu.Unlock()
	rl.logger.Info("dashboard client connected", "clients", clients)

	defer func() {
		rl.mu.Lock()
		delete(rl.conns, conn)
		rl.mu.Unlock()
		conn.Close()
		rl.logger.Info("dashboard client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				rl.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

// RecordInbound mirrors a customer message.
func (rl *Relay) RecordInbound(ctx context.Context, id, phone, body string) {
	rl.record(ctx, phone, Message{
		ID:        orNewID(id),
		From:      phone,
		To:        "bot",
		Body:      body,
		Timestamp: time.Now().UTC(),
		Direction: "inbound",
	})
}

// RecordOutbound mirrors a bot reply.
func (rl *Relay) RecordOutbound(ctx context.Context, id, phone, body string) {
	rl.record(ctx, phone, Message{
		ID:        orNewID(id),
		From:      "bot",
		To:        phone,
		Body:      body,
		Timestamp: time.Now().UTC(),
		Direction: "outbound",
	})
}

func (rl *Relay) record(ctx context.Context, phone string, msg Message) {
	if rl.store != nil {
		if err := rl.store.Append(ctx, phone, msg); err != nil {
			rl.logger.Warn("failed to persist transcript message", "error", err, "phone", phone)
		}
	}
	rl.Broadcast(Event{Event: "new-message", Data: msg})
}

// Broadcast pushes one event to every connected client. Write failures drop
// the client; the read loop notices on its next read.
func (rl *Relay) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		rl.logger.Error("failed to marshal dashboard event", "error", err)
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for conn := range rl.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			rl.logger.Warn("failed to push dashboard event", "error", err)
			delete(rl.conns, conn)
			conn.Close()
		}
	}
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
