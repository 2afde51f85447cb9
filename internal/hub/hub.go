package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ateliernord/commandes/internal/cart"
	"github.com/ateliernord/commandes/pkg/config"
	"github.com/ateliernord/commandes/pkg/logger"
	"github.com/ateliernord/commandes/pkg/metrics"
)

// Hub keeps the set of connected viewers and guarantees each one converges
// to the authoritative cart state: a full snapshot on connect, then a
// snapshot after every cart mutation. Delivery is best-effort per viewer; a
// viewer that cannot keep up is dropped without affecting the others.
type Hub struct {
	cfg      config.HubConfig
	cart     cart.Service
	logg     *logger.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	viewers map[string]*viewer
}

// New builds the hub. Wire it to the cart with cart.OnChange(h.Broadcast).
func New(cfg config.HubConfig, cartSvc cart.Service, logg *logger.Logger, m *metrics.Metrics) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Hub{
		cfg:     cfg,
		cart:    cartSvc,
		logg:    logg,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The share URL is opened from phones on the local network;
			// there is no origin allow-list to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		viewers: map[string]*viewer{},
	}
}

// HandleWS upgrades the request, registers the viewer, pushes the current
// snapshot to it, and then serves its mutation requests until it leaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logg != nil {
			h.logg.Warn(h.logg.WithField(r.Context(), "error", err.Error()), "websocket upgrade failed")
		}
		return
	}

	v := &viewer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}

	h.register(v)
	go v.writePump(h.cfg.WriteTimeout, h.cfg.PingInterval)

	// The new viewer immediately receives the full current state, even
	// when the cart is non-empty at connect time.
	if frame, err := snapshotFrame(h.cart.Snapshot()); err == nil {
		v.trySend(frame)
	}

	ctx := r.Context()
	if h.logg != nil {
		ctx = h.logg.WithViewerID(ctx, v.id)
		h.logg.Info(ctx, "viewer connected")
	}

	defer func() {
		h.unregister(v.id)
		if h.logg != nil {
			h.logg.Info(ctx, "viewer disconnected")
		}
	}()

	conn.SetReadLimit(64 << 10)
	readDeadline := 2 * h.cfg.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		h.handleFrame(ctx, raw)
	}
}

// Broadcast fans the snapshot out to every registered viewer, the
// originator of the triggering mutation included.
func (h *Hub) Broadcast(snap cart.Snapshot) {
	frame, err := snapshotFrame(snap)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(context.Background(), "encoding snapshot frame", err)
		}
		return
	}

	h.mu.Lock()
	var stale []*viewer
	for _, v := range h.viewers {
		if !v.trySend(frame) {
			stale = append(stale, v)
		}
	}
	for _, v := range stale {
		delete(h.viewers, v.id)
		close(v.send)
	}
	count := len(h.viewers)
	h.mu.Unlock()

	h.metrics.IncBroadcast()
	h.metrics.SetViewers(count)

	if len(stale) > 0 && h.logg != nil {
		h.logg.Warn(h.logg.WithField(context.Background(), "dropped", len(stale)), "dropped unresponsive viewers")
	}
}

// ViewerCount reports the number of currently registered viewers.
func (h *Hub) ViewerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

func (h *Hub) register(v *viewer) {
	h.mu.Lock()
	h.viewers[v.id] = v
	count := len(h.viewers)
	h.mu.Unlock()
	h.metrics.SetViewers(count)
}

// unregister is idempotent; the write pump and the read loop may both
// race to remove the same viewer.
func (h *Hub) unregister(id string) {
	h.mu.Lock()
	v, ok := h.viewers[id]
	if ok {
		delete(h.viewers, id)
		close(v.send)
	}
	count := len(h.viewers)
	h.mu.Unlock()
	h.metrics.SetViewers(count)
}

// handleFrame applies one inbound frame. Errors never tear down the
// connection; they are logged per event and the read loop keeps serving.
func (h *Hub) handleFrame(ctx context.Context, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		h.logEventError(ctx, "malformed frame", err)
		return
	}

	switch envelope.Event {
	case EventUpdatePanier:
		var payload UpdatePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			h.logEventError(ctx, "malformed update_panier payload", err)
			return
		}
		update := cart.ViewerUpdate{
			ProductID: string(payload.ID),
			Element:   payload.Element,
			Quantity:  payload.Quantite,
		}
		if err := h.cart.ApplyViewerUpdate(ctx, update); err != nil {
			h.logEventError(ctx, "update_panier rejected", err)
		}
	default:
		if h.logg != nil {
			h.logg.Debug(ctx, "ignoring unknown event")
		}
	}
}

func (h *Hub) logEventError(ctx context.Context, msg string, err error) {
	if h.logg == nil {
		return
	}
	h.logg.Warn(h.logg.WithField(ctx, "error", err.Error()), msg)
}
