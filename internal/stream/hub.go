// Package stream broadcasts generation progress to WebSocket viewers.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/tilegen/internal/config"
	"github.com/lawnchairsociety/tilegen/internal/logger"
	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

// MessageType identifies a stream message.
type MessageType string

const (
	MessageRunStarted   MessageType = "run_started"
	MessageNodeResolved MessageType = "node_resolved"
	MessageRunFinished  MessageType = "run_finished"
)

// RunInfo describes a generation attempt as it starts.
type RunInfo struct {
	Map         string `json:"map"`
	Fingerprint string `json:"fingerprint"`
	Shape       string `json:"shape"`
	Seed        int64  `json:"seed"`
	Attempt     int    `json:"attempt"`
	Nodes       int    `json:"nodes"`
}

// RunResult describes how a generation attempt ended.
type RunResult struct {
	Status       string `json:"status"`
	FailureKind  string `json:"failure_kind,omitempty"`
	Error        string `json:"error,omitempty"`
	Steps        int    `json:"steps"`
	Forced       int    `json:"forced"`
	Propagations int    `json:"propagations"`
}

// Message is the JSON document sent to viewers.
type Message struct {
	Type   MessageType `json:"type"`
	Run    *RunInfo    `json:"run,omitempty"`
	Event  *wfc.Event  `json:"event,omitempty"`
	Result *RunResult  `json:"result,omitempty"`
}

// Hub fans generation messages out to connected viewers. It implements
// wfc.Observer. Viewers that join mid-run are sent the current run's
// messages first so they can rebuild the partial map.
type Hub struct {
	cfg     config.StreamConfig
	limiter *connLimiter

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	history [][]byte
	closed  bool
}

// NewHub creates a hub using cfg for origin checks and connection limits.
func NewHub(cfg config.StreamConfig) *Hub {
	return &Hub{
		cfg:     cfg,
		limiter: newConnLimiter(cfg.MaxPerIP, cfg.MaxClients),
		viewers: make(map[*viewer]struct{}),
	}
}

// RunStarted clears the replay history and announces a new attempt.
func (h *Hub) RunStarted(info RunInfo) {
	h.mu.Lock()
	h.history = nil
	h.mu.Unlock()

	h.broadcast(Message{Type: MessageRunStarted, Run: &info})
}

// NodeResolved broadcasts one resolution event.
func (h *Hub) NodeResolved(e wfc.Event) {
	h.broadcast(Message{Type: MessageNodeResolved, Event: &e})
}

// RunFinished broadcasts the outcome of the current attempt.
func (h *Hub) RunFinished(result RunResult) {
	h.broadcast(Message{Type: MessageRunFinished, Result: &result})
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode stream message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, data)
	for v := range h.viewers {
		if !v.enqueue(data) {
			logger.Warning("Dropping slow stream viewer", "client_ip", v.ip)
			h.removeLocked(v)
		}
	}
}

// register creates a viewer for conn with room for the replay history and
// queues that history. Returns false if the hub is closed.
func (h *Hub) register(conn *websocket.Conn, ip string) (*viewer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	v := newViewer(conn, ip, len(h.history)+sendBuffer)
	for _, data := range h.history {
		v.enqueue(data)
	}
	h.viewers[v] = struct{}{}
	return v, true
}

func (h *Hub) unregister(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v)
}

func (h *Hub) removeLocked(v *viewer) {
	if _, ok := h.viewers[v]; !ok {
		return
	}
	delete(h.viewers, v)
	v.close()
	h.limiter.release(v.ip)
}

// Handler returns the HTTP handler serving the feed on /ws and a JSON summary
// of the hub on /status.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleUpgrade)
	mux.HandleFunc("/status", h.handleStatus)
	return mux
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	status := struct {
		Viewers  int `json:"viewers"`
		Messages int `json:"messages"`
	}{len(h.viewers), len(h.history)}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleUpgrade upgrades an HTTP connection to a viewer WebSocket.
func (h *Hub) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := realIP(r)

	if !h.limiter.tryAcquire(clientIP) {
		logger.Warning("Stream connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := h.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Stream connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Stream upgrade failed", "error", err)
		h.limiter.release(clientIP)
		return
	}

	v, ok := h.register(conn, clientIP)
	if !ok {
		conn.Close()
		h.limiter.release(clientIP)
		return
	}
	go v.writePump()
	logger.Debug("Stream viewer connected", "client_ip", clientIP)

	go func() {
		v.readPump(h.cfg.MaxMessageSize)
		h.unregister(v)
		logger.Debug("Stream viewer disconnected", "client_ip", clientIP)
	}()
}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for v := range h.viewers {
		h.removeLocked(v)
	}
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts the
// server down and closes the hub.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Stream server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
