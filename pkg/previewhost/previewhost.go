// Package previewhost streams render progress to connected browsers over
// a websocket and turns an incoming cancel message into a context
// cancellation the sampler observes between samples.
package previewhost

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jmoss/photontrace/pkg/rtlog"
)

// Progress is one snapshot of render state pushed to every connected
// client, mirroring a sampler.Progress buffer at the sample it was
// taken from.
type Progress struct {
	Type             string  `json:"type"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	SamplesCompleted uint64  `json:"samplesCompleted"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	RaysShot         uint64  `json:"raysShot"`
	ElapsedSeconds   float64 `json:"elapsedSeconds"`
}

type cancelMessage struct {
	Cancel bool `json:"cancel"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Host serves a websocket endpoint broadcasting Progress snapshots and
// collapsing any connected client's {"cancel":true} message into a
// single shared cancellation.
type Host struct {
	logger rtlog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex

	cancelOnce sync.Once
	cancelFn   context.CancelFunc
	ctx        context.Context
}

// New builds a Host whose Context is cancelled the first time any
// connected client sends {"cancel": true}, or when parent is done.
func New(parent context.Context, logger rtlog.Logger) *Host {
	if logger == nil {
		logger = rtlog.Discard{}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Host{
		logger:   logger,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		cancelFn: cancel,
		ctx:      ctx,
	}
}

// Context is cancelled once a client requests cancellation (or the
// parent context passed to New is itself cancelled).
func (h *Host) Context() context.Context { return h.ctx }

// HandleWebSocket upgrades the request to a websocket connection and
// blocks reading client messages until the connection closes.
func (h *Host) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("previewhost: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMutex
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		var msg cancelMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Cancel {
			h.cancelOnce.Do(h.cancelFn)
		}
	}
}

// Broadcast pushes p to every connected client, dropping and closing
// any connection that errors.
func (h *Host) Broadcast(p Progress) {
	data, err := json.Marshal(p)
	if err != nil {
		h.logger.Printf("previewhost: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	var dead []*websocket.Conn
	for conn, mutex := range h.clients {
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()
		if err != nil {
			conn.Close()
			dead = append(dead, conn)
		}
	}
	h.mu.RUnlock()

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, conn := range dead {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of currently connected clients.
func (h *Host) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Cancel triggers the host's context cancellation directly, e.g. for a
// CLI's own Ctrl-C handler rather than a client message.
func (h *Host) Cancel() { h.cancelOnce.Do(h.cancelFn) }
