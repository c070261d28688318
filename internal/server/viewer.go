package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/boxnav/internal/core/events/bus"
	"github.com/zeusync/boxnav/internal/core/observability/log"
	"github.com/zeusync/boxnav/internal/core/simulation"
)

// writeTimeout caps how long a broadcast may block on one client.
const writeTimeout = 2 * time.Second

// Frame is one message pushed to viewer clients.
type Frame struct {
	Type     string                    `json:"type"`
	RunID    string                    `json:"run_id"`
	Sample   *simulation.Sample        `json:"sample,omitempty"`
	Finished *simulation.FinishedEvent `json:"finished,omitempty"`
}

// Viewer streams simulation steps to WebSocket clients so an external
// renderer or a plotting tool can follow the run live. It subscribes to
// the simulation bus; slow or broken clients are dropped, never blocking
// the simulation.
type Viewer struct {
	upgrader websocket.Upgrader
	bus      bus.Bus
	log      log.Log

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	subs    []bus.Subscription
	httpSrv *http.Server
}

// NewViewer wires a viewer to the simulation bus.
func NewViewer(b bus.Bus, logger log.Log) *Viewer {
	if logger == nil {
		logger = log.Nop()
	}
	v := &Viewer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		bus:     b,
		log:     logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
	v.subs = append(v.subs,
		b.Subscribe(simulation.EventStep, v.onStep),
		b.Subscribe(simulation.EventFinished, v.onFinished),
	)
	return v
}

// Handler returns the HTTP handler serving the /watch endpoint.
func (v *Viewer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", v.handleWatch)
	return mux
}

// Start serves the viewer on the given address until Stop is called.
func (v *Viewer) Start(addr string) error {
	v.mu.Lock()
	if v.httpSrv != nil {
		v.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	srv := &http.Server{Addr: addr, Handler: v.Handler()}
	v.httpSrv = srv
	v.mu.Unlock()

	v.log.Info("viewer listening", log.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop cancels the bus subscriptions, disconnects all clients and shuts
// the HTTP server down.
func (v *Viewer) Stop(ctx context.Context) error {
	for _, sub := range v.subs {
		sub.Cancel()
	}

	v.mu.Lock()
	for conn := range v.clients {
		_ = conn.Close()
	}
	v.clients = make(map[*websocket.Conn]struct{})
	srv := v.httpSrv
	v.httpSrv = nil
	v.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (v *Viewer) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := v.upgrader.Upgrade(w, r, nil)
	if err != nil {
		v.log.Warn("viewer upgrade failed", log.Error(err))
		return
	}

	v.mu.Lock()
	v.clients[conn] = struct{}{}
	count := len(v.clients)
	v.mu.Unlock()
	v.log.Debug("viewer client connected",
		log.String("remote", conn.RemoteAddr().String()),
		log.Int("clients", count),
	)

	// Drain (and discard) client messages to notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				v.drop(conn)
				return
			}
		}
	}()
}

func (v *Viewer) onStep(e bus.Event) {
	sample, ok := e.Data.(simulation.Sample)
	if !ok {
		return
	}
	v.broadcast(Frame{Type: "step", RunID: e.Source, Sample: &sample})
}

func (v *Viewer) onFinished(e bus.Event) {
	fin, ok := e.Data.(simulation.FinishedEvent)
	if !ok {
		return
	}
	v.broadcast(Frame{Type: "finished", RunID: e.Source, Finished: &fin})
}

func (v *Viewer) broadcast(frame Frame) {
	v.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(v.clients))
	for conn := range v.clients {
		conns = append(conns, conn)
	}
	v.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			v.log.Debug("dropping viewer client", log.Error(err))
			v.drop(conn)
		}
	}
}

func (v *Viewer) drop(conn *websocket.Conn) {
	v.mu.Lock()
	if _, ok := v.clients[conn]; ok {
		delete(v.clients, conn)
		_ = conn.Close()
	}
	v.mu.Unlock()
}
