// Package web serves a read-only diagnostics monitor: the latest frame
// snapshot as JSON and a websocket stream of it.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guidoenr/bloomer/internal/log"
)

// Snapshot is what the tick loop publishes after each update.
type Snapshot struct {
	Frame          uint64    `json:"frame"`
	Time           time.Time `json:"time"`
	Active         bool      `json:"active"`
	Preset         string    `json:"preset"`
	Passes         int       `json:"passes"`
	Threshold      float64   `json:"threshold"`
	StreakLength   int       `json:"streakLength"`
	UseLuminance   bool      `json:"useLuminance"`
	HalfResolution bool      `json:"halfResolution"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	FPS            float64   `json:"fps"`
	Status         string    `json:"status"`
}

// PresetInfo describes one preset bundle as loaded.
type PresetInfo struct {
	Name     string    `json:"name"`
	Key      string    `json:"key"`
	Passes   int       `json:"passes"`
	Strength []float64 `json:"strength"`
	Radius   []float64 `json:"radius"`
}

// Config configures the monitor.
type Config struct {
	Addr     string
	Interval time.Duration
	Presets  []PresetInfo
	Log      log.Logger
}

type Server struct {
	cfg       Config
	log       log.Logger
	upgrader  websocket.Upgrader
	broadcast chan []byte

	mu      sync.RWMutex
	last    Snapshot
	have    bool
	clients map[*websocketClient]bool
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

func NewServer(cfg Config) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.Log == nil {
		cfg.Log = log.New("web")
	}
	return &Server{
		cfg:       cfg,
		log:       cfg.Log,
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocketClient]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Publish replaces the latest snapshot. It never blocks on clients.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.have = true
	s.mu.Unlock()
}

// Latest returns the most recent snapshot and whether one was published.
func (s *Server) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

// Handler returns the monitor's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Run pushes the latest snapshot to websocket clients every interval until
// ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.broadcastLoop(ctx)
	s.statusUpdateLoop(ctx)
}

// Start serves the monitor on cfg.Addr until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Noticef("monitor listening on http://%s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "bloomer monitor")
	fmt.Fprintln(w, "  GET /api/status   latest frame snapshot")
	fmt.Fprintln(w, "  GET /api/presets  preset bundles")
	fmt.Fprintln(w, "  GET /ws           snapshot stream")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, ok := s.Latest()
	if !ok {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	presets := s.cfg.Presets
	if presets == nil {
		presets = []PresetInfo{}
	}
	writeJSON(w, presets)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warningf("websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, 16),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()
	s.log.Debugf("monitor client %s connected", conn.RemoteAddr())

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			for client := range s.clients {
				close(client.send)
				delete(s.clients, client)
			}
			s.mu.Unlock()
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(s.clients, client)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) statusUpdateLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, ok := s.Latest()
		if !ok || s.clientCount() == 0 {
			continue
		}
		data, err := json.Marshal(snap)
		if err != nil {
			s.log.Errorf("encode snapshot: %v", err)
			continue
		}
		select {
		case s.broadcast <- data:
		default:
		}
	}
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) removeClient(c *websocketClient) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
}

func (c *websocketClient) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
