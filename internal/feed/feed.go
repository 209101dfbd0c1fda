package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Per-client buffer of pending snapshots; slow clients drop updates
	// rather than stalling the broadcast
	sendBuffer = 8
)

// Server broadcasts confirmed fan state snapshots to WebSocket subscribers.
// Dashboards connect to /ws and receive one JSON-encoded state per change;
// the last known snapshot is replayed on connect. The current snapshot is
// also served as plain JSON on /status.
type Server struct {
	listen   string
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *device.State
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a feed server for the given listen address.
func NewServer(listen string) *Server {
	s := &Server{
		listen:  listen,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.server = &http.Server{
		Addr:    listen,
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the HTTP handler serving /ws and /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	logging.Info("State feed listening", zap.String("addr", s.listen))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("State feed server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server and closes all client connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()
	return s.server.Shutdown(ctx)
}

// Broadcast queues a state snapshot for every connected client. Clients that
// cannot keep up drop snapshots; they always eventually observe the latest
// state because every change broadcasts again.
func (s *Server) Broadcast(st device.State) {
	payload, err := json.Marshal(st)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.last = &st
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			// Slow client: drop this snapshot
		}
	}
	s.mu.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if last == nil {
		w.Write([]byte(`{}`))
		return
	}
	_ = json.NewEncoder(w).Encode(last)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.last != nil {
		if payload, err := json.Marshal(s.last); err == nil {
			c.send <- payload
		}
	}
	s.mu.Unlock()

	logging.Debug("Feed client connected", zap.String("remote_addr", r.RemoteAddr))

	go c.writePump()
	go s.readPump(c, r.RemoteAddr)
}

// readPump discards inbound messages and detects the peer closing.
func (s *Server) readPump(c *client, remoteAddr string) {
	defer func() {
		s.drop(c)
		_ = c.conn.Close()
		logging.Debug("Feed client disconnected", zap.String("remote_addr", remoteAddr))
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers queued snapshots and keeps the connection alive with
// pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
}
