package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/practicals/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var errHubClosed = stderrors.New("live reload hub closed")

// UpdateMessage is sent to every open browser.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// client is one browser connected for live reload.
type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *hub
}

// hub fans reload messages out to the connected browsers.
type hub struct {
	clients    map[*websocket.Conn]*client
	mutex      sync.RWMutex
	broadcast  chan []byte
	register   chan *client
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	logger     logging.Logger
}

func newHub(logger logging.Logger) *hub {
	return &hub{
		clients:    make(map[*websocket.Conn]*client),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("livereload"),
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins(),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  s.hub,
	}

	select {
	case s.hub.register <- c:
	case <-s.hub.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go c.writePump()
	go c.readPump()
}

// allowedOrigins lists the hosts a browser may connect from besides the
// request's own host.
func (s *Server) allowedOrigins() []string {
	port := strconv.Itoa(s.config.Server.Port)
	return []string{
		s.config.Server.Host + ":" + port,
		"localhost:" + port,
		"127.0.0.1:" + port,
	}
}

// checkOrigin accepts same-host origins and the configured server address.
// Requests without an Origin header are rejected.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	if originURL.Host == r.Host {
		return true
	}
	for _, allowed := range s.allowedOrigins() {
		if originURL.Host == allowed {
			return true
		}
	}
	return false
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.close()
			return
		case <-h.done:
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c.conn] = c
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client connected", "clients", count)

		case conn := <-h.unregister:
			h.mutex.Lock()
			if c, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				close(c.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn, c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow client; drop it rather than block the others.
					delete(h.clients, conn)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// broadcastMessage queues msg for every connected client.
func (h *hub) broadcastMessage(msg UpdateMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn(context.Background(), err, "Failed to marshal message")
		data = []byte(`{"type":"full_reload"}`)
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return errHubClosed
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// close disconnects every client and stops the hub.
func (h *hub) close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mutex.Lock()
		for conn, c := range h.clients {
			delete(h.clients, conn)
			close(c.send)
		}
		h.mutex.Unlock()
	})
}

// readPump drains the connection so that pings are answered and a closed
// browser tab is noticed.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c.conn:
		case <-c.hub.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), pongWait)
		_, _, err := c.conn.Read(ctx)
		cancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				c.hub.logger.Debug(context.Background(), "WebSocket read ended", "error", err.Error())
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.hub.logger.Warn(context.Background(), err, "WebSocket write failed")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
