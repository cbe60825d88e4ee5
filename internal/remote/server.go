package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/logger"
)

// Path is where the control endpoint is mounted.
const Path = "/control"

const (
	writeTimeout = 2 * time.Second
	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 32
)

// client owns an outbound queue drained by its own writer goroutine, so a
// stalled peer never blocks the frame loop.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	out  chan Event

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{id: uuid.New(), conn: conn, out: make(chan Event, sendBuffer)}
}

// enqueue queues ev without blocking. It reports false when the client is
// closed or its queue is full.
func (c *client) enqueue(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- ev:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// writeLoop sends queued events until the queue is closed. A failed write
// closes the connection, which ends the read loop.
func (c *client) writeLoop(log *zap.Logger) {
	for ev := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Debug("write failed", zap.Stringer("client", c.id), zap.Error(err))
			c.conn.Close()
			return
		}
	}
}

// Server accepts websocket clients and queues their commands. Commands are
// executed by Drain, which the frame loop calls once per frame.
type Server struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	commands chan Command

	mu      sync.Mutex
	clients map[uuid.UUID]*client

	srv *http.Server
	ln  net.Listener
}

// NewServer creates a server whose queue holds up to queue pending commands.
func NewServer(queue int) *Server {
	if queue < 1 {
		queue = 16
	}
	return &Server{
		log: logger.Named("remote"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		commands: make(chan Command, queue),
		clients:  make(map[uuid.UUID]*client),
	}
}

// Handler returns the HTTP handler serving Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.serveControl)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("control endpoint stopped", zap.Error(err))
		}
	}()
	s.log.Info("control endpoint listening", zap.String("addr", ln.Addr().String()), zap.String("path", Path))
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops accepting connections and disconnects every client.
func (s *Server) Close(ctx context.Context) error {
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	s.mu.Lock()
	for id, c := range s.clients {
		c.close()
		c.conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	return err
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Drain dispatches every queued command to t without blocking and sends the
// outcome to all clients. It returns the number of commands handled.
func (s *Server) Drain(t Target) int {
	n := 0
	for {
		select {
		case c := <-s.commands:
			accepted, err := Dispatch(t, c)
			if err != nil {
				s.log.Warn("command rejected", zap.String("command", c.Name), zap.Error(err))
			} else {
				s.log.Info("command dispatched", zap.String("command", c.Name), zap.Bool("accepted", accepted))
			}
			s.Broadcast(resultEvent(c, accepted, err))
			n++
		default:
			return n
		}
	}
}

// Broadcast queues ev for every client. Clients whose queue is full are
// dropped.
func (s *Server) Broadcast(ev Event) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if !c.enqueue(ev) {
			s.log.Warn("dropping slow client", zap.Stringer("client", c.id))
			s.remove(c)
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.close()
	c.conn.Close()
}

func (s *Server) serveControl(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn)
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	go c.writeLoop(s.log)
	s.log.Info("client connected", zap.Stringer("client", c.id), zap.String("remote", r.RemoteAddr))
	defer func() {
		s.remove(c)
		s.log.Info("client disconnected", zap.Stringer("client", c.id))
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil || cmd.Name == "" {
			c.enqueue(Event{Event: "error", Error: "malformed command"})
			continue
		}
		s.log.Info("remote command received",
			zap.String("command", cmd.Name),
			zap.Bool("auto_play", cmd.AutoPlay),
			zap.Stringer("client", c.id))

		select {
		case s.commands <- cmd:
		default:
			c.enqueue(Event{Event: "error", Command: cmd.Name, Error: "command queue full"})
		}
	}
}
