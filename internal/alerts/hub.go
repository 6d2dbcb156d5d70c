package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"herdbook/internal/config"
	"herdbook/internal/countdown"
	"herdbook/internal/infrastructure"
)

// Options configures a Hub
type Options struct {
	TickInterval    time.Duration
	SendBuffer      int
	MaxWatches      int
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	// AllowedOrigins limits browser origins; empty allows any
	AllowedOrigins []string
}

// OptionsFromConfig maps the alerts and security sections of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TickInterval:    cfg.Alerts.TickInterval,
		SendBuffer:      cfg.Alerts.SendBuffer,
		MaxWatches:      cfg.Alerts.MaxWatches,
		ReadBufferSize:  cfg.Alerts.ReadBufferSize,
		WriteBufferSize: cfg.Alerts.WriteBufferSize,
		PingPeriod:      config.WebSocketPingPeriod,
		PongWait:        config.WebSocketPongWait,
		AllowedOrigins:  cfg.Security.AllowedOrigins,
	}
}

func (o *Options) applyDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = config.DefaultAlertTick
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = config.DefaultAlertSendBuffer
	}
	if o.MaxWatches <= 0 {
		o.MaxWatches = config.DefaultMaxWatches
	}
	if o.PongWait <= 0 {
		o.PongWait = config.WebSocketPongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
}

type inbound struct {
	client    *Client
	msg       ClientMessage
	malformed bool
}

// Hub maintains the set of active clients and their watches
type Hub struct {
	opts     Options
	clock    countdown.Clock
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound

	// count mirrors len(clients) for readers outside the hub goroutine
	mu    sync.RWMutex
	count int

	done chan struct{}
}

// NewHub creates a hub. Call Run to start it.
func NewHub(opts Options, clock countdown.Clock, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	opts.applyDefaults()
	if clock == nil {
		clock = countdown.SystemClock
	}

	h := &Hub{
		opts:       opts,
		clock:      clock,
		metrics:    metrics,
		logger:     infrastructure.WithComponent(logger, "alerts.hub"),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run owns the hub state until ctx is cancelled. On exit every client's
// send channel is closed so its write pump says goodbye.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.TickInterval)
	defer func() {
		ticker.Stop()
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
	}()

	h.logger.InfoContext(ctx, "alerts hub started",
		slog.Duration("tick_interval", h.opts.TickInterval))

	for {
		select {
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "alerts hub shutting down",
				slog.Int("clients", len(h.clients)))
			return nil

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount()
			h.metrics.RecordAlertClient(c.ctx, 1)
			c.logger.InfoContext(c.ctx, "client registered",
				slog.String("remote_addr", c.remoteAddr),
				slog.Int("total_clients", len(h.clients)))
			h.push(c, ServerMessage{Type: TypeConnection, ClientID: c.id})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				c.logger.InfoContext(c.ctx, "client unregistered",
					slog.Duration("connection_duration", time.Since(c.connectedAt)),
					slog.Int("total_clients", len(h.clients)))
			}

		case in := <-h.inbound:
			if _, ok := h.clients[in.client]; ok {
				h.handle(in)
			}

		case <-ticker.C:
			h.refresh()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ServeWS upgrades the request and attaches a new client to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "alerts feed stopped", http.StatusServiceUnavailable)
		return
	default:
	}

	ctx := infrastructure.DetachedContext(infrastructure.EnsureTraceID(r.Context()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	c := newClient(ctx, h, conn)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// deliver hands a client frame to the hub; false once the hub stopped
func (h *Hub) deliver(in inbound) bool {
	select {
	case h.inbound <- in:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c unless the hub already stopped
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) handle(in inbound) {
	c := in.client
	now := h.clock()

	if in.malformed {
		h.push(c, ServerMessage{Type: TypeError, Error: "malformed message"})
		return
	}

	switch in.msg.Type {
	case TypeWatch:
		id := strings.TrimSpace(in.msg.ID)
		if id == "" {
			h.push(c, ServerMessage{Type: TypeError, Error: "watch requires an id"})
			return
		}
		target, err := countdown.ParseTarget(in.msg.Target, now.Location())
		if err != nil {
			h.push(c, ServerMessage{Type: TypeError, ID: id, Error: err.Error()})
			return
		}
		if _, exists := c.watches[id]; !exists && len(c.watches) >= h.opts.MaxWatches {
			h.push(c, ServerMessage{Type: TypeError, ID: id, Error: fmt.Sprintf("watch limit of %d reached", h.opts.MaxWatches)})
			return
		}

		status := countdown.Classify(target, now)
		c.watches[id] = &watch{id: id, target: target, last: status}
		h.metrics.RecordClassification(c.ctx, string(status.Bucket))
		h.pushStatus(c, id, status)

	case TypeUnwatch:
		if _, ok := c.watches[in.msg.ID]; !ok {
			h.push(c, ServerMessage{Type: TypeError, ID: in.msg.ID, Error: "not watching this id"})
			return
		}
		delete(c.watches, in.msg.ID)
		h.push(c, ServerMessage{Type: TypeUnwatched, ID: in.msg.ID})

	default:
		h.push(c, ServerMessage{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", in.msg.Type)})
	}
}

// refresh re-classifies every watch and pushes the ones whose bucket or label moved
func (h *Hub) refresh() {
	now := h.clock()
	pushed := 0

	for c := range h.clients {
		for _, w := range c.watches {
			status := countdown.Classify(w.target, now)
			if status.Bucket == w.last.Bucket && status.Label == w.last.Label {
				continue
			}
			w.last = status
			if !h.pushStatus(c, w.id, status) {
				break
			}
			pushed++
		}
	}

	if pushed > 0 {
		h.logger.Debug("countdown updates pushed", slog.Int("count", pushed))
	}
}

func (h *Hub) pushStatus(c *Client, id string, status countdown.Status) bool {
	if !h.push(c, ServerMessage{Type: TypeCountdown, ID: id, Status: &status}) {
		return false
	}
	h.metrics.RecordAlertPushed(c.ctx, string(status.Bucket))
	return true
}

// push queues msg for c; a client whose buffer is full is disconnected
func (h *Hub) push(c *Client, msg ServerMessage) bool {
	select {
	case c.send <- encode(msg, h.clock()):
		return true
	default:
		c.logger.WarnContext(c.ctx, "client send buffer full, disconnecting")
		h.drop(c)
		return false
	}
}

// drop removes c and closes its send channel; hub goroutine only
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.setCount()
	h.metrics.RecordAlertClient(c.ctx, -1)
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "websocket origin rejected", slog.String("origin", origin))
	return false
}
