package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bloom/internal/domain"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 50 * time.Second
)

// StatusUpdate is the message pushed to order watchers.
type StatusUpdate struct {
	OrderID int64              `json:"orderId"`
	Status  domain.OrderStatus `json:"status"`
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	orderID int64
}

// Hub fans committed status changes out to the websockets watching each order.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan StatusUpdate
	clients    map[int64]map[*Client]bool
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan StatusUpdate, 64),
		clients:    make(map[int64]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			set, ok := h.clients[c.orderID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[c.orderID] = set
			}
			set[c] = true
		case c := <-h.unregister:
			h.drop(c)
		case upd := <-h.broadcast:
			msg, err := json.Marshal(upd)
			if err != nil {
				continue
			}
			for c := range h.clients[upd.OrderID] {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("dropping slow order watcher", zap.Int64("orderId", upd.OrderID))
					h.drop(c)
				}
			}
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = map[int64]map[*Client]bool{}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.orderID]
	if !ok {
		return
	}
	if _, exists := set[c]; exists {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.orderID)
	}
}

// Publish queues an update without blocking the caller. Updates are dropped
// when the hub is saturated.
func (h *Hub) Publish(orderID int64, status domain.OrderStatus) {
	select {
	case h.broadcast <- StatusUpdate{OrderID: orderID, Status: status}:
	default:
		h.logger.Warn("order update dropped", zap.Int64("orderId", orderID))
	}
}

// Attach registers conn as a watcher of orderID, sends the current status and
// pumps until the peer goes away.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, orderID int64, current domain.OrderStatus) {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), orderID: orderID}

	if msg, err := json.Marshal(StatusUpdate{OrderID: orderID, Status: current}); err == nil {
		c.send <- msg
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
