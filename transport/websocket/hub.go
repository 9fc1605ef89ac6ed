package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 32
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection. Writes go through a buffered queue
// drained by writePump, so Send never blocks the caller.
type Client struct {
	logger *slog.Logger
	conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *Client {
	return &Client{
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues message for delivery. A full queue drops the message.
func (that *Client) Send(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		that.logger.Error("failed to marshal message", "action", message.Action, "error", err)
		return
	}

	that.enqueue(data, message.Action)
}

func (that *Client) enqueue(data []byte, action string) {
	select {
	case <-that.done:
		return
	default:
	}

	select {
	case that.send <- data:
	default:
		that.logger.Warn("send queue is full, dropping message", "action", action)
	}
}

func (that *Client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("write failed", "error", err)
				that.close()
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				that.close()
				return
			}
		}
	}
}

// Hub groups clients by room id.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
	}
}

func (that *Hub) Subscribe(roomID string, client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[roomID]; !ok {
		that.rooms[roomID] = make(map[*Client]struct{})
	}
	that.rooms[roomID][client] = struct{}{}

	if _, ok := that.clients[client]; !ok {
		that.clients[client] = make(map[string]struct{})
	}
	that.clients[client][roomID] = struct{}{}
}

// Unsubscribe removes client from every room it joined.
func (that *Hub) Unsubscribe(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for roomID := range that.clients[client] {
		members := that.rooms[roomID]
		delete(members, client)
		if len(members) == 0 {
			delete(that.rooms, roomID)
		}
	}
	delete(that.clients, client)
}

// Broadcast delivers message to every subscriber of roomID except the given client, which may be nil.
func (that *Hub) Broadcast(roomID string, message Message, except *Client) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for client := range that.rooms[roomID] {
		if client == except {
			continue
		}
		client.enqueue(data, message.Action)
	}
}

func (that *Hub) Subscribers(roomID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[roomID])
}
