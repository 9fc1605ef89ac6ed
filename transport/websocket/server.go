package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
)

type gameEngine interface {
	Place(ctx context.Context, roomID, playerID string, span entity.Span) error
	FireAndPublish(ctx context.Context, roomID, playerID, coord string, publish func(entity.FireOutcome)) (entity.FireOutcome, error)
	SurrenderAndPublish(ctx context.Context, roomID, playerID string, publish func(winnerID string)) (string, error)
	Roster(ctx context.Context, roomID, playerID string) (usecase.Roster, error)
}

type handlerFunc func(ctx context.Context, client *Client, message *Message) error

// Server is the realtime channel. Every command it accepts is forwarded to the
// same engine methods the REST handlers call.
type Server struct {
	logger   *slog.Logger
	engine   gameEngine
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, engine gameEngine) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		engine: engine,
		hub:    NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionSubscribe] = server.handleSubscribe
	server.handlers[ActionPlace] = server.handlePlace
	server.handlers[ActionFire] = server.handleFire
	server.handlers[ActionSurrender] = server.handleSurrender

	return server
}

func (that *Server) Hub() *Hub {
	return that.hub
}

// ServeHTTP - upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that.logger, conn)
	go client.writePump()

	log.Debug("websocket connection established", "remote", req.RemoteAddr)

	defer func() {
		that.hub.Unsubscribe(client)
		client.close()
	}()

	if err = that.handleMessages(req.Context(), client); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, client *Client) error {
	log := that.logger.With("method", "handleMessages")

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("unexpected close: %w", err)
			}
			return nil
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(client, errors.New("malformed message"))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(client, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sendError is only used for envelope problems, so the reason is always shown.
func (that *Server) sendError(client *Client, reason error) {
	that.send(client, EventError, ErrorFields{Error: reason.Error(), Kind: apperror.KindInvalidInput})
}

func (that *Server) send(client *Client, action string, payload any) {
	message, err := newMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to build message", "error", err)
		return
	}

	client.Send(message)
}

func (that *Server) broadcast(roomID, action string, payload any, except *Client) {
	message, err := newMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to build message", "error", err)
		return
	}

	that.hub.Broadcast(roomID, message, except)
}
