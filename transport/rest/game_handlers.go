package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type gameEngine interface {
	Place(ctx context.Context, roomID, playerID string, span entity.Span) error
	Fire(ctx context.Context, roomID, playerID, coord string) (entity.FireOutcome, error)
	Surrender(ctx context.Context, roomID, playerID string) (string, error)
	Snapshot(ctx context.Context, roomID string) (entity.SessionView, error)
}

type PlaceRequest struct {
	RoomID   string      `json:"roomId" binding:"required"`
	PlayerID string      `json:"playerId" binding:"required"`
	ShipSpan entity.Span `json:"shipSpan"`
}

type FireRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
	Coord    string `json:"coord" binding:"required"`
}

type SurrenderRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
}

type OKResponse struct {
	OK         bool   `json:"ok"`
	OpponentID string `json:"opponentId,omitempty"`
}

type gameHandlers struct {
	logger *slog.Logger
	engine gameEngine
}

// NewGameRouter - builds the game service. Realtime connections on /ws are handed to channel.
func NewGameRouter(logger *slog.Logger, engine gameEngine, channel http.Handler) http.Handler {
	handlers := &gameHandlers{
		logger: logger,
		engine: engine,
	}

	router := newEngine(logger)
	router.POST("/place", handlers.place)
	router.POST("/fire", handlers.fire)
	router.POST("/surrender", handlers.surrender)
	router.GET("/session-snapshot/:roomId", handlers.snapshot)
	if channel != nil {
		router.GET("/ws", gin.WrapH(channel))
	}

	return router
}

func (that *gameHandlers) place(c *gin.Context) {
	var req PlaceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := that.engine.Place(c.Request.Context(), req.RoomID, req.PlayerID, req.ShipSpan); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (that *gameHandlers) fire(c *gin.Context) {
	var req FireRequest
	if !bindJSON(c, &req) {
		return
	}

	outcome, err := that.engine.Fire(c.Request.Context(), req.RoomID, req.PlayerID, req.Coord)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (that *gameHandlers) surrender(c *gin.Context) {
	var req SurrenderRequest
	if !bindJSON(c, &req) {
		return
	}

	opponentID, err := that.engine.Surrender(c.Request.Context(), req.RoomID, req.PlayerID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true, OpponentID: opponentID})
}

func (that *gameHandlers) snapshot(c *gin.Context) {
	view, err := that.engine.Snapshot(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
