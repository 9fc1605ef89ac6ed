package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type userDirectory interface {
	CreateUser(ctx context.Context, name string) (*entity.User, error)
	Resolve(ctx context.Context, id string) (*entity.User, error)
}

type roomRegistry interface {
	CreateRoom(ctx context.Context, ownerID string, timeBudget *time.Duration) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, userID string) (*entity.Room, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	ListJoinable(ctx context.Context) ([]*entity.Room, error)
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
}

type createRoomRequest struct {
	OwnerID    string           `json:"ownerId" binding:"required"`
	TimeBudget *entity.Duration `json:"timeBudget"`
}

type joinRoomRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type roomHandlers struct {
	logger *slog.Logger
	users  userDirectory
	rooms  roomRegistry
}

// NewRoomRouter - builds the room service: user directory and room registry.
func NewRoomRouter(logger *slog.Logger, users userDirectory, rooms roomRegistry) http.Handler {
	handlers := &roomHandlers{
		logger: logger,
		users:  users,
		rooms:  rooms,
	}

	engine := newEngine(logger)
	engine.POST("/users", handlers.createUser)
	engine.GET("/users/:id", handlers.getUser)
	engine.POST("/rooms", handlers.createRoom)
	engine.GET("/rooms", handlers.listRooms)
	engine.GET("/rooms/:id", handlers.getRoom)
	engine.POST("/rooms/:id/join", handlers.joinRoom)

	return engine
}

func (that *roomHandlers) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := that.users.CreateUser(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (that *roomHandlers) getUser(c *gin.Context) {
	user, err := that.users.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (that *roomHandlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	var budget *time.Duration
	if req.TimeBudget != nil {
		value := time.Duration(*req.TimeBudget)
		budget = &value
	}

	room, err := that.rooms.CreateRoom(c.Request.Context(), req.OwnerID, budget)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (that *roomHandlers) joinRoom(c *gin.Context) {
	var req joinRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	room, err := that.rooms.JoinRoom(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

func (that *roomHandlers) getRoom(c *gin.Context) {
	room, err := that.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// listRooms only supports the joinable listing; the query flag may be omitted.
func (that *roomHandlers) listRooms(c *gin.Context) {
	if joinable := c.DefaultQuery("joinable", "true"); joinable != "true" {
		writeError(c, fmt.Errorf("%w: only joinable=true is supported", apperror.ErrInvalidInput))
		return
	}

	rooms, err := that.rooms.ListJoinable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}
