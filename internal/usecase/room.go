package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
)

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
	ListJoinable(ctx context.Context) ([]*entity.Room, error)
}

type userResolver interface {
	Resolve(ctx context.Context, id string) (*entity.User, error)
}

// RoomRegistry owns room membership and the turn seed.
type RoomRegistry struct {
	logger   *slog.Logger
	roomRepo roomRepo
	users    userResolver
}

func NewRoomRegistry(logger *slog.Logger, roomRepo roomRepo, users userResolver) *RoomRegistry {
	return &RoomRegistry{
		logger:   logger,
		roomRepo: roomRepo,
		users:    users,
	}
}

func (that *RoomRegistry) CreateRoom(ctx context.Context, ownerID string, timeBudget *time.Duration) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	if _, err := that.users.Resolve(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}

	var budget *entity.Duration
	if timeBudget != nil {
		if *timeBudget < 0 {
			return nil, fmt.Errorf("%w: time budget must not be negative", apperror.ErrInvalidInput)
		}
		value := entity.Duration(*timeBudget)
		budget = &value
	}

	room := entity.NewRoom(pkg.GenerateNewID(), ownerID, budget)
	if err := that.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("room created", "room_id", room.ID, "owner_id", ownerID)

	return room, nil
}

// JoinRoom - adds userID to the room. Joining a room twice returns it unchanged.
func (that *RoomRegistry) JoinRoom(ctx context.Context, roomID, userID string) (*entity.Room, error) {
	log := that.logger.With("method", "JoinRoom")

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if room.IsMember(userID) {
		return room, nil
	}

	if room.IsFull() {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, roomID)
	}

	if _, err = that.users.Resolve(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	room, err = that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		return room.Join(userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	log.Info("user joined room", "room_id", roomID, "user_id", userID, "members", len(room.Members))

	return room, nil
}

func (that *RoomRegistry) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (that *RoomRegistry) ListJoinable(ctx context.Context) ([]*entity.Room, error) {
	rooms, err := that.roomRepo.ListJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	return rooms, nil
}
