package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
)

type memoryRooms struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
	locks *pkg.KeyedMutex
}

func NewMemoryRoomRepository() RoomRepository {
	return &memoryRooms{
		rooms: make(map[string]*entity.Room),
		locks: pkg.NewKeyedMutex(),
	}
}

func (that *memoryRooms) Create(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, exists := that.rooms[room.ID]; exists {
		return fmt.Errorf("room %s already exists", room.ID)
	}

	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *memoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (that *memoryRooms) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	unlock := that.locks.Lock(id)
	defer unlock()

	room, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = fn(room); err != nil {
		return nil, err
	}

	that.mu.Lock()
	that.rooms[id] = room.Clone()
	that.mu.Unlock()

	return room, nil
}

func (that *memoryRooms) ListJoinable(_ context.Context) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	joinable := make([]*entity.Room, 0)
	for _, room := range that.rooms {
		if !room.IsFull() {
			joinable = append(joinable, room.Clone())
		}
	}

	return joinable, nil
}
