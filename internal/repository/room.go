package repository

import (
	"context"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// RoomRepository stores rooms. Implementations hand out copies, never shared pointers.
type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	// Update applies fn to the stored room atomically. If fn fails nothing is written.
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
	ListJoinable(ctx context.Context) ([]*entity.Room, error)
}
