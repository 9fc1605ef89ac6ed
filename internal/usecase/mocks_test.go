package usecase

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mockUserRepo struct {
	mock.Mock
}

func (that *mockUserRepo) Save(ctx context.Context, user *entity.User) error {
	return that.Called(ctx, user).Error(0)
}

func (that *mockUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := that.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

type mockUserResolver struct {
	mock.Mock
}

func (that *mockUserResolver) Resolve(ctx context.Context, id string) (*entity.User, error) {
	args := that.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

type mockRoomSource struct {
	mock.Mock
}

func (that *mockRoomSource) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	args := that.Called(ctx, roomID)
	room, _ := args.Get(0).(*entity.Room)
	if room != nil {
		room = room.Clone()
	}
	return room, args.Error(1)
}
