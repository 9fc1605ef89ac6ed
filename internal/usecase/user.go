package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
)

const maxUserNameLength = 64

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type UserDirectory struct {
	logger   *slog.Logger
	userRepo userRepo
}

func NewUserDirectory(logger *slog.Logger, userRepo userRepo) *UserDirectory {
	return &UserDirectory{
		logger:   logger,
		userRepo: userRepo,
	}
}

// CreateUser - registers a display name under a fresh opaque id.
func (that *UserDirectory) CreateUser(ctx context.Context, name string) (*entity.User, error) {
	log := that.logger.With("method", "CreateUser")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperror.ErrInvalidInput)
	}

	if len(name) > maxUserNameLength {
		return nil, fmt.Errorf("%w: name is longer than %d bytes", apperror.ErrInvalidInput, maxUserNameLength)
	}

	user := &entity.User{
		ID:   pkg.GenerateNewID(),
		Name: name,
	}

	if err := that.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	log.Info("user created", "user_id", user.ID)

	return user, nil
}

// Resolve - returns the user or ErrUnknownUser.
func (that *UserDirectory) Resolve(ctx context.Context, id string) (*entity.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ErrUnknownUser
	}

	user, err := that.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", id, err)
	}

	return user, nil
}
