package roomclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/transport/apiclient"
)

// Client talks to a remote room service.
type Client struct {
	api *apiclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{api: apiclient.New(baseURL, timeout)}
}

// GetRoom returns ErrRoomNotFound for a missing room and ErrUpstream for anything else that failed.
func (that *Client) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	var room entity.Room

	err := that.api.Do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(roomID), nil, &room)
	if err == nil {
		return &room, nil
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	case apperror.KindUpstream:
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", apperror.ErrUpstream, err)
	}
}

func (that *Client) CreateUser(ctx context.Context, name string) (*entity.User, error) {
	var user entity.User

	if err := that.api.Do(ctx, http.MethodPost, "/users", map[string]string{"name": name}, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (that *Client) JoinRoom(ctx context.Context, roomID, userID string) (*entity.Room, error) {
	var room entity.Room

	path := "/rooms/" + url.PathEscape(roomID) + "/join"
	if err := that.api.Do(ctx, http.MethodPost, path, map[string]string{"userId": userID}, &room); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	return &room, nil
}

func (that *Client) ListJoinable(ctx context.Context) ([]*entity.Room, error) {
	var rooms []*entity.Room

	if err := that.api.Do(ctx, http.MethodGet, "/rooms?joinable=true", nil, &rooms); err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	return rooms, nil
}
