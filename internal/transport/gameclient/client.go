package gameclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/transport/apiclient"
	"github.com/rocketscienceinc/battleship-backend/transport/rest"
)

var errOpponentNotPlaced = errors.New("opponent has not placed yet")

// Client drives the game service over HTTP for callers without a realtime subscription.
type Client struct {
	api *apiclient.Client

	pollInitial time.Duration
	pollMax     time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		api:         apiclient.New(baseURL, timeout),
		pollInitial: 100 * time.Millisecond,
		pollMax:     2 * time.Second,
	}
}

func (that *Client) Place(ctx context.Context, roomID, playerID string, span entity.Span) error {
	req := rest.PlaceRequest{RoomID: roomID, PlayerID: playerID, ShipSpan: span}

	return that.api.Do(ctx, http.MethodPost, "/place", req, nil)
}

func (that *Client) Fire(ctx context.Context, roomID, playerID, coord string) (entity.FireOutcome, error) {
	var outcome entity.FireOutcome
	req := rest.FireRequest{RoomID: roomID, PlayerID: playerID, Coord: coord}

	if err := that.api.Do(ctx, http.MethodPost, "/fire", req, &outcome); err != nil {
		return entity.FireOutcome{}, err
	}

	return outcome, nil
}

// Surrender returns the opponent, who is now the winner.
func (that *Client) Surrender(ctx context.Context, roomID, playerID string) (string, error) {
	var resp rest.OKResponse
	req := rest.SurrenderRequest{RoomID: roomID, PlayerID: playerID}

	if err := that.api.Do(ctx, http.MethodPost, "/surrender", req, &resp); err != nil {
		return "", err
	}

	return resp.OpponentID, nil
}

func (that *Client) Snapshot(ctx context.Context, roomID string) (entity.SessionView, error) {
	var view entity.SessionView

	if err := that.api.Do(ctx, http.MethodGet, "/session-snapshot/"+url.PathEscape(roomID), nil, &view); err != nil {
		return entity.SessionView{}, err
	}

	return view, nil
}

// WaitOpponentReady polls the snapshot with exponential backoff until the
// other member of the room has placed, or maxWait elapses.
func (that *Client) WaitOpponentReady(ctx context.Context, roomID, playerID string, maxWait time.Duration) (entity.SessionView, error) {
	var ready entity.SessionView

	operation := func() error {
		view, err := that.Snapshot(ctx, roomID)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindNotFound, apperror.KindUpstream:
				// no session yet, or the service is briefly away
				return err
			default:
				return backoff.Permanent(err)
			}
		}

		for id, state := range view.Players {
			if id != playerID && state.Placed {
				ready = view
				return nil
			}
		}

		return errOpponentNotPlaced
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = that.pollInitial
	policy.MaxInterval = that.pollMax
	policy.MaxElapsedTime = maxWait

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return entity.SessionView{}, fmt.Errorf("opponent of %s in room %s is not ready: %w", playerID, roomID, err)
	}

	return ready, nil
}
