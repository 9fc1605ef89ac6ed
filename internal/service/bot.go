package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

var ErrNoFreeCells = errors.New("no free cells left")

type lobby interface {
	CreateUser(ctx context.Context, name string) (*entity.User, error)
	ListJoinable(ctx context.Context) ([]*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, userID string) (*entity.Room, error)
}

type table interface {
	Place(ctx context.Context, roomID, playerID string, span entity.Span) error
	Fire(ctx context.Context, roomID, playerID, coord string) (entity.FireOutcome, error)
	Snapshot(ctx context.Context, roomID string) (entity.SessionView, error)
	WaitOpponentReady(ctx context.Context, roomID, playerID string, maxWait time.Duration) (entity.SessionView, error)
}

// BotService is a house player. It sits in open rooms and plays random shots
// through the public APIs of both services.
type BotService struct {
	logger *slog.Logger
	lobby  lobby
	table  table
	grid   entity.Grid

	name         string
	pollInterval time.Duration
	readyTimeout time.Duration
}

func NewBotService(
	logger *slog.Logger,
	lobby lobby,
	table table,
	grid entity.Grid,
	name string,
	pollInterval, readyTimeout time.Duration,
) *BotService {
	return &BotService{
		logger:       logger,
		lobby:        lobby,
		table:        table,
		grid:         grid,
		name:         name,
		pollInterval: pollInterval,
		readyTimeout: readyTimeout,
	}
}

// Run registers the bot and keeps joining open rooms until ctx is done.
func (that *BotService) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	user, err := that.lobby.CreateUser(ctx, that.name)
	if err != nil {
		return fmt.Errorf("failed to register bot: %w", err)
	}
	log.Info("bot registered", "bot_id", user.ID, "name", user.Name)

	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		if roomID, ok := that.joinOpenRoom(ctx, user.ID); ok {
			winner, playErr := that.Play(ctx, roomID, user.ID)
			switch {
			case ctx.Err() != nil:
				return nil
			case playErr != nil:
				log.Warn("game abandoned", "room_id", roomID, "error", playErr)
			default:
				log.Info("game finished", "room_id", roomID, "won", winner == user.ID)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (that *BotService) joinOpenRoom(ctx context.Context, botID string) (string, bool) {
	log := that.logger.With("method", "joinOpenRoom", "bot_id", botID)

	rooms, err := that.lobby.ListJoinable(ctx)
	if err != nil {
		log.Warn("could not list rooms", "error", err)
		return "", false
	}

	for _, room := range rooms {
		if room.IsMember(botID) {
			continue
		}

		if _, err = that.lobby.JoinRoom(ctx, room.ID, botID); err != nil {
			// somebody else took the seat first
			log.Debug("could not join room", "room_id", room.ID, "error", err)
			continue
		}

		log.Info("joined room", "room_id", room.ID)

		return room.ID, true
	}

	return "", false
}

// Play places a ship in roomID and fires until the game is over. It returns the winner.
func (that *BotService) Play(ctx context.Context, roomID, botID string) (string, error) {
	log := that.logger.With("method", "Play", "room_id", roomID, "bot_id", botID)

	if err := that.placeShip(ctx, roomID, botID); err != nil {
		return "", err
	}

	if _, err := that.table.WaitOpponentReady(ctx, roomID, botID, that.readyTimeout); err != nil {
		return "", err
	}

	for {
		view, err := that.table.Snapshot(ctx, roomID)
		switch {
		case err != nil && apperror.KindOf(err) != apperror.KindUpstream:
			return "", fmt.Errorf("failed to read session: %w", err)
		case err != nil:
			log.Warn("game service unavailable", "error", err)
		case view.Status == entity.StatusFinished:
			return view.Winner, nil
		case view.Turn == botID:
			outcome, fireErr := that.fire(ctx, view, botID)
			if fireErr != nil {
				return "", fireErr
			}

			if outcome.GameOver {
				return outcome.Winner, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(that.pollInterval):
		}
	}
}

func (that *BotService) placeShip(ctx context.Context, roomID, botID string) error {
	cells := that.cells()
	rand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	for _, cell := range cells {
		err := that.table.Place(ctx, roomID, botID, entity.Span{From: cell, To: cell})
		switch {
		case err == nil:
			that.logger.With("method", "placeShip").Debug("ship placed", "room_id", roomID, "cell", cell)
			return nil
		case isCellOccupied(err):
			continue
		default:
			return fmt.Errorf("failed to place ship: %w", err)
		}
	}

	return ErrNoFreeCells
}

func (that *BotService) fire(ctx context.Context, view entity.SessionView, botID string) (entity.FireOutcome, error) {
	target, err := that.pickTarget(view, botID)
	if err != nil {
		return entity.FireOutcome{}, err
	}

	outcome, err := that.table.Fire(ctx, view.RoomID, botID, target)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUpstream || apperror.KindOf(err) == apperror.KindConflict {
			// the snapshot is re-read on the next tick
			return entity.FireOutcome{}, nil
		}

		return entity.FireOutcome{}, fmt.Errorf("failed to fire at %s: %w", target, err)
	}

	that.logger.With("method", "fire").Debug("shot fired", "room_id", view.RoomID, "coord", target, "result", outcome.Result)

	return outcome, nil
}

// pickTarget chooses a random cell the bot has not fired at and does not occupy itself.
func (that *BotService) pickTarget(view entity.SessionView, botID string) (string, error) {
	tried := slices.Clone(view.Players[botID].ShipCells)
	for _, shot := range view.Shots {
		if shot.Shooter == botID {
			tried = append(tried, shot.Coord)
		}
	}

	free := slices.DeleteFunc(that.cells(), func(cell string) bool {
		return slices.Contains(tried, cell)
	})

	if len(free) == 0 {
		return "", ErrNoFreeCells
	}

	return free[rand.IntN(len(free))], nil //nolint: gosec // it's ok
}

func (that *BotService) cells() []string {
	cells := make([]string, 0, that.grid.Rows*that.grid.Cols)
	for row := range that.grid.Rows {
		for col := range that.grid.Cols {
			cells = append(cells, entity.Coord{Row: row, Col: col}.String())
		}
	}

	return cells
}

// isCellOccupied recognizes the occupied-cell conflict after it crossed the wire.
func isCellOccupied(err error) bool {
	var appErr *apperror.Error
	return errors.As(err, &appErr) && appErr.Kind == apperror.KindConflict &&
		strings.Contains(appErr.Message, apperror.ErrCellOccupied.Message)
}
