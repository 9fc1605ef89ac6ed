package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
)

const defaultUpstreamTimeout = 2 * time.Second

// roomSource is the read side of the room registry, local or remote.
type roomSource interface {
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
}

type Roster struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
	Turn    string   `json:"turn"`
}

// GameEngine owns every game session. The registry's membership is re-read on
// each command; the turn is taken from the registry once and then kept here.
type GameEngine struct {
	logger          *slog.Logger
	rooms           roomSource
	grid            entity.Grid
	upstreamTimeout time.Duration

	sessionsMutex sync.Mutex
	sessions      map[string]*entity.Session

	roomLocks *pkg.KeyedMutex
}

func NewGameEngine(logger *slog.Logger, rooms roomSource, grid entity.Grid, upstreamTimeout time.Duration) *GameEngine {
	if upstreamTimeout <= 0 {
		upstreamTimeout = defaultUpstreamTimeout
	}

	return &GameEngine{
		logger:          logger,
		rooms:           rooms,
		grid:            grid,
		upstreamTimeout: upstreamTimeout,

		sessions:  make(map[string]*entity.Session),
		roomLocks: pkg.NewKeyedMutex(),
	}
}

// Place - stores the player's ship. The session is created by the first successful placement.
func (that *GameEngine) Place(ctx context.Context, roomID, playerID string, span entity.Span) error {
	log := that.logger.With("method", "Place", "room_id", roomID, "player_id", playerID)

	unlock := that.roomLocks.Lock(roomID)
	defer unlock()

	room, err := that.fetchMemberRoom(ctx, roomID, playerID)
	if err != nil {
		return err
	}

	session, stored := that.lookupSession(room)
	session.SyncMembers(room.Members)

	if err = session.Place(playerID, span); err != nil {
		return fmt.Errorf("failed to place ship: %w", err)
	}

	if !stored {
		that.storeSession(session)
	}

	log.Info("ship placed", "status", session.Status)

	return nil
}

// Fire - resolves a shot and advances the engine-owned turn.
func (that *GameEngine) Fire(ctx context.Context, roomID, playerID, coord string) (entity.FireOutcome, error) {
	return that.FireAndPublish(ctx, roomID, playerID, coord, nil)
}

// FireAndPublish is Fire with a publish hook. publish runs after the commit
// while the room is still locked, so events of consecutive shots keep the
// commit order. It must not block.
func (that *GameEngine) FireAndPublish(
	ctx context.Context,
	roomID, playerID, coord string,
	publish func(entity.FireOutcome),
) (entity.FireOutcome, error) {
	log := that.logger.With("method", "Fire", "room_id", roomID, "player_id", playerID)

	unlock := that.roomLocks.Lock(roomID)
	defer unlock()

	room, err := that.fetchMemberRoom(ctx, roomID, playerID)
	if err != nil {
		return entity.FireOutcome{}, err
	}

	session, err := that.getSession(roomID)
	if err != nil {
		return entity.FireOutcome{}, err
	}
	session.SyncMembers(room.Members)

	outcome, err := session.Fire(playerID, coord)
	if err != nil {
		return entity.FireOutcome{}, fmt.Errorf("failed to fire: %w", err)
	}

	if outcome.GameOver {
		log.Info("game over", "coord", outcome.Coord, "winner", outcome.Winner)
	} else {
		log.Debug("shot resolved", "coord", outcome.Coord, "result", outcome.Result, "next_turn", outcome.NextTurn)
	}

	if publish != nil {
		publish(outcome)
	}

	return outcome, nil
}

// Surrender - finishes the session in the opponent's favour and returns the opponent id.
func (that *GameEngine) Surrender(ctx context.Context, roomID, playerID string) (string, error) {
	return that.SurrenderAndPublish(ctx, roomID, playerID, nil)
}

// SurrenderAndPublish is Surrender with a publish hook that receives the winner
// under the room lock, like FireAndPublish.
func (that *GameEngine) SurrenderAndPublish(
	ctx context.Context,
	roomID, playerID string,
	publish func(winnerID string),
) (string, error) {
	log := that.logger.With("method", "Surrender", "room_id", roomID, "player_id", playerID)

	unlock := that.roomLocks.Lock(roomID)
	defer unlock()

	room, err := that.fetchMemberRoom(ctx, roomID, playerID)
	if err != nil {
		return "", err
	}

	session, err := that.getSession(roomID)
	if err != nil {
		return "", err
	}
	session.SyncMembers(room.Members)

	opponentID, err := session.Surrender(playerID)
	if err != nil {
		return "", fmt.Errorf("failed to surrender: %w", err)
	}

	log.Info("player surrendered", "winner", opponentID)

	if publish != nil {
		publish(opponentID)
	}

	return opponentID, nil
}

// Snapshot - returns a copy of the whole session, both boards included.
func (that *GameEngine) Snapshot(ctx context.Context, roomID string) (entity.SessionView, error) {
	unlock := that.roomLocks.Lock(roomID)
	defer unlock()

	room, err := that.fetchRoom(ctx, roomID)
	if err != nil {
		return entity.SessionView{}, err
	}

	session, err := that.getSession(roomID)
	if err != nil {
		return entity.SessionView{}, err
	}
	session.SyncMembers(room.Members)

	return session.View(), nil
}

// Roster - returns membership and the current mover for a member of the room.
func (that *GameEngine) Roster(ctx context.Context, roomID, playerID string) (Roster, error) {
	unlock := that.roomLocks.Lock(roomID)
	defer unlock()

	room, err := that.fetchMemberRoom(ctx, roomID, playerID)
	if err != nil {
		return Roster{}, err
	}

	roster := Roster{RoomID: roomID, Members: room.Members, Turn: room.Turn}

	if session, sessionErr := that.getSession(roomID); sessionErr == nil {
		session.SyncMembers(room.Members)
		view := session.View()
		roster.Members = view.Members
		roster.Turn = view.Turn
	}

	return roster, nil
}

// fetchRoom reads the registry under the upstream timeout. Anything that is not
// a classified error becomes ErrUpstream.
func (that *GameEngine) fetchRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, that.upstreamTimeout)
	defer cancel()

	room, err := that.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if apperror.IsDomain(err) {
			return nil, fmt.Errorf("failed to fetch room %s: %w", roomID, err)
		}

		that.logger.With("method", "fetchRoom").Warn("room registry unavailable", "room_id", roomID, "error", err)

		return nil, fmt.Errorf("%w: %w", apperror.ErrUpstream, err)
	}

	return room, nil
}

func (that *GameEngine) fetchMemberRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	room, err := that.fetchRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.IsMember(playerID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotAMember, playerID)
	}

	return room, nil
}

// lookupSession returns the stored session, or a fresh unstored one seeded from room.
func (that *GameEngine) lookupSession(room *entity.Room) (*entity.Session, bool) {
	that.sessionsMutex.Lock()
	defer that.sessionsMutex.Unlock()

	if session, ok := that.sessions[room.ID]; ok {
		return session, true
	}

	return entity.NewSession(room, that.grid), false
}

func (that *GameEngine) storeSession(session *entity.Session) {
	that.sessionsMutex.Lock()
	defer that.sessionsMutex.Unlock()

	that.sessions[session.RoomID] = session
}

func (that *GameEngine) getSession(roomID string) (*entity.Session, error) {
	that.sessionsMutex.Lock()
	defer that.sessionsMutex.Unlock()

	session, ok := that.sessions[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrNoSession, roomID)
	}

	return session, nil
}
