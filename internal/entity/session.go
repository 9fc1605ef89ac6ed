package entity

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

type SessionStatus string

const (
	StatusAwaitingPlacement SessionStatus = "awaiting_placement"
	StatusReady             SessionStatus = "ready"
	StatusInProgress        SessionStatus = "in_progress"
	StatusFinished          SessionStatus = "finished"
)

type ShotResult string

const (
	ResultMiss ShotResult = "miss"
	ResultHit  ShotResult = "hit"
	ResultSink ShotResult = "sink"
)

type PlayerState struct {
	Placed    bool     `json:"placed"`
	ShipCells []string `json:"shipCells"`
	HitCells  []string `json:"hitCells"`
}

// sunk reports whether every placed cell has been struck.
func (that *PlayerState) sunk() bool {
	return len(that.ShipCells) > 0 && len(that.HitCells) == len(that.ShipCells)
}

type Shot struct {
	Shooter string     `json:"shooter"`
	Coord   string     `json:"coord"`
	Result  ShotResult `json:"result"`
}

type FireOutcome struct {
	Coord    string     `json:"coord"`
	Result   ShotResult `json:"result"`
	GameOver bool       `json:"gameOver"`
	NextTurn string     `json:"nextTurn"`
	Winner   string     `json:"winner,omitempty"`
}

// Session is the per-room game state owned by the engine. It is not safe for
// concurrent use; the engine serializes access per room.
type Session struct {
	RoomID  string
	Members []string
	Turn    string
	Status  SessionStatus
	Winner  string
	Players map[string]*PlayerState
	Shots   []Shot

	grid Grid
}

// NewSession seeds members and turn from the registry's record.
func NewSession(room *Room, grid Grid) *Session {
	return &Session{
		RoomID:  room.ID,
		Members: slices.Clone(room.Members),
		Turn:    room.Turn,
		Status:  StatusAwaitingPlacement,
		Players: make(map[string]*PlayerState),
		grid:    grid,
	}
}

// SyncMembers refreshes the cached membership. Membership only grows, so
// unknown ids are appended and nothing is removed. Turn is left untouched.
func (that *Session) SyncMembers(members []string) {
	for _, id := range members {
		if !slices.Contains(that.Members, id) {
			that.Members = append(that.Members, id)
		}
	}

	if that.Turn == "" && len(that.Members) > 0 {
		that.Turn = that.Members[0]
	}
}

func (that *Session) IsMember(playerID string) bool {
	return slices.Contains(that.Members, playerID)
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

// Opponent returns the other member of a two-player room.
func (that *Session) Opponent(playerID string) (string, bool) {
	for _, id := range that.Members {
		if id != playerID {
			return id, true
		}
	}

	return "", false
}

func (that *Session) player(playerID string) *PlayerState {
	state, ok := that.Players[playerID]
	if !ok {
		state = &PlayerState{}
		that.Players[playerID] = state
	}

	return state
}

// Place stores the ship covered by span. Validation fully precedes the commit.
func (that *Session) Place(playerID string, span Span) error {
	if !that.IsMember(playerID) {
		return apperror.ErrNotAMember
	}

	if that.IsFinished() {
		return apperror.ErrSessionFinished
	}

	if state, ok := that.Players[playerID]; ok && state.Placed {
		return apperror.ErrAlreadyPlaced
	}

	cells, err := that.grid.Expand(span)
	if err != nil {
		return err
	}

	if opponentID, ok := that.Opponent(playerID); ok {
		if opponent, exists := that.Players[opponentID]; exists {
			for _, cell := range cells {
				if slices.Contains(opponent.ShipCells, cell) {
					return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, cell)
				}
			}
		}
	}

	state := that.player(playerID)
	state.ShipCells = cells
	state.HitCells = []string{}
	state.Placed = true

	if that.Status == StatusAwaitingPlacement && that.allPlaced() {
		that.Status = StatusReady
	}

	return nil
}

func (that *Session) allPlaced() bool {
	if len(that.Members) < MaxRoomMembers {
		return false
	}

	for _, id := range that.Members {
		if state, ok := that.Players[id]; !ok || !state.Placed {
			return false
		}
	}

	return true
}

// Fire resolves a shot by playerID at the raw coordinate and advances the turn.
func (that *Session) Fire(playerID, rawCoord string) (FireOutcome, error) {
	if !that.IsMember(playerID) {
		return FireOutcome{}, apperror.ErrNotAMember
	}

	if that.IsFinished() {
		return FireOutcome{}, apperror.ErrSessionFinished
	}

	if that.Turn != playerID {
		return FireOutcome{}, apperror.ErrNotYourTurn
	}

	opponentID, ok := that.Opponent(playerID)
	if !ok {
		return FireOutcome{}, apperror.ErrOpponentNotReady
	}

	opponent, ok := that.Players[opponentID]
	if !ok || !opponent.Placed {
		return FireOutcome{}, apperror.ErrOpponentNotReady
	}

	if shooter, ok := that.Players[playerID]; !ok || !shooter.Placed {
		return FireOutcome{}, fmt.Errorf("%w: place your ship first", apperror.ErrGameNotStarted)
	}

	coord, err := that.grid.Parse(rawCoord)
	if err != nil {
		return FireOutcome{}, err
	}
	target := coord.String()

	result := ResultMiss
	if slices.Contains(opponent.ShipCells, target) {
		if !slices.Contains(opponent.HitCells, target) {
			opponent.HitCells = append(opponent.HitCells, target)
		}

		result = ResultHit
		if opponent.sunk() {
			result = ResultSink
		}
	}

	that.Shots = append(that.Shots, Shot{Shooter: playerID, Coord: target, Result: result})

	outcome := FireOutcome{Coord: target, Result: result, GameOver: opponent.sunk()}
	if outcome.GameOver {
		that.Status = StatusFinished
		that.Winner = playerID
		outcome.Winner = playerID

		return outcome, nil
	}

	that.Status = StatusInProgress
	that.Turn = opponentID
	outcome.NextTurn = opponentID

	return outcome, nil
}

// Surrender finishes the session with the opponent as winner and returns the opponent.
func (that *Session) Surrender(playerID string) (string, error) {
	if !that.IsMember(playerID) {
		return "", apperror.ErrNotAMember
	}

	if that.IsFinished() {
		return "", apperror.ErrSessionFinished
	}

	if that.Status != StatusReady && that.Status != StatusInProgress {
		return "", apperror.ErrGameNotStarted
	}

	opponentID, ok := that.Opponent(playerID)
	if !ok {
		return "", apperror.ErrOpponentNotReady
	}

	that.Status = StatusFinished
	that.Winner = opponentID

	return opponentID, nil
}

type SessionView struct {
	RoomID  string                 `json:"roomId"`
	Members []string               `json:"members"`
	Turn    string                 `json:"turn"`
	Status  SessionStatus          `json:"status"`
	Winner  string                 `json:"winner,omitempty"`
	Players map[string]PlayerState `json:"players"`
	Shots   []Shot                 `json:"shots"`
}

// View returns a deep copy safe to hand out after the room lock is released.
func (that *Session) View() SessionView {
	players := make(map[string]PlayerState, len(that.Members))
	for _, id := range that.Members {
		state := PlayerState{ShipCells: []string{}, HitCells: []string{}}
		if current, ok := that.Players[id]; ok {
			state.Placed = current.Placed
			state.ShipCells = append(state.ShipCells, current.ShipCells...)
			state.HitCells = append(state.HitCells, current.HitCells...)
		}
		players[id] = state
	}

	return SessionView{
		RoomID:  that.RoomID,
		Members: slices.Clone(that.Members),
		Turn:    that.Turn,
		Status:  that.Status,
		Winner:  that.Winner,
		Players: players,
		Shots:   append([]Shot{}, that.Shots...),
	}
}
