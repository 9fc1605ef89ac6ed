package entity

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const MaxRoomMembers = 2

// Duration is a time.Duration that travels over JSON as "30s".
type Duration time.Duration

func (that Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(that).String())
}

func (that *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*that = Duration(parsed)

	return nil
}

// Room is the membership and turn-seed record owned by the room registry.
// Turn is only ever seeded here; the game engine owns its progression.
type Room struct {
	ID         string    `json:"id"`
	Members    []string  `json:"members"`
	Turn       string    `json:"turn,omitempty"`
	TimeBudget *Duration `json:"timeBudget,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewRoom(id, ownerID string, timeBudget *Duration) *Room {
	return &Room{
		ID:         id,
		Members:    []string{ownerID},
		Turn:       ownerID,
		TimeBudget: timeBudget,
		CreatedAt:  time.Now().UTC(),
	}
}

func (that *Room) IsMember(userID string) bool {
	return slices.Contains(that.Members, userID)
}

func (that *Room) IsFull() bool {
	return len(that.Members) >= MaxRoomMembers
}

// Join appends userID. Joining twice is a no-op.
func (that *Room) Join(userID string) error {
	if that.IsMember(userID) {
		return nil
	}

	if that.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	that.Members = append(that.Members, userID)

	return nil
}

func (that *Room) Clone() *Room {
	clone := *that
	clone.Members = slices.Clone(that.Members)
	if that.TimeBudget != nil {
		budget := *that.TimeBudget
		clone.TimeBudget = &budget
	}

	return &clone
}
