package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_Join(t *testing.T) {
	t.Run("Owner seeds members and turn", func(t *testing.T) {
		// When: creating a room
		room := NewRoom("room-1", "alice", nil)

		// Then: the owner is the only member and holds the first turn
		assert.Equal(t, []string{"alice"}, room.Members)
		assert.Equal(t, "alice", room.Turn)
		assert.False(t, room.IsFull())
	})

	t.Run("Second member fills the room without touching the turn", func(t *testing.T) {
		// Given: a room with its owner
		room := NewRoom("room-1", "alice", nil)

		// When: bob joins
		err := room.Join("bob")

		// Then: the room is full and alice still holds the turn
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, room.Members)
		assert.Equal(t, "alice", room.Turn)
		assert.True(t, room.IsFull())
	})

	t.Run("Joining twice is a no-op", func(t *testing.T) {
		// Given: a full room
		room := NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))

		// When: bob joins again
		err := room.Join("bob")

		// Then: nothing changes
		require.NoError(t, err)
		assert.Len(t, room.Members, 2)
	})

	t.Run("Third user is rejected", func(t *testing.T) {
		// Given: a full room
		room := NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))

		// When: carol joins
		err := room.Join("carol")

		// Then: the room is full
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Members, 2)
	})
}

func TestRoom_Clone(t *testing.T) {
	// Given: a room with a time budget
	budget := Duration(30 * time.Second)
	room := NewRoom("room-1", "alice", &budget)

	// When: mutating a clone
	clone := room.Clone()
	clone.Members[0] = "mallory"
	*clone.TimeBudget = Duration(time.Minute)

	// Then: the original is untouched
	assert.Equal(t, "alice", room.Members[0])
	assert.Equal(t, Duration(30*time.Second), *room.TimeBudget)
}

func TestDuration_JSON(t *testing.T) {
	t.Run("Round trips as a duration string", func(t *testing.T) {
		// Given: a 90 second budget
		budget := Duration(90 * time.Second)

		// When: encoding it
		data, err := json.Marshal(budget)

		// Then: it is a Go duration string
		require.NoError(t, err)
		assert.JSONEq(t, `"1m30s"`, string(data))
	})

	t.Run("Rejects numbers", func(t *testing.T) {
		// When: decoding a bare number
		var budget Duration
		err := json.Unmarshal([]byte(`30`), &budget)

		// Then: it fails
		require.Error(t, err)
	})
}
