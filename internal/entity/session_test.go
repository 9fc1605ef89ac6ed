package entity

import (
	"testing"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFullSession(t *testing.T) *Session {
	t.Helper()

	room := NewRoom("room-1", "alice", nil)
	require.NoError(t, room.Join("bob"))

	return NewSession(room, DefaultGrid())
}

func newPlacedSession(t *testing.T) *Session {
	t.Helper()

	session := newFullSession(t)
	require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))
	require.NoError(t, session.Place("bob", Span{From: "B2", To: "B2"}))

	return session
}

func TestSession_Place(t *testing.T) {
	t.Run("Both placements make the session ready", func(t *testing.T) {
		// Given: a full room session
		session := newFullSession(t)

		// When: both players place
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))
		assert.Equal(t, StatusAwaitingPlacement, session.Status)
		require.NoError(t, session.Place("bob", Span{From: "b2", To: "b2"}))

		// Then: the session is ready and cells are canonical
		assert.Equal(t, StatusReady, session.Status)
		assert.Equal(t, []string{"B2"}, session.Players["bob"].ShipCells)
	})

	t.Run("Second placement by the same player is rejected", func(t *testing.T) {
		// Given: alice already placed
		session := newFullSession(t)
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))

		// When: she places again
		err := session.Place("alice", Span{From: "C3", To: "C3"})

		// Then: it fails and the original ship stays
		require.ErrorIs(t, err, apperror.ErrAlreadyPlaced)
		assert.Equal(t, []string{"A1"}, session.Players["alice"].ShipCells)
	})

	t.Run("Cell held by the opponent is rejected", func(t *testing.T) {
		// Given: alice placed at A1
		session := newFullSession(t)
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))

		// When: bob places on the same cell
		err := session.Place("bob", Span{From: "a1", To: "A1"})

		// Then: it conflicts and bob has nothing placed
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		_, placed := session.Players["bob"]
		assert.False(t, placed)
	})

	t.Run("Non-member is rejected", func(t *testing.T) {
		// Given: a full room session
		session := newFullSession(t)

		// When: a stranger places
		err := session.Place("carol", Span{From: "A1", To: "A1"})

		// Then: the stranger is not a member
		require.ErrorIs(t, err, apperror.ErrNotAMember)
	})

	t.Run("Out of bounds placement is invalid", func(t *testing.T) {
		// Given: a full room session
		session := newFullSession(t)

		// When: alice places off the board
		err := session.Place("alice", Span{From: "E1", To: "E1"})

		// Then: it is an invalid placement
		require.ErrorIs(t, err, apperror.ErrInvalidPlacement)
	})
}

func TestSession_Fire(t *testing.T) {
	t.Run("Miss passes the turn", func(t *testing.T) {
		// Given: both ships placed and alice to move
		session := newPlacedSession(t)

		// When: alice misses
		outcome, err := session.Fire("alice", "C3")

		// Then: bob gets the turn
		require.NoError(t, err)
		assert.Equal(t, ResultMiss, outcome.Result)
		assert.False(t, outcome.GameOver)
		assert.Equal(t, "bob", outcome.NextTurn)
		assert.Equal(t, "bob", session.Turn)
		assert.Equal(t, StatusInProgress, session.Status)
	})

	t.Run("Sinking the only ship ends the game", func(t *testing.T) {
		// Given: both ships placed and alice to move
		session := newPlacedSession(t)

		// When: alice fires at bob's ship
		outcome, err := session.Fire("alice", "b2")

		// Then: the game is over and the turn is frozen
		require.NoError(t, err)
		assert.Equal(t, ResultSink, outcome.Result)
		assert.True(t, outcome.GameOver)
		assert.Empty(t, outcome.NextTurn)
		assert.Equal(t, "alice", outcome.Winner)
		assert.Equal(t, StatusFinished, session.Status)
		assert.Equal(t, "alice", session.Turn)
		assert.Equal(t, []Shot{{Shooter: "alice", Coord: "B2", Result: ResultSink}}, session.Shots)
	})

	t.Run("Hit before sink on a longer ship", func(t *testing.T) {
		// Given: a grid with two cell ships
		room := NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))
		session := NewSession(room, Grid{Rows: 4, Cols: 4, MaxShipCells: 2})
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))
		require.NoError(t, session.Place("bob", Span{From: "C1", To: "C2"}))

		// When: alice hits one of the two cells
		outcome, err := session.Fire("alice", "C1")

		// Then: it is a hit and the game continues
		require.NoError(t, err)
		assert.Equal(t, ResultHit, outcome.Result)
		assert.False(t, outcome.GameOver)
		assert.Equal(t, "bob", outcome.NextTurn)
	})

	t.Run("Firing again at a hit cell confirms the hit once", func(t *testing.T) {
		// Given: alice already hit C1 of bob's two cell ship and bob missed
		room := NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))
		session := NewSession(room, Grid{Rows: 4, Cols: 4, MaxShipCells: 2})
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))
		require.NoError(t, session.Place("bob", Span{From: "C1", To: "C2"}))
		_, err := session.Fire("alice", "C1")
		require.NoError(t, err)
		_, err = session.Fire("bob", "D4")
		require.NoError(t, err)

		// When: alice fires at C1 again
		outcome, err := session.Fire("alice", "c1")

		// Then: it is still a hit, the hit set has no duplicate and the turn passes
		require.NoError(t, err)
		assert.Equal(t, ResultHit, outcome.Result)
		assert.False(t, outcome.GameOver)
		assert.Equal(t, "bob", outcome.NextTurn)
		assert.Equal(t, "bob", session.Turn)
		assert.Equal(t, []string{"C1"}, session.Players["bob"].HitCells)
		assert.Subset(t, session.Players["bob"].ShipCells, session.Players["bob"].HitCells)
		assert.Len(t, session.Shots, 3)
	})

	t.Run("A repeated hit does not count towards the sink", func(t *testing.T) {
		room := NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))
		session := NewSession(room, Grid{Rows: 4, Cols: 4, MaxShipCells: 2})
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))
		require.NoError(t, session.Place("bob", Span{From: "C1", To: "C2"}))
		for _, shot := range []struct{ shooter, coord string }{
			{"alice", "C1"}, {"bob", "D4"}, {"alice", "C1"}, {"bob", "D3"},
		} {
			_, err := session.Fire(shot.shooter, shot.coord)
			require.NoError(t, err)
		}

		outcome, err := session.Fire("alice", "C2")

		require.NoError(t, err)
		assert.Equal(t, ResultSink, outcome.Result)
		assert.True(t, outcome.GameOver)
		assert.Equal(t, []string{"C1", "C2"}, session.Players["bob"].HitCells)
	})

	t.Run("Out of turn fire is rejected", func(t *testing.T) {
		// Given: alice to move
		session := newPlacedSession(t)

		// When: bob fires
		_, err := session.Fire("bob", "A1")

		// Then: it is not his turn
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, session.Shots)
	})

	t.Run("Fire before the opponent placed", func(t *testing.T) {
		// Given: only alice placed
		session := newFullSession(t)
		require.NoError(t, session.Place("alice", Span{From: "A1", To: "A1"}))

		// When: alice fires
		_, err := session.Fire("alice", "B2")

		// Then: the opponent is not ready
		require.ErrorIs(t, err, apperror.ErrOpponentNotReady)
	})

	t.Run("Fire before the shooter placed", func(t *testing.T) {
		// Given: only bob placed
		session := newFullSession(t)
		require.NoError(t, session.Place("bob", Span{From: "B2", To: "B2"}))

		// When: alice fires
		_, err := session.Fire("alice", "B2")

		// Then: the game has not started for her
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("Fire in a one member room", func(t *testing.T) {
		// Given: a room nobody joined yet
		session := NewSession(NewRoom("room-1", "alice", nil), DefaultGrid())

		// When: the owner fires
		_, err := session.Fire("alice", "A1")

		// Then: there is no opponent to shoot at
		require.ErrorIs(t, err, apperror.ErrOpponentNotReady)
	})

	t.Run("Out of bounds fire keeps the turn", func(t *testing.T) {
		// Given: alice to move
		session := newPlacedSession(t)

		// When: alice fires off the board
		_, err := session.Fire("alice", "Z9")

		// Then: it fails and she keeps the turn
		require.ErrorIs(t, err, apperror.ErrOutOfBounds)
		assert.Equal(t, "alice", session.Turn)
	})

	t.Run("Fire after the game ended", func(t *testing.T) {
		// Given: a finished game
		session := newPlacedSession(t)
		_, err := session.Fire("alice", "B2")
		require.NoError(t, err)

		// When: anyone fires
		_, err = session.Fire("bob", "A1")

		// Then: the session is finished
		require.ErrorIs(t, err, apperror.ErrSessionFinished)
	})
}

func TestSession_Surrender(t *testing.T) {
	t.Run("Opponent wins", func(t *testing.T) {
		// Given: a ready session
		session := newPlacedSession(t)

		// When: bob surrenders
		winner, err := session.Surrender("bob")

		// Then: alice wins
		require.NoError(t, err)
		assert.Equal(t, "alice", winner)
		assert.Equal(t, StatusFinished, session.Status)
		assert.Equal(t, "alice", session.Winner)
	})

	t.Run("Before placement finished", func(t *testing.T) {
		// Given: a session awaiting placement
		session := newFullSession(t)

		// When: alice surrenders
		_, err := session.Surrender("alice")

		// Then: the game has not started
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("Twice", func(t *testing.T) {
		// Given: a surrendered session
		session := newPlacedSession(t)
		_, err := session.Surrender("alice")
		require.NoError(t, err)

		// When: surrendering again
		_, err = session.Surrender("bob")

		// Then: the session is finished
		require.ErrorIs(t, err, apperror.ErrSessionFinished)
	})
}

func TestSession_SyncMembers(t *testing.T) {
	// Given: a session seeded before bob joined
	session := NewSession(NewRoom("room-1", "alice", nil), DefaultGrid())

	// When: the registry reports bob
	session.SyncMembers([]string{"alice", "bob"})
	session.SyncMembers([]string{"alice"})

	// Then: bob is kept and the turn seed is untouched
	assert.Equal(t, []string{"alice", "bob"}, session.Members)
	assert.Equal(t, "alice", session.Turn)
}

func TestSession_View(t *testing.T) {
	// Given: a placed session
	session := newPlacedSession(t)

	// When: mutating a view
	view := session.View()
	view.Players["alice"].ShipCells[0] = "D4"
	view.Members[0] = "mallory"

	// Then: the session is untouched
	assert.Equal(t, []string{"A1"}, session.Players["alice"].ShipCells)
	assert.Equal(t, "alice", session.Members[0])
}
