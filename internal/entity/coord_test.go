package entity

import (
	"testing"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Parse(t *testing.T) {
	grid := DefaultGrid()

	t.Run("Canonicalizes lower case and whitespace", func(t *testing.T) {
		// Given: a raw coordinate typed in lower case with padding
		raw := " b2 "

		// When: parsing it
		coord, err := grid.Parse(raw)

		// Then: it resolves to row 1 column 1 rendered as B2
		require.NoError(t, err)
		assert.Equal(t, Coord{Row: 1, Col: 1}, coord)
		assert.Equal(t, "B2", coord.String())
	})

	t.Run("Rejects coordinates outside the grid", func(t *testing.T) {
		for _, raw := range []string{"E1", "A5", "A0", "Z9", "", "A", "1A", "AB"} {
			// When: parsing a coordinate outside a 4x4 grid
			_, err := grid.Parse(raw)

			// Then: it fails with ErrOutOfBounds
			require.ErrorIs(t, err, apperror.ErrOutOfBounds, raw)
		}
	})

	t.Run("Rejects column numbers that are not plain digits", func(t *testing.T) {
		for _, raw := range []string{"A+1", "A01", "A-1", "B 2", "C1.0"} {
			// When: parsing a column with a sign, a leading zero or other noise
			_, err := grid.Parse(raw)

			// Then: it is rejected instead of being canonicalized
			require.ErrorIs(t, err, apperror.ErrOutOfBounds, raw)
		}
	})
}

func TestGrid_Expand(t *testing.T) {
	t.Run("Single cell span", func(t *testing.T) {
		// Given: the default grid allowing one cell ships
		grid := DefaultGrid()

		// When: expanding a span that starts and ends on the same cell
		cells, err := grid.Expand(Span{From: "c3", To: "C3"})

		// Then: one canonical cell is returned
		require.NoError(t, err)
		assert.Equal(t, []string{"C3"}, cells)
	})

	t.Run("Reversed span is normalized", func(t *testing.T) {
		// Given: a grid allowing three cell ships
		grid := Grid{Rows: 4, Cols: 4, MaxShipCells: 3}

		// When: expanding a vertical span written bottom to top
		cells, err := grid.Expand(Span{From: "C2", To: "A2"})

		// Then: cells come back in row-major order
		require.NoError(t, err)
		assert.Equal(t, []string{"A2", "B2", "C2"}, cells)
	})

	t.Run("Rejects spans longer than the ship", func(t *testing.T) {
		// Given: the default grid
		grid := DefaultGrid()

		// When: expanding a two cell span
		_, err := grid.Expand(Span{From: "A1", To: "A2"})

		// Then: it is an invalid placement
		require.ErrorIs(t, err, apperror.ErrInvalidPlacement)
	})

	t.Run("Rejects diagonal spans", func(t *testing.T) {
		// Given: a grid with room for long ships
		grid := Grid{Rows: 4, Cols: 4, MaxShipCells: 4}

		// When: expanding a diagonal span
		_, err := grid.Expand(Span{From: "A1", To: "B2"})

		// Then: it is an invalid placement
		require.ErrorIs(t, err, apperror.ErrInvalidPlacement)
	})

	t.Run("Out of bounds endpoint is both invalid placement and out of bounds", func(t *testing.T) {
		// Given: the default grid
		grid := DefaultGrid()

		// When: expanding a span ending off the board
		_, err := grid.Expand(Span{From: "A1", To: "A9"})

		// Then: both sentinels are in the chain
		require.ErrorIs(t, err, apperror.ErrInvalidPlacement)
		require.ErrorIs(t, err, apperror.ErrOutOfBounds)
		assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
	})
}
