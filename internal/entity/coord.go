package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const maxGridRows = 26

// Grid describes the board every session in a deployment is played on.
type Grid struct {
	Rows         int `json:"rows"`
	Cols         int `json:"cols"`
	MaxShipCells int `json:"maxShipCells"`
}

func DefaultGrid() Grid {
	return Grid{Rows: 4, Cols: 4, MaxShipCells: 1}
}

// Coord is a zero-based cell position. Use Grid.Parse to build one from user input.
type Coord struct {
	Row int
	Col int
}

// String renders the canonical form, e.g. "B2".
func (that Coord) String() string {
	return fmt.Sprintf("%c%d", 'A'+rune(that.Row), that.Col+1)
}

// Span is a straight ship placement from one cell to another, both inclusive.
type Span struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Parse canonicalizes raw ("b2", " B2 ") into a coordinate inside the grid.
func (that Grid) Parse(raw string) (Coord, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if len(value) < 2 {
		return Coord{}, fmt.Errorf("%w: %q", apperror.ErrOutOfBounds, raw)
	}

	letter := value[0]
	if letter < 'A' || letter > 'Z' {
		return Coord{}, fmt.Errorf("%w: bad row in %q", apperror.ErrOutOfBounds, raw)
	}

	column := value[1:]
	if !isColumnNumber(column) {
		return Coord{}, fmt.Errorf("%w: bad column in %q", apperror.ErrOutOfBounds, raw)
	}

	number, err := strconv.Atoi(column)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: bad column in %q", apperror.ErrOutOfBounds, raw)
	}

	coord := Coord{Row: int(letter - 'A'), Col: number - 1}
	if !that.Contains(coord) {
		return Coord{}, fmt.Errorf("%w: %q", apperror.ErrOutOfBounds, raw)
	}

	return coord, nil
}

// isColumnNumber accepts plain decimal digits without a sign or leading zero.
func isColumnNumber(value string) bool {
	if value == "" || value[0] == '0' {
		return false
	}

	for i := range len(value) {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}

	return true
}

func (that Grid) Contains(coord Coord) bool {
	rows := min(that.Rows, maxGridRows)
	return coord.Row >= 0 && coord.Row < rows && coord.Col >= 0 && coord.Col < that.Cols
}

// Expand returns the canonical cells covered by span in row-major order.
func (that Grid) Expand(span Span) ([]string, error) {
	from, err := that.Parse(span.From)
	if err != nil {
		return nil, fmt.Errorf("%w: from: %w", apperror.ErrInvalidPlacement, err)
	}

	to, err := that.Parse(span.To)
	if err != nil {
		return nil, fmt.Errorf("%w: to: %w", apperror.ErrInvalidPlacement, err)
	}

	if from.Row != to.Row && from.Col != to.Col {
		return nil, fmt.Errorf("%w: span %s-%s is not axis-aligned", apperror.ErrInvalidPlacement, from, to)
	}

	if from.Row > to.Row || from.Col > to.Col {
		from, to = to, from
	}

	cells := make([]string, 0, max(to.Row-from.Row, to.Col-from.Col)+1)
	seen := make(map[string]struct{})
	for row := from.Row; row <= to.Row; row++ {
		for col := from.Col; col <= to.Col; col++ {
			cell := Coord{Row: row, Col: col}.String()
			if _, dup := seen[cell]; dup {
				return nil, fmt.Errorf("%w: duplicate cell %s", apperror.ErrInvalidPlacement, cell)
			}
			seen[cell] = struct{}{}
			cells = append(cells, cell)
		}
	}

	if that.MaxShipCells > 0 && len(cells) > that.MaxShipCells {
		return nil, fmt.Errorf("%w: ship covers %d cells, at most %d allowed",
			apperror.ErrInvalidPlacement, len(cells), that.MaxShipCells)
	}

	return cells, nil
}
