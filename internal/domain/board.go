package domain

import "fmt"

// Size is the fixed board dimension.
const Size = 20

// WinLength is the number of contiguous marks that wins.
const WinLength = 5

// Mark represents a cell state.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Coord is a (row, column) position on the board.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

// Board is an immutable square grid of marks.
// Boards derived with set share every row except the one that changed.
type Board struct {
	rows [][]Mark
}

// NewBoard returns an all-empty n x n board.
func NewBoard(n int) Board {
	rows := make([][]Mark, n)
	for i := range rows {
		rows[i] = make([]Mark, n)
	}
	return Board{rows: rows}
}

// BoardFromRows builds a board from a copy of rows. Rows must be square.
func BoardFromRows(rows [][]Mark) Board {
	b := NewBoard(len(rows))
	for i, row := range rows {
		if len(row) != len(rows) {
			panic(fmt.Sprintf("domain: row %d has %d cells, want %d", i, len(row), len(rows)))
		}
		copy(b.rows[i], row)
	}
	return b
}

// Size returns the board dimension.
func (b Board) Size() int { return len(b.rows) }

// In reports whether c lies on the board.
func (b Board) In(c Coord) bool {
	n := len(b.rows)
	return c.Row >= 0 && c.Row < n && c.Col >= 0 && c.Col < n
}

// At returns the mark at row r, column c.
func (b Board) At(r, c int) Mark { return b.rows[r][c] }

// Rows returns a deep copy of the grid for rendering.
func (b Board) Rows() [][]Mark {
	out := make([][]Mark, len(b.rows))
	for i, row := range b.rows {
		out[i] = append([]Mark(nil), row...)
	}
	return out
}

// set returns a new board with m placed at c. Only row c.Row is copied.
func (b Board) set(c Coord, m Mark) Board {
	rows := make([][]Mark, len(b.rows))
	copy(rows, b.rows)
	row := append([]Mark(nil), b.rows[c.Row]...)
	row[c.Col] = m
	rows[c.Row] = row
	return Board{rows: rows}
}
