package domain

import "errors"

// Errors returned by History operations.
var (
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrOccupied       = errors.New("cell occupied")
	ErrGameOver       = errors.New("game over")
	ErrStepOutOfRange = errors.New("step out of range")
)

// State is the coarse game outcome.
type State uint8

const (
	InProgress State = iota
	Won
	Draw
)

func (s State) String() string {
	switch s {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Status is what a renderer needs to describe the current position.
type Status struct {
	State  State
	Winner Mark
	Line   []Coord
}

// Snapshot is a board plus the move that produced it.
// LastMove is nil only for the initial empty board.
type Snapshot struct {
	Board    Board
	LastMove *Coord
}

// Order selects how Moves lists the history.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// Move is one entry of the navigable move list. Step 0 is the game start and
// has no Coord.
type Move struct {
	Step  int
	Mark  Mark
	Coord *Coord
}

// History holds every snapshot of a game and a cursor into them.
// It is not safe for concurrent use.
type History struct {
	snapshots []Snapshot
	cursor    int
	winner    Mark
	line      []Coord
}

// NewHistory returns a game on an empty n x n board with X to move.
func NewHistory(n int) *History {
	return &History{snapshots: []Snapshot{{Board: NewBoard(n)}}}
}

// NewGame returns a game on the standard board.
func NewGame() *History { return NewHistory(Size) }

// Play places the mark whose turn it is at row r, column c.
// Snapshots after the cursor are discarded first.
func (h *History) Play(r, c int) error {
	cur := h.snapshots[h.cursor].Board
	n := cur.Size()
	if h.winner != Empty || h.cursor == n*n {
		return ErrGameOver
	}
	move := Coord{Row: r, Col: c}
	if !cur.In(move) {
		return ErrOutOfBounds
	}
	if cur.At(r, c) != Empty {
		return ErrOccupied
	}

	mark := h.Next()
	next := cur.set(move, mark)
	h.snapshots = append(h.snapshots[:h.cursor+1], Snapshot{Board: next, LastMove: &move})
	h.cursor++

	if line := Detect(next, move); line != nil {
		h.winner = mark
		h.line = line
	}
	return nil
}

// JumpTo moves the cursor to step and resets the status to in progress,
// even when that snapshot was a winning one.
func (h *History) JumpTo(step int) error {
	if step < 0 || step >= len(h.snapshots) {
		return ErrStepOutOfRange
	}
	h.cursor = step
	h.winner = Empty
	h.line = nil
	return nil
}

// Current returns the snapshot at the cursor.
func (h *History) Current() Snapshot {
	s := h.snapshots[h.cursor]
	if s.LastMove != nil {
		m := *s.LastMove
		s.LastMove = &m
	}
	return s
}

// Status reports the outcome at the cursor. A win takes precedence over a
// full board.
func (h *History) Status() Status {
	if h.winner != Empty {
		return Status{State: Won, Winner: h.winner, Line: append([]Coord(nil), h.line...)}
	}
	n := h.snapshots[h.cursor].Board.Size()
	if h.cursor == n*n {
		return Status{State: Draw}
	}
	return Status{State: InProgress}
}

// Step returns the cursor.
func (h *History) Step() int { return h.cursor }

// Len returns the number of stored snapshots, including the initial one.
func (h *History) Len() int { return len(h.snapshots) }

// Next returns the mark to be placed by the next move: X on even steps.
func (h *History) Next() Mark { return markForStep(h.cursor + 1) }

// Moves lists every stored snapshot's move in the requested order.
// Storage order is never changed.
func (h *History) Moves(order Order) []Move {
	out := make([]Move, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = Move{Step: i}
		if s.LastMove != nil {
			c := *s.LastMove
			out[i].Coord = &c
			out[i].Mark = markForStep(i)
		}
	}
	return Ordered(out, order)
}

// Ordered returns moves (given in ascending step order) arranged by order.
// The input slice is not modified.
func Ordered(moves []Move, order Order) []Move {
	out := make([]Move, len(moves))
	if order != Descending {
		copy(out, moves)
		return out
	}
	for i, m := range moves {
		out[len(moves)-1-i] = m
	}
	return out
}

// markForStep returns who placed snapshot i (i > 0): X on odd steps.
func markForStep(i int) Mark {
	if i%2 == 1 {
		return X
	}
	return O
}
