package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFrom parses rows of '.', 'X' and 'O'.
func boardFrom(t *testing.T, rows ...string) Board {
	t.Helper()
	grid := make([][]Mark, len(rows))
	for i, s := range rows {
		require.Len(t, s, len(rows), "row %d", i)
		grid[i] = make([]Mark, len(s))
		for j, ch := range s {
			switch ch {
			case 'X':
				grid[i][j] = X
			case 'O':
				grid[i][j] = O
			}
		}
	}
	return BoardFromRows(grid)
}

func coords(pairs ...[2]int) []Coord {
	out := make([]Coord, len(pairs))
	for i, p := range pairs {
		out[i] = Coord{p[0], p[1]}
	}
	return out
}

func TestDetectDirections(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		move Coord
		want []Coord
	}{
		{
			name: "horizontal",
			rows: []string{
				"......",
				".XXXXX",
				"......",
				"......",
				"......",
				"......",
			},
			move: Coord{1, 3},
			want: coords([2]int{1, 1}, [2]int{1, 2}, [2]int{1, 3}, [2]int{1, 4}, [2]int{1, 5}),
		},
		{
			name: "vertical",
			rows: []string{
				"O.....",
				"O.....",
				"O.....",
				"O.....",
				"O.....",
				"......",
			},
			move: Coord{4, 0},
			want: coords([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{3, 0}, [2]int{4, 0}),
		},
		{
			name: "backslash diagonal",
			rows: []string{
				"......",
				".X....",
				"..X...",
				"...X..",
				"....X.",
				".....X",
			},
			move: Coord{3, 3},
			want: coords([2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3}, [2]int{4, 4}, [2]int{5, 5}),
		},
		{
			name: "slash diagonal",
			rows: []string{
				"....O.",
				"...O..",
				"..O...",
				".O....",
				"O.....",
				"......",
			},
			move: Coord{0, 4},
			want: coords([2]int{4, 0}, [2]int{3, 1}, [2]int{2, 2}, [2]int{1, 3}, [2]int{0, 4}),
		},
		{
			name: "broken run",
			rows: []string{
				"XXOXX.",
				"......",
				"......",
				"......",
				"......",
				"......",
			},
			move: Coord{0, 4},
		},
		{
			name: "four only",
			rows: []string{
				".XXXX.",
				"......",
				"......",
				"......",
				"......",
				"......",
			},
			move: Coord{0, 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(boardFrom(t, tc.rows...), tc.move)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectSixInARowReturnsFirstFive(t *testing.T) {
	b := boardFrom(t,
		"XXXXXX",
		"......",
		"......",
		"......",
		"......",
		"......",
	)
	got := Detect(b, Coord{0, 5})
	assert.Equal(t, coords([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4}, [2]int{0, 5}), got)
}

func TestDetectCorners(t *testing.T) {
	b := NewBoard(Size)
	for _, c := range []Coord{{0, 0}, {0, Size - 1}, {Size - 1, 0}, {Size - 1, Size - 1}} {
		b = b.set(c, X)
		assert.Nil(t, Detect(b, c), "corner %v", c)
	}
}

func TestDetectSmallBoardNeverWins(t *testing.T) {
	b := boardFrom(t,
		"XXXX",
		"XXXX",
		"XXXX",
		"XXXX",
	)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			assert.Nil(t, Detect(b, Coord{r, c}))
		}
	}
}

func TestDetectDoesNotMutate(t *testing.T) {
	b := boardFrom(t,
		"XXXXX.",
		"OOOO..",
		"......",
		"......",
		"......",
		"......",
	)
	before := b.Rows()
	Detect(b, Coord{0, 2})
	assert.Equal(t, before, b.Rows())
}

// bruteForceWin scans every length-5 window on the board containing move.
func bruteForceWin(b Board, move Coord) bool {
	n := b.Size()
	mark := b.At(move.Row, move.Col)
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			for _, d := range dirs {
				hit, ok := false, true
				for k := 0; k < WinLength && ok; k++ {
					p := Coord{r + k*d[0], c + k*d[1]}
					if !b.In(p) || b.At(p.Row, p.Col) != mark {
						ok = false
					}
					if p == move {
						hit = true
					}
				}
				if ok && hit {
					return true
				}
			}
		}
	}
	return false
}

func assertValidLine(t *testing.T, b Board, move Coord, line []Coord) {
	t.Helper()
	require.Len(t, line, WinLength)
	mark := b.At(move.Row, move.Col)
	dr, dc := line[1].Row-line[0].Row, line[1].Col-line[0].Col
	require.True(t, (dr == 0 && dc == 1) || (dr == 1 && dc == 0) || (dr == 1 && dc == 1) || (dr == -1 && dc == 1),
		"unexpected direction (%d,%d)", dr, dc)
	contains := false
	for i, p := range line {
		require.Equal(t, mark, b.At(p.Row, p.Col))
		if i > 0 {
			require.Equal(t, Coord{line[i-1].Row + dr, line[i-1].Col + dc}, p)
		}
		if p == move {
			contains = true
		}
	}
	require.True(t, contains, "line %v does not contain %v", line, move)
}

func TestDetectMatchesBruteForce(t *testing.T) {
	const n = 6
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 5000; iter++ {
		mark := X + Mark(rng.Intn(2))
		grid := make([][]Mark, n)
		for r := range grid {
			grid[r] = make([]Mark, n)
			for c := range grid[r] {
				// dense enough that lines through the move are common
				if rng.Intn(10) < 7 {
					grid[r][c] = mark
				} else {
					grid[r][c] = Mark(rng.Intn(3))
				}
			}
		}
		move := Coord{rng.Intn(n), rng.Intn(n)}
		grid[move.Row][move.Col] = mark
		b := BoardFromRows(grid)

		line := Detect(b, move)
		if bruteForceWin(b, move) {
			require.NotNil(t, line, "missed win at %v on %v", move, b.Rows())
			assertValidLine(t, b, move, line)
		} else {
			require.Nil(t, line, "false win at %v on %v", move, b.Rows())
		}
	}
}
