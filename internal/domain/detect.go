package domain

// Detect reports the winning line through move, or nil when there is none.
// The mark at move must be non-empty. Only a window of +-4 cells around move
// is inspected on each of the four axes.
func Detect(b Board, move Coord) []Coord {
	n := b.Size()
	mark := b.At(move.Row, move.Col)
	if mark == Empty {
		return nil
	}
	r, c := move.Row, move.Col
	reach := WinLength - 1

	// horizontal
	lo, hi := max(0, c-reach), min(n-1, c+reach)
	if line := scan(b, mark, lo, hi, func(i int) Coord { return Coord{r, i} }); line != nil {
		return line
	}

	// vertical
	lo, hi = max(0, r-reach), min(n-1, r+reach)
	if line := scan(b, mark, lo, hi, func(i int) Coord { return Coord{i, c} }); line != nil {
		return line
	}

	// "\" diagonal: (r+k, c+k)
	lo = max(-reach, -r, -c)
	hi = min(reach, n-1-r, n-1-c)
	if hi-lo+1 >= WinLength {
		if line := scan(b, mark, lo, hi, func(k int) Coord { return Coord{r + k, c + k} }); line != nil {
			return line
		}
	}

	// "/" diagonal: (r-k, c+k), walked by increasing column
	lo = max(-reach, -c, r-(n-1))
	hi = min(reach, n-1-c, r)
	if hi-lo+1 >= WinLength {
		if line := scan(b, mark, lo, hi, func(k int) Coord { return Coord{r - k, c + k} }); line != nil {
			return line
		}
	}
	return nil
}

// scan walks lo..hi inclusive and returns the first run of WinLength cells
// holding mark.
func scan(b Board, mark Mark, lo, hi int, at func(int) Coord) []Coord {
	run := make([]Coord, 0, WinLength)
	for i := lo; i <= hi; i++ {
		p := at(i)
		if b.At(p.Row, p.Col) != mark {
			run = run[:0]
			continue
		}
		run = append(run, p)
		if len(run) == WinLength {
			return run
		}
	}
	return nil
}
