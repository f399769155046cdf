package grid

// Grid is an ordered sequence of rows, each an ordered sequence of cells.
// Rows may differ in length until the grid is normalized.
type Grid [][]Cell

// FromStrings builds a grid of text cells. Empty strings become empty cells.
func FromStrings(records [][]string) Grid {
	g := make(Grid, len(records))
	for i, rec := range records {
		row := make([]Cell, len(rec))
		for j, s := range rec {
			row[j] = Text(s)
		}
		g[i] = row
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Width returns the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// At returns the cell at (r, c). Positions outside the grid, including the
// missing tail of a short row, are empty.
func (g Grid) At(r, c int) Cell {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return Empty()
	}
	return g[r][c]
}

// Set returns a copy of g with the cell at (r, c) replaced. The grid grows
// as needed to contain the position; it never shrinks. Negative positions
// return an unchanged copy.
func (g Grid) Set(r, c int, cell Cell) Grid {
	out := g.Clone()
	if r < 0 || c < 0 {
		return out
	}
	for len(out) <= r {
		out = append(out, nil)
	}
	row := out[r]
	for len(row) <= c {
		row = append(row, Empty())
	}
	row[c] = cell
	out[r] = row
	return out
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// Equal reports whether g and o have the same rows with equal cells.
// Row lengths must match exactly; use Normalize first to compare values only.
func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(o[i]) {
			return false
		}
		for j := range g[i] {
			if !g[i][j].Equal(o[i][j]) {
				return false
			}
		}
	}
	return true
}

// IsRectangular reports whether every row has the same length.
func (g Grid) IsRectangular() bool {
	if len(g) == 0 {
		return true
	}
	w := len(g[0])
	for _, row := range g[1:] {
		if len(row) != w {
			return false
		}
	}
	return true
}

// Strings returns the display text of every cell, keeping the row shape.
func (g Grid) Strings() [][]string {
	out := make([][]string, len(g))
	for i, row := range g {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.String()
		}
	}
	return out
}
