package grid

// Normalize pads g to at least minRows rows and minCols columns and makes it
// rectangular. Short rows are extended on the right with empty cells and
// empty rows are appended at the bottom; nothing is ever truncated.
//
// The result shares no row storage with g. Negative minimums count as zero.
func Normalize(g Grid, minRows, minCols int) Grid {
	minRows = max(minRows, 0)
	minCols = max(minCols, 0)

	targetCols := max(minCols, g.Width())

	if len(g) == 0 {
		g = make(Grid, minRows)
	}
	targetRows := max(minRows, len(g))

	out := make(Grid, targetRows)
	for i := range out {
		row := make([]Cell, targetCols)
		if i < len(g) {
			copy(row, g[i])
		}
		out[i] = row
	}
	return out
}
