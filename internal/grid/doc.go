// Package grid defines the canonical in-memory spreadsheet: a matrix of
// scalar cell values with no formulas, styles, or sheets.
//
// # Cells
//
// A [Cell] is a closed variant. Every consumer switches on [Cell.Kind]:
//
//	switch c.Kind() {
//	case grid.KindEmpty:
//	case grid.KindString:
//	case grid.KindNumber:
//	case grid.KindBool:
//	}
//
// Text("") is the empty cell. The canonical transfer form encodes both
// empty strings and missing values as "", so they cannot be told apart.
//
// # Shape
//
// Decoders may return ragged rows. [Normalize] pads a grid on the right and
// at the bottom to a minimum shape without ever dropping data; the result is
// rectangular and normalizing it again with the same minimums is a no-op.
//
// # Transfer form
//
// [Grid.MarshalJSON] writes the canonical JSON array-of-arrays used between
// the upload and viewing stages. Raggedness is preserved so a stored grid is
// exactly what the decoder produced.
package grid
