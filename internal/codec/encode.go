package codec

import (
	"fmt"
	"math"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

type encodeFunc func(g grid.Grid) ([]byte, error)

func encoderFor(f Format) (encodeFunc, bool) {
	switch f {
	case XLSX:
		return encodeXLSX, true
	case XLS:
		return encodeXLS, true
	case CSV:
		return encodeCSV, true
	case JSON:
		return encodeJSON, true
	}
	return nil, false
}

// Encode writes g as format f. Ragged rows are accepted: every format
// writes a rectangle of len(g) rows by g.Width() columns with missing cells
// left empty. The same grid always encodes to the same bytes.
func Encode(g grid.Grid, f Format) ([]byte, error) {
	enc, ok := encoderFor(f)
	if !ok {
		return nil, &EncodeError{Format: f, Err: ErrUnsupportedFormat}
	}

	if err := checkFinite(g); err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}

	data, err := enc(grid.Normalize(g, 0, 0))
	if err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}
	return data, nil
}

// checkFinite rejects NaN and infinities, which no export format can hold.
func checkFinite(g grid.Grid) error {
	for r, row := range g {
		for c, cell := range row {
			if n, ok := cell.Number(); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
				return fmt.Errorf("cell %s: %v is not a finite number", grid.Ref(r, c), n)
			}
		}
	}
	return nil
}
