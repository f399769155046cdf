package codec

import (
	"github.com/JonMunkholm/sheetview/internal/codec/biff"
	"github.com/JonMunkholm/sheetview/internal/grid"
)

// decodeXLS reads the first worksheet. Cells keep the kind of the record
// that stored them, so text such as "007" stays text.
func decodeXLS(data []byte, _ DecodeOptions) (grid.Grid, error) {
	g, err := biff.Decode(data)
	if err != nil {
		return nil, err
	}
	for i, row := range g {
		g[i] = trimRow(row)
	}
	return trimTrailingRows(g), nil
}

func encodeXLS(g grid.Grid) ([]byte, error) {
	return biff.Encode(g)
}
