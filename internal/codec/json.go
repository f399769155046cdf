package codec

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

func decodeJSON(data []byte, _ DecodeOptions) (grid.Grid, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty json document")
	}

	var g grid.Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return g, nil
}

func encodeJSON(g grid.Grid) ([]byte, error) {
	return g.MarshalJSON()
}
