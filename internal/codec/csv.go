package codec

// csv.go reads and writes comma-separated text.
//
// Input bytes pass through a BOM-aware decoder first: a UTF-8 BOM is
// stripped, a UTF-16 BOM switches to UTF-16, and invalid UTF-8 sequences
// become U+FFFD instead of failing the upload. Quoting is strict, so a bare
// quote inside an unquoted field is a decode error.
//
// encoding/csv reads "\r\n" inside a quoted field as "\n", so a cell
// holding a CRLF comes back with a bare LF.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

func decodeCSV(data []byte, opts DecodeOptions) (grid.Grid, error) {
	src := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = false

	toCell := grid.Text
	if opts.InferTypes {
		toCell = inferCell
	}

	var g grid.Grid
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}

		row := make([]grid.Cell, len(rec))
		for i, s := range rec {
			row[i] = toCell(s)
		}
		g = append(g, row)
	}
	return g, nil
}

func encodeCSV(g grid.Grid) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	width := g.Width()
	rec := make([]string, width)
	for _, row := range g {
		blank := true
		for c := range rec {
			rec[c] = cellAt(row, c).String()
			if rec[c] != "" {
				blank = false
			}
		}

		// csv.Reader skips blank lines, so a row with no visible content
		// must still put something on the line.
		if blank && width <= 1 {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellAt(row []grid.Cell, c int) grid.Cell {
	if c < len(row) {
		return row[c]
	}
	return grid.Empty()
}
