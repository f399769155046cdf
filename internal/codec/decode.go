package codec

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// DecodeOptions tunes Decode.
type DecodeOptions struct {
	// InferTypes lifts CSV text that is the canonical display form of a
	// number or boolean ("3.5", "TRUE") into Number and Bool cells. Text
	// such as "007" or "1e3" stays text so it survives a round trip.
	InferTypes bool
}

type decodeFunc func(data []byte, opts DecodeOptions) (grid.Grid, error)

func decoderFor(f Format) (decodeFunc, bool) {
	switch f {
	case XLSX:
		return decodeXLSX, true
	case XLS:
		return decodeXLS, true
	case CSV:
		return decodeCSV, true
	case JSON:
		return decodeJSON, true
	}
	return nil, false
}

// Decode reads data as format f. Rows are returned exactly as the format
// stores them and may be ragged.
func Decode(data []byte, f Format) (grid.Grid, error) {
	return DecodeWithOptions(data, f, DecodeOptions{})
}

// DecodeWithOptions is Decode with explicit options.
func DecodeWithOptions(data []byte, f Format, opts DecodeOptions) (g grid.Grid, err error) {
	dec, ok := decoderFor(f)
	if !ok {
		return nil, &DecodeError{Format: f, Err: ErrUnsupportedFormat}
	}

	// Third-party workbook readers panic on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = &DecodeError{Format: f, Err: fmt.Errorf("malformed %s data: %v", f, r)}
		}
	}()

	g, err = dec(data, opts)
	if err != nil {
		return nil, &DecodeError{Format: f, Err: err}
	}
	return g, nil
}

// DecodeReader reads at most limit bytes from r and decodes them. A limit of
// zero or less disables the check. Inputs over the limit fail with
// ErrTooLarge before any decoding happens.
func DecodeReader(ctx context.Context, r io.Reader, f Format, limit int64) (grid.Grid, error) {
	data, err := readLimited(r, limit)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(data, f)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// inferCell lifts s to a Number or Bool only when s is exactly how that
// value displays, so String() of the result is s again.
func inferCell(s string) grid.Cell {
	switch s {
	case "":
		return grid.Empty()
	case "TRUE":
		return grid.Bool(true)
	case "FALSE":
		return grid.Bool(false)
	}
	if f, ok := parseFinite(s); ok && grid.FormatNumber(f) == s {
		return grid.Number(f)
	}
	return grid.Text(s)
}

// parseFinite parses plain decimal notation only. strconv.ParseFloat also
// accepts "Inf", "NaN" and hex floats, none of which a spreadsheet shows
// as a number.
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// trimRow drops trailing empty cells so decoders agree on raggedness.
func trimRow(row []grid.Cell) []grid.Cell {
	n := len(row)
	for n > 0 && row[n-1].IsEmpty() {
		n--
	}
	return row[:n]
}

// trimTrailingRows drops empty rows at the bottom of g.
func trimTrailingRows(g grid.Grid) grid.Grid {
	n := len(g)
	for n > 0 && len(g[n-1]) == 0 {
		n--
	}
	return g[:n]
}
