package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// DefaultSheetName is the name of the single sheet written to workbooks.
const DefaultSheetName = "Sheet1"

// maxCellChars is the longest string a workbook cell may hold.
const maxCellChars = 32767

func decodeXLSX(data []byte, _ DecodeOptions) (grid.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	g := make(grid.Grid, len(rows))
	for r, row := range rows {
		cells := make([]grid.Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", name, err)
			}
			cells[c] = xlsxCell(typ, raw)
		}
		g[r] = cells
	}
	return trimTrailingRows(g), nil
}

// xlsxCell maps a raw stored value back to its scalar. Cells without a type
// attribute are numbers in the file format.
func xlsxCell(typ excelize.CellType, raw string) grid.Cell {
	switch typ {
	case excelize.CellTypeBool:
		return grid.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return grid.Number(f)
		}
	}
	return grid.Text(raw)
}

func encodeXLSX(g grid.Grid) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(sheet, DefaultSheetName); err != nil {
			return nil, err
		}
		sheet = DefaultSheetName
	}

	for r, row := range g {
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if s, ok := cell.Text(); ok && utf8.RuneCountInString(s) > maxCellChars {
				return nil, fmt.Errorf("cell %s: text longer than %d characters", name, maxCellChars)
			}
			if err := f.SetCellValue(sheet, name, cell.Value()); err != nil {
				return nil, fmt.Errorf("cell %s: %w", name, err)
			}
		}
	}

	if len(g) > 0 && g.Width() > 0 {
		last, err := excelize.CoordinatesToCellName(g.Width(), len(g))
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetDimension(sheet, "A1:"+last); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
