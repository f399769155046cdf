// Package biff reads and writes Excel 97-2003 (.xls) workbooks.
//
// The writer produces a single-sheet BIFF8 Workbook stream inside an OLE2
// compound file. Only values are written: numbers as NUMBER records,
// strings through the shared string table, booleans as BOOLERR records.
// Every cell uses the default cell format.
//
// The reader takes the first worksheet of a BIFF8 or BIFF5 file; see
// [Decode].
package biff

import (
	"fmt"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// Worksheet limits of the format.
const (
	MaxRows      = 65536
	MaxCols      = 256
	MaxStringLen = 32767
)

// SheetName is the name of the single worksheet.
const SheetName = "Sheet1"

// rowBlock is how many rows share a block of ROW records.
const rowBlock = 32

// Encode returns g as an .xls file. Empty cells are not written. Grids
// beyond the worksheet limits fail rather than truncate.
func Encode(g grid.Grid) ([]byte, error) {
	width := g.Width()
	if len(g) > MaxRows {
		return nil, fmt.Errorf("%d rows exceed the limit of %d", len(g), MaxRows)
	}
	if width > MaxCols {
		return nil, fmt.Errorf("%d columns exceed the limit of %d", width, MaxCols)
	}

	sst := newSSTTable()
	sheet, err := worksheet(g, width, sst)
	if err != nil {
		return nil, err
	}

	globals, patchAt := workbookGlobals(sst)
	le.PutUint32(globals[patchAt:], uint32(len(globals)))

	return compoundFile(append(globals, sheet...))
}

// workbookGlobals returns the globals substream and the position of the
// BOUNDSHEET stream offset that points at the worksheet BOF.
func workbookGlobals(sst *sstTable) ([]byte, int) {
	var s stream
	s.record(recBOF, bof(bofGlobals))
	s.record(recCodepage, codepage())
	s.record(recWindow1, window1())
	for i := 0; i < 4; i++ {
		s.record(recFont, font())
	}
	for i := 0; i < cellXF; i++ {
		s.record(recXF, styleXF)
	}
	s.record(recXF, cellXFBody)
	s.record(recStyle, normalStyle)

	patchAt := s.len() + 4
	s.record(recBoundSheet, boundSheet(SheetName))

	for i, body := range sst.bodies() {
		id := recContinue
		if i == 0 {
			id = recSST
		}
		s.record(id, body)
	}
	s.record(recEOF, nil)
	return s.buf, patchAt
}

func worksheet(g grid.Grid, width int, sst *sstTable) ([]byte, error) {
	var s stream
	s.record(recBOF, bof(bofWorksheet))
	s.record(recDimensions, dimensions(len(g), width))
	s.record(recWindow2, window2())

	for start := 0; start < len(g); start += rowBlock {
		end := min(start+rowBlock, len(g))

		for r := start; r < end; r++ {
			first, last, ok := usedSpan(g[r])
			if ok {
				s.record(recRow, rowRecord(r, first, last))
			}
		}

		for r := start; r < end; r++ {
			for c, cell := range g[r] {
				body, err := cellRecord(r, c, cell, sst)
				if err != nil {
					return nil, err
				}
				if body.id != 0 {
					s.record(body.id, body.data)
				}
			}
		}
	}

	s.record(recEOF, nil)
	return s.buf, nil
}

type cellBody struct {
	id   uint16
	data []byte
}

func cellRecord(r, c int, cell grid.Cell, sst *sstTable) (cellBody, error) {
	switch cell.Kind() {
	case grid.KindString:
		text, _ := cell.Text()
		if n := encodeString(text).chars; n > MaxStringLen {
			return cellBody{}, fmt.Errorf("cell %s: %d characters exceed the limit of %d", grid.Ref(r, c), n, MaxStringLen)
		}
		return cellBody{recLabelSST, labelSST(r, c, sst.add(text))}, nil
	case grid.KindNumber:
		v, _ := cell.Number()
		return cellBody{recNumber, number(r, c, v)}, nil
	case grid.KindBool:
		v, _ := cell.Bool()
		return cellBody{recBoolErr, boolErr(r, c, v)}, nil
	}
	return cellBody{}, nil
}

// usedSpan returns the first and last non-empty column of a row.
func usedSpan(row []grid.Cell) (first, last int, ok bool) {
	first = -1
	for c, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		if first < 0 {
			first = c
		}
		last = c
	}
	return first, last, first >= 0
}
