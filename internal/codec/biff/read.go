package biff

// read.go reads the first worksheet of a BIFF8 (Excel 97-2003) or BIFF5/7
// (Excel 5.0/95) workbook.
//
// A cell keeps the kind of the record that stored it: NUMBER, RK and MULRK
// are numbers, LABELSST and LABEL are text, BOOLERR is a boolean or an
// error value shown as its text ("#DIV/0!"). A FORMULA contributes its
// cached result. Number formats, dates and merged ranges are not applied.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// Record identifiers only the reader needs.
const (
	recFormula uint16 = 0x0006
	recMulRK   uint16 = 0x00BD
	recRString uint16 = 0x00D6
	recLabel   uint16 = 0x0204
	recString  uint16 = 0x0207
	recRK      uint16 = 0x027E
)

// BOF versions.
const (
	versionBIFF8 uint16 = 0x0600
	versionBIFF5 uint16 = 0x0500
)

var (
	// ErrNoWorkbook means the compound file holds no Workbook or Book stream.
	ErrNoWorkbook = errors.New("compound file has no Workbook stream")

	// ErrUnsupportedVersion is returned for BIFF2-4 files.
	ErrUnsupportedVersion = errors.New("unsupported BIFF version")

	errNoWorksheet = errors.New("workbook has no worksheet")
	errTruncated   = errors.New("truncated record")
)

// WorkbookStream returns the BIFF stream of an OLE2 compound file.
func WorkbookStream(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an XLS compound file: %w", err)
	}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoWorkbook
		}
		if err != nil {
			return nil, fmt.Errorf("read compound file: %w", err)
		}
		if !strings.EqualFold(entry.Name, "Workbook") && !strings.EqualFold(entry.Name, "Book") {
			continue
		}
		if entry.Size > int64(len(data)) {
			return nil, fmt.Errorf("%s stream claims %d bytes in a %d byte file", entry.Name, entry.Size, len(data))
		}
		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		return buf, nil
	}
}

// Decode reads the first worksheet of an .xls file. Rows end at their last
// stored cell, so the result may be ragged; rows with no cells are nil.
func Decode(data []byte) (grid.Grid, error) {
	stream, err := WorkbookStream(data)
	if err != nil {
		return nil, err
	}
	wb, err := readGlobals(stream)
	if err != nil {
		return nil, err
	}
	return wb.readSheet(stream)
}

// recordReader walks the records of a BIFF stream.
type recordReader struct {
	data []byte
	off  int
}

func (r *recordReader) next() (id uint16, body []byte, err error) {
	if r.off+4 > len(r.data) {
		return 0, nil, errTruncated
	}
	id = le.Uint16(r.data[r.off:])
	start := r.off + 4
	end := start + int(le.Uint16(r.data[r.off+2:]))
	if end > len(r.data) {
		return 0, nil, errTruncated
	}
	r.off = end
	return id, r.data[start:end], nil
}

// peek returns the id of the next record, or zero at the end of the stream.
func (r *recordReader) peek() uint16 {
	if r.off+4 > len(r.data) {
		return 0
	}
	return le.Uint16(r.data[r.off:])
}

// workbook holds what the globals substream says about the first sheet.
type workbook struct {
	version  uint16
	charset  encoding.Encoding // BIFF5 byte strings
	sst      []string
	sheetPos int
}

func readGlobals(stream []byte) (*workbook, error) {
	r := &recordReader{data: stream}

	id, body, err := r.next()
	if err != nil || id != recBOF || len(body) < 4 {
		return nil, ErrUnsupportedVersion
	}
	wb := &workbook{
		version:  le.Uint16(body),
		charset:  charmap.Windows1252,
		sheetPos: -1,
	}
	if wb.version != versionBIFF8 && wb.version != versionBIFF5 {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnsupportedVersion, wb.version)
	}

	for {
		id, body, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("workbook globals: %w", err)
		}
		switch id {
		case recEOF:
			if wb.sheetPos < 0 {
				return nil, errNoWorksheet
			}
			return wb, nil
		case recCodepage:
			if len(body) >= 2 {
				wb.charset = codepageEncoding(le.Uint16(body))
			}
		case recBoundSheet:
			// Byte 5 is the sheet type in both versions; 0 is a worksheet.
			if wb.sheetPos < 0 && len(body) >= 6 && body[5] == 0 {
				wb.sheetPos = int(le.Uint32(body))
			}
		case recSST:
			segs := [][]byte{body}
			for r.peek() == recContinue {
				_, cont, err := r.next()
				if err != nil {
					return nil, fmt.Errorf("shared strings: %w", err)
				}
				segs = append(segs, cont)
			}
			if wb.sst, err = decodeSST(segs); err != nil {
				return nil, err
			}
		}
	}
}

// sheet accumulates cells and the FORMULA waiting for its STRING record.
type sheet struct {
	g          grid.Grid
	pending    bool
	pendingRow int
	pendingCol int
}

func (s *sheet) set(r, c int, cell grid.Cell) error {
	if c >= MaxCols {
		return fmt.Errorf("cell in column %d is outside the worksheet", c+1)
	}
	for len(s.g) <= r {
		s.g = append(s.g, nil)
	}
	row := s.g[r]
	for len(row) <= c {
		row = append(row, grid.Empty())
	}
	row[c] = cell
	s.g[r] = row
	return nil
}

func (wb *workbook) readSheet(stream []byte) (grid.Grid, error) {
	if wb.sheetPos >= len(stream) {
		return nil, fmt.Errorf("worksheet offset %d is outside the stream", wb.sheetPos)
	}
	r := &recordReader{data: stream, off: wb.sheetPos}
	id, body, err := r.next()
	if err != nil || id != recBOF || len(body) < 4 || le.Uint16(body[2:]) != bofWorksheet {
		return nil, errors.New("worksheet substream has no BOF record")
	}

	var (
		s     sheet
		depth int // nested substreams such as embedded charts
	)
	for {
		id, body, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("worksheet: %w", err)
		}
		switch {
		case id == recBOF:
			depth++
		case id == recEOF && depth == 0:
			return s.g, nil
		case id == recEOF:
			depth--
		case depth == 0:
			if err := wb.cell(&s, id, body); err != nil {
				return nil, fmt.Errorf("worksheet: %w", err)
			}
		}
	}
}

// cell applies one worksheet record. Records that carry no value are
// ignored.
func (wb *workbook) cell(s *sheet, id uint16, body []byte) error {
	if id == recString {
		if !s.pending {
			return nil
		}
		s.pending = false
		text, err := wb.text(body)
		if err != nil {
			return err
		}
		return s.set(s.pendingRow, s.pendingCol, grid.Text(text))
	}

	switch id {
	case recNumber, recRK, recMulRK, recLabelSST, recLabel, recRString, recBoolErr, recFormula:
	default:
		return nil
	}
	if len(body) < 6 {
		return errTruncated
	}
	r, c := int(le.Uint16(body)), int(le.Uint16(body[2:]))
	v := body[6:]

	switch id {
	case recNumber:
		if len(v) < 8 {
			return errTruncated
		}
		return s.set(r, c, numberCell(math.Float64frombits(le.Uint64(v))))
	case recRK:
		if len(v) < 4 {
			return errTruncated
		}
		return s.set(r, c, numberCell(rkValue(le.Uint32(v))))
	case recMulRK:
		// row, first column, then (xf, rk) pairs, then the last column.
		pairs := body[4 : len(body)-2]
		for i := 0; i+6 <= len(pairs); i += 6 {
			if err := s.set(r, c+i/6, numberCell(rkValue(le.Uint32(pairs[i+2:])))); err != nil {
				return err
			}
		}
		return nil
	case recLabelSST:
		if len(v) < 4 {
			return errTruncated
		}
		idx := int(le.Uint32(v))
		if idx >= len(wb.sst) {
			return fmt.Errorf("cell %s: shared string %d does not exist", grid.Ref(r, c), idx)
		}
		return s.set(r, c, grid.Text(wb.sst[idx]))
	case recLabel, recRString:
		text, err := wb.text(v)
		if err != nil {
			return err
		}
		return s.set(r, c, grid.Text(text))
	case recBoolErr:
		if len(v) < 2 {
			return errTruncated
		}
		if v[1] == 0 {
			return s.set(r, c, grid.Bool(v[0] != 0))
		}
		return s.set(r, c, grid.Text(errorText(v[0])))
	case recFormula:
		if len(v) < 8 {
			return errTruncated
		}
		return wb.formula(s, r, c, v[:8])
	}
	return nil
}

// formula stores the cached result of a FORMULA record. A string result
// arrives in the STRING record that follows.
func (wb *workbook) formula(s *sheet, r, c int, res []byte) error {
	if le.Uint16(res[6:]) != 0xFFFF {
		return s.set(r, c, numberCell(math.Float64frombits(le.Uint64(res))))
	}
	switch res[0] {
	case 0:
		s.pending, s.pendingRow, s.pendingCol = true, r, c
	case 1:
		return s.set(r, c, grid.Bool(res[2] != 0))
	case 2:
		return s.set(r, c, grid.Text(errorText(res[2])))
	}
	return nil
}

// numberCell drops values a grid cannot hold.
func numberCell(f float64) grid.Cell {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return grid.Empty()
	}
	return grid.Number(f)
}

// rkValue decodes the compressed RK number form.
func rkValue(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func errorText(code byte) string {
	switch code {
	case 0x00:
		return "#NULL!"
	case 0x07:
		return "#DIV/0!"
	case 0x0F:
		return "#VALUE!"
	case 0x17:
		return "#REF!"
	case 0x1D:
		return "#NAME?"
	case 0x24:
		return "#NUM!"
	case 0x2A:
		return "#N/A"
	}
	return "#ERROR!"
}

// text reads a LABEL or STRING value: an XLUnicodeString in BIFF8, a byte
// string in the workbook code page in BIFF5.
func (wb *workbook) text(b []byte) (string, error) {
	if wb.version == versionBIFF8 {
		return (&segments{segs: [][]byte{b}}).xlString()
	}
	if len(b) < 2 {
		return "", errTruncated
	}
	n := int(le.Uint16(b))
	if len(b) < 2+n {
		return "", errTruncated
	}
	out, err := wb.charset.NewDecoder().Bytes(b[2 : 2+n])
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// codepageEncoding maps a CODEPAGE record to a decoder for BIFF5 strings.
// Unknown code pages read as Windows-1252.
func codepageEncoding(cp uint16) encoding.Encoding {
	switch cp {
	case 437:
		return charmap.CodePage437
	case 850:
		return charmap.CodePage850
	case 852:
		return charmap.CodePage852
	case 866:
		return charmap.CodePage866
	case 874:
		return charmap.Windows874
	case 932:
		return japanese.ShiftJIS
	case 936:
		return simplifiedchinese.GBK
	case 949:
		return korean.EUCKR
	case 950:
		return traditionalchinese.Big5
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1255:
		return charmap.Windows1255
	case 1256:
		return charmap.Windows1256
	case 1257:
		return charmap.Windows1257
	case 1258:
		return charmap.Windows1258
	case 10000, 32768:
		return charmap.Macintosh
	}
	return charmap.Windows1252
}

// decodeSST decodes an SST body and its CONTINUE bodies.
func decodeSST(segs [][]byte) ([]string, error) {
	if len(segs[0]) < 8 {
		return nil, fmt.Errorf("shared strings: %w", errTruncated)
	}
	unique := int(le.Uint32(segs[0][4:]))

	s := &segments{segs: segs, off: 8}
	out := make([]string, 0, min(unique, 1<<16))
	for i := 0; i < unique; i++ {
		str, err := s.xlString()
		if err != nil {
			return nil, fmt.Errorf("shared string %d: %w", i, err)
		}
		out = append(out, str)
	}
	return out, nil
}

// segments reads across a record and its CONTINUE records.
type segments struct {
	segs [][]byte
	i    int
	off  int
}

func (s *segments) exhausted() bool {
	return s.off >= len(s.segs[s.i])
}

func (s *segments) advance() bool {
	if s.i+1 >= len(s.segs) {
		return false
	}
	s.i++
	s.off = 0
	return true
}

func (s *segments) readByte() (byte, error) {
	for s.exhausted() {
		if !s.advance() {
			return 0, errTruncated
		}
	}
	b := s.segs[s.i][s.off]
	s.off++
	return b, nil
}

func (s *segments) readUint(n int) (uint32, error) {
	var v uint32
	for k := 0; k < n; k++ {
		b, err := s.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * k)
	}
	return v, nil
}

func (s *segments) skip(n int) error {
	for n > 0 {
		if s.exhausted() {
			if !s.advance() {
				return errTruncated
			}
			continue
		}
		k := min(n, len(s.segs[s.i])-s.off)
		s.off += k
		n -= k
	}
	return nil
}

// xlString reads an XLUnicodeRichExtendedString. When the characters run
// into the next segment, that segment starts with a fresh option byte.
func (s *segments) xlString() (string, error) {
	chars, err := s.readUint(2)
	if err != nil {
		return "", err
	}
	flag, err := s.readByte()
	if err != nil {
		return "", err
	}

	var runs, ext uint32
	if flag&0x08 != 0 {
		if runs, err = s.readUint(2); err != nil {
			return "", err
		}
	}
	if flag&0x04 != 0 {
		if ext, err = s.readUint(4); err != nil {
			return "", err
		}
	}

	units := make([]byte, 0, 2*int(chars))
	for n := 0; n < int(chars); n++ {
		if s.exhausted() {
			if !s.advance() {
				return "", errTruncated
			}
			if flag, err = s.readByte(); err != nil {
				return "", err
			}
		}
		if flag&flagUTF16 != 0 {
			u, err := s.readUint(2)
			if err != nil {
				return "", err
			}
			units = append(units, byte(u), byte(u>>8))
		} else {
			b, err := s.readByte()
			if err != nil {
				return "", err
			}
			units = append(units, b, 0)
		}
	}

	if err := s.skip(4*int(runs) + int(ext)); err != nil {
		return "", err
	}

	out, err := utf16le.NewDecoder().Bytes(units)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
