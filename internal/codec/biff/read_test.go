package biff

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// fixture assembles a workbook from raw records: a globals substream with
// one BOUNDSHEET, then a worksheet substream holding cells.
type fixture struct {
	version   uint16
	sheetType byte
	globals   []record
	cells     []record
}

func (f fixture) build(t *testing.T) []byte {
	t.Helper()
	version := f.version
	if version == 0 {
		version = versionBIFF8
	}

	var g stream
	g.record(recBOF, versionedBOF(version, bofGlobals))
	for _, r := range f.globals {
		g.record(r.id, r.body)
	}
	patchAt := g.len() + 4
	bs := boundSheet(SheetName)
	bs[5] = f.sheetType
	g.record(recBoundSheet, bs)
	g.record(recEOF, nil)
	le.PutUint32(g.buf[patchAt:], uint32(g.len()))

	var s stream
	s.record(recBOF, versionedBOF(version, bofWorksheet))
	for _, r := range f.cells {
		s.record(r.id, r.body)
	}
	s.record(recEOF, nil)

	data, err := compoundFile(append(g.buf, s.buf...))
	require.NoError(t, err)
	return data
}

func versionedBOF(version, dt uint16) []byte {
	b := bof(dt)
	le.PutUint16(b, version)
	return b
}

func rkRecord(r, c int, rk uint32) record {
	return record{recRK, le.AppendUint32(cellHeader(r, c), rk)}
}

func formulaRecord(r, c int, result [8]byte) record {
	b := append(cellHeader(r, c), result[:]...)
	b = le.AppendUint16(b, 0) // options
	b = le.AppendUint32(b, 0) // chn
	return record{recFormula, le.AppendUint16(b, 0)}
}

// unicodeString is an XLUnicodeString in the UTF-16 layout.
func unicodeString(s string) []byte {
	data, _ := utf16le.NewEncoder().Bytes([]byte(s))
	b := le.AppendUint16(nil, uint16(len(data)/2))
	b = append(b, flagUTF16)
	return append(b, data...)
}

// byteString is a BIFF5 string: a length then code page bytes.
func byteString(raw string) []byte {
	return append(le.AppendUint16(nil, uint16(len(raw))), raw...)
}

func TestDecode_RoundTrip(t *testing.T) {
	long := strings.Repeat("表計算", 4000)
	g := grid.Grid{
		{grid.Text("name"), grid.Text("007"), grid.Number(3.25), grid.Bool(true)},
		{grid.Text("TRUE"), grid.Bool(false), grid.Number(-1e-9)},
		nil,
		{grid.Empty(), grid.Text(long), grid.Empty(), grid.Text("café")},
		{grid.Number(math.MaxFloat64)},
	}

	data, err := Encode(g)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, g.Equal(back), "want %v got %v", g.Strings(), back.Strings())
}

func TestDecode_ManySharedStrings(t *testing.T) {
	g := make(grid.Grid, 3000)
	for r := range g {
		g[r] = []grid.Cell{grid.Text(grid.ColumnName(r) + "-value")}
	}

	data, err := Encode(g)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, g.Strings(), back.Strings())
}

func TestDecode_Records(t *testing.T) {
	data := fixture{
		cells: []record{
			rkRecord(0, 0, 42<<2|0x02),
			rkRecord(0, 1, 0x3FF40000),   // 1.25
			rkRecord(0, 2, 12345<<2|0x03), // 123.45
			{recMulRK, func() []byte {
				b := le.AppendUint16(nil, 1)
				b = le.AppendUint16(b, 0)
				for _, v := range []uint32{1, 2, 3} {
					b = le.AppendUint16(b, cellXF)
					b = le.AppendUint32(b, v<<2|0x02)
				}
				return le.AppendUint16(b, 2)
			}()},
			formulaRecord(2, 0, [8]byte{0, 0, 0, 0, 0, 0, 0x1E, 0x40}), // 7.5
			formulaRecord(2, 1, [8]byte{1, 0, 1, 0, 0, 0, 0xFF, 0xFF}),
			formulaRecord(2, 2, [8]byte{2, 0, 0x07, 0, 0, 0, 0xFF, 0xFF}),
			formulaRecord(2, 3, [8]byte{0, 0, 0, 0, 0, 0, 0xFF, 0xFF}),
			{recString, unicodeString("total")},
			{recBoolErr, append(cellHeader(3, 0), 0x2A, 1)},
			{recLabel, append(cellHeader(3, 1), unicodeString("日本")...)},
			{0x0201, cellHeader(3, 2)}, // BLANK
			// Embedded chart substream.
			{recBOF, versionedBOF(versionBIFF8, 0x0020)},
			{recNumber, number(9, 9, 99)},
			{recEOF, nil},
		},
	}.build(t)

	g, err := Decode(data)
	require.NoError(t, err)

	want := grid.Grid{
		{grid.Number(42), grid.Number(1.25), grid.Number(123.45)},
		{grid.Number(1), grid.Number(2), grid.Number(3)},
		{grid.Number(7.5), grid.Bool(true), grid.Text("#DIV/0!"), grid.Text("total")},
		{grid.Text("#N/A"), grid.Text("日本")},
	}
	assert.True(t, want.Equal(g), "want %v got %v", want.Strings(), g.Strings())
}

func TestDecode_BIFF5(t *testing.T) {
	tests := []struct {
		name     string
		codepage uint16
		raw      string
		want     string
	}{
		{"windows-1252", 1252, "caf\xe9", "café"},
		{"shift-jis", 932, "\x93\xfa\x96\x7b", "日本"},
		{"unknown code page", 12345, "na\xefve", "naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fixture{
				version: versionBIFF5,
				globals: []record{{recCodepage, le.AppendUint16(nil, tt.codepage)}},
				cells: []record{
					{recLabel, append(cellHeader(0, 0), byteString(tt.raw)...)},
					rkRecord(0, 1, 42<<2|0x02),
					{recBoolErr, append(cellHeader(1, 0), 0, 0)},
				},
			}.build(t)

			g, err := Decode(data)
			require.NoError(t, err)

			want := grid.Grid{
				{grid.Text(tt.want), grid.Number(42)},
				{grid.Bool(false)},
			}
			assert.True(t, want.Equal(g), "want %v got %v", want.Strings(), g.Strings())
		})
	}
}

func TestDecode_SkipsChartSheets(t *testing.T) {
	data := fixture{sheetType: 2}.build(t)

	_, err := Decode(data)
	assert.ErrorIs(t, err, errNoWorksheet)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want error
	}{
		{
			name: "not a compound file",
			data: func(*testing.T) []byte { return []byte("definitely not a compound file") },
		},
		{
			name: "biff4",
			data: fixture{version: 0x0400}.build,
			want: ErrUnsupportedVersion,
		},
		{
			name: "missing shared string",
			data: fixture{cells: []record{{recLabelSST, labelSST(0, 0, 5)}}}.build,
		},
		{
			name: "column past the sheet",
			data: fixture{cells: []record{{recNumber, number(0, MaxCols, 1)}}}.build,
		},
		{
			name: "short number record",
			data: fixture{cells: []record{{recNumber, cellHeader(0, 0)}}}.build,
			want: errTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode(tt.data(t))
			require.Error(t, err)
			assert.Nil(t, g)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRKValue(t *testing.T) {
	tests := []struct {
		rk   uint32
		want float64
	}{
		{0<<2 | 0x02, 0},
		{0xFFFFFFE6, -7}, // int32(-7)<<2 | 0x02
		{150<<2 | 0x03, 1.5},
		{0x3FF00000, 1},
		{0x3FF00000 | 0x01, 0.01},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rkValue(tt.rk), "rk 0x%08X", tt.rk)
	}
}

func TestXLString_RestartsFlagOnContinue(t *testing.T) {
	// "abc" then "дe": the second segment switches to UTF-16.
	first := []byte{5, 0, flagCompressed, 'a', 'b', 'c'}
	second := []byte{flagUTF16, 0x34, 0x04, 'e', 0}

	s := &segments{segs: [][]byte{first, second}}
	got, err := s.xlString()
	require.NoError(t, err)
	assert.Equal(t, "abcдe", got)
}
