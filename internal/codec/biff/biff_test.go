package biff

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

type record struct {
	id   uint16
	body []byte
}

// workbookStream extracts the Workbook stream from an encoded file.
func workbookStream(t *testing.T, data []byte) []byte {
	t.Helper()

	doc, err := mscfb.New(bytes.NewReader(data))
	require.NoError(t, err)

	for {
		entry, err := doc.Next()
		if err == io.EOF {
			t.Fatal("no Workbook stream in compound file")
		}
		require.NoError(t, err)
		if entry.Name != "Workbook" {
			continue
		}
		buf := make([]byte, entry.Size)
		_, err = io.ReadFull(entry, buf)
		require.NoError(t, err)
		return buf
	}
}

// readRecords walks records from off until EOF.
func readRecords(t *testing.T, stream []byte, off int) []record {
	t.Helper()

	var recs []record
	for off+4 <= len(stream) {
		id := binary.LittleEndian.Uint16(stream[off:])
		n := int(binary.LittleEndian.Uint16(stream[off+2:]))
		require.LessOrEqual(t, off+4+n, len(stream), "record 0x%04X overruns stream", id)
		recs = append(recs, record{id: id, body: stream[off+4 : off+4+n]})
		off += 4 + n
		if id == recEOF {
			return recs
		}
	}
	t.Fatal("substream has no EOF record")
	return nil
}

// readSST decodes the SST and CONTINUE bodies back into strings.
func readSST(t *testing.T, bodies [][]byte) []string {
	t.Helper()
	require.NotEmpty(t, bodies)

	rec, pos := 0, 8
	unique := int(binary.LittleEndian.Uint32(bodies[0][4:]))
	out := make([]string, 0, unique)

	for i := 0; i < unique; i++ {
		if pos == len(bodies[rec]) {
			rec, pos = rec+1, 0
		}
		b := bodies[rec]
		chars := int(binary.LittleEndian.Uint16(b[pos:]))
		flag := b[pos+2]
		pos += 3

		var units []uint16
		for chars > 0 {
			if pos == len(bodies[rec]) {
				rec++
				flag = bodies[rec][0]
				pos = 1
			}
			b = bodies[rec]
			if flag == flagUTF16 {
				n := min(chars, (len(b)-pos)/2)
				for k := 0; k < n; k++ {
					units = append(units, binary.LittleEndian.Uint16(b[pos+2*k:]))
				}
				pos += 2 * n
				chars -= n
			} else {
				n := min(chars, len(b)-pos)
				for _, c := range b[pos : pos+n] {
					units = append(units, uint16(c))
				}
				pos += n
				chars -= n
			}
		}
		out = append(out, string(utf16.Decode(units)))
	}
	return out
}

func sstBodies(recs []record) [][]byte {
	var bodies [][]byte
	for i, r := range recs {
		if r.id != recSST {
			continue
		}
		bodies = append(bodies, r.body)
		for _, next := range recs[i+1:] {
			if next.id != recContinue {
				break
			}
			bodies = append(bodies, next.body)
		}
	}
	return bodies
}

func TestEncode_Structure(t *testing.T) {
	g := grid.Grid{
		{grid.Text("name"), grid.Text("qty"), grid.Text("ok")},
		{grid.Text("apple"), grid.Number(3), grid.Bool(true)},
		{grid.Text("pear"), grid.Number(-1.5), grid.Bool(false)},
		{grid.Text("apple")},
	}

	data, err := Encode(g)
	require.NoError(t, err)

	stream := workbookStream(t, data)
	assert.GreaterOrEqual(t, len(stream), miniCutoff)

	globals := readRecords(t, stream, 0)
	require.NotEmpty(t, globals)

	first := globals[0]
	assert.Equal(t, recBOF, first.id)
	assert.Equal(t, uint16(0x0600), binary.LittleEndian.Uint16(first.body))
	assert.Equal(t, bofGlobals, binary.LittleEndian.Uint16(first.body[2:]))

	var sheetOffset int
	for _, r := range globals {
		if r.id == recBoundSheet {
			sheetOffset = int(binary.LittleEndian.Uint32(r.body))
			assert.Equal(t, "Sheet1", string(r.body[8:]))
		}
	}
	require.NotZero(t, sheetOffset)

	strs := readSST(t, sstBodies(globals))
	assert.Equal(t, []string{"name", "qty", "ok", "apple", "pear"}, strs)

	sheet := readRecords(t, stream, sheetOffset)
	assert.Equal(t, recBOF, sheet[0].id)
	assert.Equal(t, bofWorksheet, binary.LittleEndian.Uint16(sheet[0].body[2:]))

	var numbers []float64
	var bools []byte
	var labels []uint32
	for _, r := range sheet {
		switch r.id {
		case recDimensions:
			assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(r.body[4:]))
			assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(r.body[10:]))
		case recNumber:
			numbers = append(numbers, math.Float64frombits(binary.LittleEndian.Uint64(r.body[6:])))
		case recBoolErr:
			bools = append(bools, r.body[6])
		case recLabelSST:
			labels = append(labels, binary.LittleEndian.Uint32(r.body[6:]))
		}
	}
	assert.Equal(t, []float64{3, -1.5}, numbers)
	assert.Equal(t, []byte{1, 0}, bools)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 3}, labels)
}

func TestEncode_Deterministic(t *testing.T) {
	g := grid.Grid{{grid.Text("x"), grid.Number(1)}, {grid.Bool(true)}}

	a, err := Encode(g)
	require.NoError(t, err)
	b, err := Encode(g)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncode_EmptyGrid(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)

	stream := workbookStream(t, data)
	globals := readRecords(t, stream, 0)
	assert.Empty(t, readSST(t, sstBodies(globals)))
}

func TestEncode_Limits(t *testing.T) {
	wide := grid.Grid{make([]grid.Cell, MaxCols+1)}
	wide[0][MaxCols] = grid.Number(1)
	_, err := Encode(wide)
	assert.Error(t, err)

	long := grid.Grid{{grid.Text(strings.Repeat("a", MaxStringLen+1))}}
	_, err = Encode(long)
	assert.Error(t, err)
}

func TestSST_ContinueSplitting(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{
			name:   "long latin-1 string",
			values: []string{strings.Repeat("abcdefgh", 2000)},
		},
		{
			name:   "long utf-16 string",
			values: []string{strings.Repeat("日本語", 3000)},
		},
		{
			name: "many short strings",
			values: func() []string {
				out := make([]string, 3000)
				for i := range out {
					out[i] = grid.ColumnName(i) + "-value"
				}
				return out
			}(),
		},
		{
			name:   "mixed layouts",
			values: []string{strings.Repeat("x", 8215), "ünïcödé", strings.Repeat("€", 5000), "tail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sst := newSSTTable()
			for _, s := range tt.values {
				sst.add(s)
			}

			bodies := sst.bodies()
			for i, b := range bodies {
				assert.LessOrEqual(t, len(b), maxRecordData, "body %d", i)
			}
			assert.Equal(t, tt.values, readSST(t, bodies))
		})
	}
}

func TestEncodeString(t *testing.T) {
	s := encodeString("café")
	assert.Equal(t, flagCompressed, s.flag)
	assert.Equal(t, 4, s.chars)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, s.data)

	s = encodeString("€1")
	assert.Equal(t, flagUTF16, s.flag)
	assert.Equal(t, 2, s.chars)
	assert.Equal(t, []byte{0xAC, 0x20, '1', 0x00}, s.data)
}
