package biff

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Record identifiers used by the writer.
const (
	recEOF        uint16 = 0x000A
	recContinue   uint16 = 0x003C
	recWindow1    uint16 = 0x003D
	recCodepage   uint16 = 0x0042
	recFont       uint16 = 0x0031
	recBoundSheet uint16 = 0x0085
	recSST        uint16 = 0x00FC
	recLabelSST   uint16 = 0x00FD
	recXF         uint16 = 0x00E0
	recDimensions uint16 = 0x0200
	recNumber     uint16 = 0x0203
	recBoolErr    uint16 = 0x0205
	recRow        uint16 = 0x0208
	recWindow2    uint16 = 0x023E
	recStyle      uint16 = 0x0293
	recBOF        uint16 = 0x0809
)

// BOF substream types.
const (
	bofGlobals   uint16 = 0x0005
	bofWorksheet uint16 = 0x0010
)

// maxRecordData is the largest record body BIFF8 allows.
const maxRecordData = 8224

// cellXF is the index of the default cell format; 0-14 are style formats.
const cellXF = 15

var le = binary.LittleEndian

// stream accumulates BIFF records.
type stream struct {
	buf []byte
}

func (s *stream) record(id uint16, body []byte) {
	if len(body) > maxRecordData {
		panic(fmt.Sprintf("biff: record 0x%04X body of %d bytes", id, len(body)))
	}
	s.buf = le.AppendUint16(s.buf, id)
	s.buf = le.AppendUint16(s.buf, uint16(len(body)))
	s.buf = append(s.buf, body...)
}

func (s *stream) len() int {
	return len(s.buf)
}

func bof(dt uint16) []byte {
	b := make([]byte, 0, 16)
	b = le.AppendUint16(b, 0x0600) // BIFF8
	b = le.AppendUint16(b, dt)
	b = le.AppendUint16(b, 0x0DBB) // build
	b = le.AppendUint16(b, 0x07CC) // year
	b = le.AppendUint32(b, 0)
	b = le.AppendUint32(b, 0x06)
	return b
}

func codepage() []byte {
	return le.AppendUint16(nil, 1200) // UTF-16LE
}

func window1() []byte {
	b := make([]byte, 0, 18)
	for _, v := range []uint16{0x01E0, 0x005A, 0x3FCF, 0x2A4E, 0x0038, 0, 0, 1, 0x0258} {
		b = le.AppendUint16(b, v)
	}
	return b
}

func font() []byte {
	b := make([]byte, 0, 21)
	b = le.AppendUint16(b, 200)    // height in twips
	b = le.AppendUint16(b, 0)      // attributes
	b = le.AppendUint16(b, 0x7FFF) // system colour
	b = le.AppendUint16(b, 400)    // normal weight
	b = le.AppendUint16(b, 0)      // no super/subscript
	b = append(b, 0, 0, 0, 0)      // underline, family, charset, reserved
	return append(b, shortString("Arial")...)
}

var (
	styleXF = []byte{
		0x00, 0x00, 0x00, 0x00, 0xF5, 0xFF, 0x20, 0x00, 0x00, 0xF4,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x20,
	}
	cellXFBody = []byte{
		0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x20,
	}
	normalStyle = []byte{0x00, 0x80, 0x00, 0xFF}
)

// boundSheet leaves the sheet's stream position zero; the writer patches
// it once the globals substream length is known.
func boundSheet(name string) []byte {
	b := le.AppendUint32(nil, 0)
	b = append(b, 0, 0) // visible worksheet
	return append(b, shortString(name)...)
}

func dimensions(rows, cols int) []byte {
	b := make([]byte, 0, 14)
	b = le.AppendUint32(b, 0)
	b = le.AppendUint32(b, uint32(rows))
	b = le.AppendUint16(b, 0)
	b = le.AppendUint16(b, uint16(cols))
	return le.AppendUint16(b, 0)
}

func window2() []byte {
	b := make([]byte, 0, 18)
	for _, v := range []uint16{0x06B6, 0, 0, 0x0040, 0, 0, 0} {
		b = le.AppendUint16(b, v)
	}
	return le.AppendUint32(b, 0)
}

func rowRecord(r, firstCol, lastCol int) []byte {
	b := make([]byte, 0, 16)
	for _, v := range []uint16{uint16(r), uint16(firstCol), uint16(lastCol + 1), 0x00FF, 0, 0, 0x0100, cellXF} {
		b = le.AppendUint16(b, v)
	}
	return b
}

func cellHeader(r, c int) []byte {
	b := make([]byte, 0, 14)
	b = le.AppendUint16(b, uint16(r))
	b = le.AppendUint16(b, uint16(c))
	return le.AppendUint16(b, cellXF)
}

func number(r, c int, v float64) []byte {
	return le.AppendUint64(cellHeader(r, c), math.Float64bits(v))
}

func labelSST(r, c int, idx int) []byte {
	return le.AppendUint32(cellHeader(r, c), uint32(idx))
}

func boolErr(r, c int, v bool) []byte {
	var bit byte
	if v {
		bit = 1
	}
	return append(cellHeader(r, c), bit, 0)
}
