package biff

// cfb.go wraps the workbook stream in a version 3 compound file.
//
// Layout, in 512-byte sectors after the header:
//
//	0 .. n-1        Workbook stream
//	n               directory (root entry, Workbook, two unused entries)
//	n+1 .. n+f      FAT
//
// The stream is padded to at least 4096 bytes so it is stored in regular
// sectors and no mini stream is needed.

import (
	"errors"
	"fmt"
)

const (
	sectorSize     = 512
	miniCutoff     = 4096
	dirEntrySize   = 128
	headerDIFATLen = 109
	fatPerSector   = sectorSize / 4

	secFree       uint32 = 0xFFFFFFFF
	secEndOfChain uint32 = 0xFFFFFFFE
	secFAT        uint32 = 0xFFFFFFFD
	noStream      uint32 = 0xFFFFFFFF
)

var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ErrTooLarge means the workbook needs more FAT sectors than the header
// can address without DIFAT sectors.
var ErrTooLarge = errors.New("workbook too large for compound file")

func compoundFile(workbook []byte) ([]byte, error) {
	size := max(len(workbook), miniCutoff)
	size = (size + sectorSize - 1) / sectorSize * sectorSize
	stream := make([]byte, size)
	copy(stream, workbook)

	n := size / sectorSize
	fatSectors := 1
	for n+1+fatSectors > fatSectors*fatPerSector {
		fatSectors++
	}
	if fatSectors > headerDIFATLen {
		return nil, fmt.Errorf("%w: %d FAT sectors", ErrTooLarge, fatSectors)
	}
	dirSector := n

	out := make([]byte, 0, sectorSize*(n+2+fatSectors))
	out = append(out, cfbHeader(dirSector, fatSectors)...)
	out = append(out, stream...)
	out = append(out, directory(len(stream))...)
	out = append(out, fat(n, fatSectors)...)
	return out, nil
}

func cfbHeader(dirSector, fatSectors int) []byte {
	h := make([]byte, 0, sectorSize)
	h = append(h, cfbSignature...)
	h = append(h, make([]byte, 16)...) // CLSID
	h = le.AppendUint16(h, 0x003E)     // minor version
	h = le.AppendUint16(h, 0x0003)     // major version
	h = le.AppendUint16(h, 0xFFFE)     // little-endian
	h = le.AppendUint16(h, 9)          // 512-byte sectors
	h = le.AppendUint16(h, 6)          // 64-byte mini sectors
	h = append(h, make([]byte, 6)...)
	h = le.AppendUint32(h, 0) // directory sectors, always 0 in version 3
	h = le.AppendUint32(h, uint32(fatSectors))
	h = le.AppendUint32(h, uint32(dirSector))
	h = le.AppendUint32(h, 0) // transaction signature
	h = le.AppendUint32(h, miniCutoff)
	h = le.AppendUint32(h, secEndOfChain) // mini FAT
	h = le.AppendUint32(h, 0)
	h = le.AppendUint32(h, secEndOfChain) // DIFAT
	h = le.AppendUint32(h, 0)
	for i := 0; i < headerDIFATLen; i++ {
		if i < fatSectors {
			h = le.AppendUint32(h, uint32(dirSector+1+i))
		} else {
			h = le.AppendUint32(h, secFree)
		}
	}
	return h
}

func directory(streamSize int) []byte {
	d := make([]byte, 0, sectorSize)
	d = append(d, dirEntry("Root Entry", 5, 1, secEndOfChain, 0)...)
	d = append(d, dirEntry("Workbook", 2, noStream, 0, streamSize)...)
	for len(d) < sectorSize {
		d = append(d, unusedDirEntry()...)
	}
	return d
}

func dirEntry(name string, typ byte, child, start uint32, size int) []byte {
	e := make([]byte, 64, dirEntrySize)
	encoded, _ := utf16le.NewEncoder().Bytes([]byte(name))
	copy(e, encoded)
	e = le.AppendUint16(e, uint16(len(encoded)+2))
	e = append(e, typ, 1) // black node
	e = le.AppendUint32(e, noStream)
	e = le.AppendUint32(e, noStream)
	e = le.AppendUint32(e, child)
	e = append(e, make([]byte, 16+4+8+8)...) // CLSID, state, times
	e = le.AppendUint32(e, start)
	e = le.AppendUint32(e, uint32(size))
	return le.AppendUint32(e, 0)
}

func unusedDirEntry() []byte {
	e := make([]byte, 68, dirEntrySize)
	e = le.AppendUint32(e, noStream)
	e = le.AppendUint32(e, noStream)
	e = le.AppendUint32(e, noStream)
	return append(e, make([]byte, dirEntrySize-len(e))...)
}

func fat(streamSectors, fatSectors int) []byte {
	entries := make([]uint32, fatSectors*fatPerSector)
	for i := range entries {
		entries[i] = secFree
	}
	for i := 0; i < streamSectors-1; i++ {
		entries[i] = uint32(i + 1)
	}
	entries[streamSectors-1] = secEndOfChain
	entries[streamSectors] = secEndOfChain // directory
	for i := 0; i < fatSectors; i++ {
		entries[streamSectors+1+i] = secFAT
	}

	b := make([]byte, 0, len(entries)*4)
	for _, v := range entries {
		b = le.AppendUint32(b, v)
	}
	return b
}
