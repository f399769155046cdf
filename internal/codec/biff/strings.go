package biff

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Option flags of an XLUnicodeString.
const (
	flagCompressed byte = 0x00 // one byte per character, Latin-1
	flagUTF16      byte = 0x01 // two bytes per character, UTF-16LE
)

// xlString is a string in the two BIFF8 character layouts.
type xlString struct {
	flag  byte
	chars int // character count as BIFF8 stores it
	data  []byte
}

func (s xlString) unit() int {
	if s.flag == flagUTF16 {
		return 2
	}
	return 1
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeString picks the compressed layout when every rune fits in Latin-1
// and UTF-16LE otherwise. Invalid UTF-8 is replaced with U+FFFD.
func encodeString(s string) xlString {
	if utf8.ValidString(s) && isLatin1(s) {
		if b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s)); err == nil {
			return xlString{flag: flagCompressed, chars: len(b), data: b}
		}
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		b = nil
	}
	return xlString{flag: flagUTF16, chars: len(b) / 2, data: b}
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// shortString encodes a ShortXLUnicodeString (8-bit length) for names that
// are known to be short ASCII.
func shortString(s string) []byte {
	x := encodeString(s)
	b := []byte{byte(x.chars), x.flag}
	return append(b, x.data...)
}
