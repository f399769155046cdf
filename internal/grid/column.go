package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnName returns the spreadsheet letter name of a zero-based column
// index: 0 is A, 25 is Z, 26 is AA. Negative indexes return "".
func ColumnName(i int) string {
	if i < 0 {
		return ""
	}
	var buf [16]byte
	n := len(buf)
	for i >= 0 {
		n--
		buf[n] = byte('A' + i%26)
		i = i/26 - 1
	}
	return string(buf[n:])
}

// ColumnIndex is the inverse of ColumnName. Letters are case-insensitive.
func ColumnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	idx := 0
	for _, r := range strings.ToUpper(name) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		idx = idx*26 + int(r-'A'+1)
		if idx > 1<<24 {
			return 0, fmt.Errorf("column name %q out of range", name)
		}
	}
	return idx - 1, nil
}

// ParseRef parses an A1-style reference such as "B3" into zero-based
// (row, col) indexes.
func ParseRef(ref string) (row, col int, err error) {
	ref = strings.TrimSpace(ref)
	split := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	col, err = ColumnIndex(ref[:split])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	n, err := strconv.Atoi(ref[split:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q: bad row number", ref)
	}
	return n - 1, col, nil
}

// Ref formats zero-based (row, col) indexes as an A1-style reference.
func Ref(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row+1)
}
