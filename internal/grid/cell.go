package grid

import (
	"math"
	"strconv"
)

// Kind identifies which scalar a Cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cell is a single spreadsheet value. The zero Cell is empty.
type Cell struct {
	kind Kind
	text string
	num  float64
	flag bool
}

// Empty returns the empty cell.
func Empty() Cell { return Cell{} }

// Text returns a string cell. Text("") is the empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: KindString, text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, flag: b} }

// FromValue builds a cell from a raw scalar: nil, string, bool, or any Go
// integer or float type. Unsupported types report ok=false.
func FromValue(v any) (Cell, bool) {
	switch x := v.(type) {
	case nil:
		return Empty(), true
	case Cell:
		return x, true
	case string:
		return Text(x), true
	case bool:
		return Bool(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case int32:
		return Number(float64(x)), true
	case uint:
		return Number(float64(x)), true
	case uint64:
		return Number(float64(x)), true
	case uint32:
		return Number(float64(x)), true
	default:
		return Empty(), false
	}
}

// Kind reports which scalar the cell holds.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// Text returns the string value and whether the cell is a string.
func (c Cell) Text() (string, bool) { return c.text, c.kind == KindString }

// Number returns the numeric value and whether the cell is a number.
func (c Cell) Number() (float64, bool) { return c.num, c.kind == KindNumber }

// Bool returns the boolean value and whether the cell is a boolean.
func (c Cell) Bool() (bool, bool) { return c.flag, c.kind == KindBool }

// Value returns the raw scalar: nil, string, float64 or bool.
func (c Cell) Value() any {
	switch c.kind {
	case KindString:
		return c.text
	case KindNumber:
		return c.num
	case KindBool:
		return c.flag
	default:
		return nil
	}
}

// String returns the display text of the cell. Numbers use the shortest
// representation that parses back to the same float; booleans are TRUE or
// FALSE as spreadsheet applications print them.
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.text
	case KindNumber:
		return FormatNumber(c.num)
	case KindBool:
		if c.flag {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindString:
		return c.text == o.text
	case KindNumber:
		return c.num == o.num || (math.IsNaN(c.num) && math.IsNaN(o.num))
	case KindBool:
		return c.flag == o.flag
	default:
		return true
	}
}

// FormatNumber renders f without exponent for ordinary magnitudes and in
// exponent form below 1e-6 or from 1e21 up.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
