package grid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON writes the cell as a raw JSON scalar. Empty cells are "".
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return marshalString(c.text), nil
	case KindNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return nil, fmt.Errorf("grid: unsupported number %v", c.num)
		}
		return strconv.AppendFloat(nil, c.num, 'g', -1, 64), nil
	case KindBool:
		return strconv.AppendBool(nil, c.flag), nil
	default:
		return []byte(`""`), nil
	}
}

// UnmarshalJSON reads a JSON scalar. null and "" become the empty cell;
// arrays and objects are rejected.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("grid: empty cell value")
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("grid: invalid cell value %s", data)
		}
		*c = Empty()
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("grid: invalid cell value %s", data)
		}
		*c = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("grid: invalid string cell: %w", err)
		}
		*c = Text(s)
	case '[', '{':
		return fmt.Errorf("grid: cell must be a scalar, got %c", data[0])
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("grid: invalid number %s", data)
		}
		*c = Number(f)
	}
	return nil
}

// MarshalJSON writes the canonical transfer form: an array of arrays of raw
// scalars. A nil grid is written as [].
func (g Grid) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, c := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			b, err := c.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the canonical transfer form. null is an empty grid.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*g = Grid(rows)
	return nil
}

// marshalString quotes s as JSON without escaping <, > and &.
func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return bytes.TrimRight(buf.Bytes(), "\n")
}
