package grid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Empty(), ""},
		{"text", Text("hello"), "hello"},
		{"integer", Number(42), "42"},
		{"negative decimal", Number(-1.25), "-1.25"},
		{"negative zero", Number(math.Copysign(0, -1)), "0"},
		{"large", Number(1e21), "1e+21"},
		{"small", Number(1e-7), "1e-07"},
		{"true", Bool(true), "TRUE"},
		{"false", Bool(false), "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestText_EmptyStringIsEmptyCell(t *testing.T) {
	c := Text("")
	assert.True(t, c.IsEmpty())
	assert.Equal(t, KindEmpty, c.Kind())
	assert.Nil(t, c.Value())
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		in     any
		want   Cell
		wantOK bool
	}{
		{nil, Empty(), true},
		{"x", Text("x"), true},
		{3, Number(3), true},
		{int64(7), Number(7), true},
		{2.5, Number(2.5), true},
		{true, Bool(true), true},
		{[]int{1}, Empty(), false},
	}

	for _, tt := range tests {
		got, ok := FromValue(tt.in)
		assert.Equal(t, tt.wantOK, ok, "FromValue(%v)", tt.in)
		assert.True(t, tt.want.Equal(got), "FromValue(%v) = %v", tt.in, got)
	}
}

func TestGrid_AtAndSet(t *testing.T) {
	g := Grid{{Text("a")}}

	assert.True(t, g.At(5, 5).IsEmpty())
	assert.True(t, g.At(-1, 0).IsEmpty())

	grown := g.Set(2, 3, Number(9))

	assert.Len(t, g, 1, "Set must not mutate the receiver")
	require.Len(t, grown, 3)
	assert.Len(t, grown[2], 4)
	assert.True(t, grown.At(2, 3).Equal(Number(9)))
	assert.True(t, grown.At(0, 0).Equal(Text("a")))
}

func TestGrid_Width(t *testing.T) {
	g := Grid{{}, {Empty(), Empty()}, {Empty()}}
	assert.Equal(t, 2, g.Width())
	assert.Equal(t, 0, Grid(nil).Width())
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
		{-1, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnName(tt.idx), "ColumnName(%d)", tt.idx)
		if tt.idx >= 0 {
			back, err := ColumnIndex(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.idx, back)
		}
	}
}

func TestParseRef(t *testing.T) {
	row, col, err := ParseRef("B3")
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, 1, col)

	row, col, err = ParseRef("aa10")
	require.NoError(t, err)
	assert.Equal(t, 9, row)
	assert.Equal(t, 26, col)

	assert.Equal(t, "AA10", Ref(9, 26))

	for _, bad := range []string{"", "3", "B", "B0", "B-1", "1B", "B3x"} {
		_, _, err := ParseRef(bad)
		assert.Error(t, err, "ParseRef(%q)", bad)
	}
}

func TestGrid_JSONTransferForm(t *testing.T) {
	g := Grid{
		{Text("a<b>"), Number(1.5), Bool(true), Empty()},
		{Text("x")},
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, `[["a<b>",1.5,true,""],["x"]]`, string(data))

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, g.Equal(back))
}

func TestGrid_UnmarshalJSON(t *testing.T) {
	var g Grid
	require.NoError(t, json.Unmarshal([]byte(`[[null, "", 0, false], []]`), &g))
	require.Len(t, g, 2)
	assert.True(t, g.At(0, 0).IsEmpty())
	assert.True(t, g.At(0, 1).IsEmpty())
	assert.True(t, g.At(0, 2).Equal(Number(0)))
	assert.True(t, g.At(0, 3).Equal(Bool(false)))
	assert.Empty(t, g[1])

	for _, bad := range []string{`{}`, `[1]`, `[[[1]]]`, `[[{"a":1}]]`} {
		var g Grid
		assert.Error(t, json.Unmarshal([]byte(bad), &g), "input %s", bad)
	}
}

func TestGrid_MarshalJSONRejectsNaN(t *testing.T) {
	_, err := json.Marshal(Grid{{Number(math.NaN())}})
	assert.Error(t, err)
}

func TestGrid_MarshalJSONNil(t *testing.T) {
	data, err := json.Marshal(Grid(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
