package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
)

func cells(xy ...int) []grid.Cell {
	out := make([]grid.Cell, 0, len(xy)/2)
	for i := 0; i < len(xy); i += 2 {
		out = append(out, grid.Cell{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestNew_ShapeTable(t *testing.T) {
	c := New(AllTypes())

	want := map[ir.ObjectType][]grid.Cell{
		0:  cells(0, 0, 0, 1, 1, 0, 1, 1),
		1:  cells(0, 1, 0, 2, 1, 0, 1, 3, 2, 1, 2, 2),
		2:  cells(0, 1, 1, 0, 1, 2, 2, 0, 2, 2, 3, 1),
		3:  cells(0, 0, 0, 1, 0, 2),
		4:  cells(0, 0, 1, 0, 2, 0),
		5:  cells(0, 1, 0, 2, 1, 0, 1, 3, 2, 0, 2, 2, 3, 1),
		6:  cells(0, 1, 1, 0, 1, 2, 2, 0, 2, 3, 3, 1, 3, 2),
		7:  cells(0, 2, 1, 1, 1, 3, 2, 0, 2, 3, 3, 1, 3, 2),
		8:  cells(0, 1, 0, 2, 1, 0, 1, 3, 2, 1, 2, 3, 3, 2),
		9:  cells(0, 0, 0, 1, 1, 0, 1, 2, 2, 1),
		10: cells(0, 1, 1, 0, 1, 2, 2, 0, 2, 1),
		11: cells(0, 1, 1, 0, 1, 2, 2, 1, 2, 2),
		12: cells(0, 1, 0, 2, 1, 0, 1, 2, 2, 1),
	}
	for typ, wantCells := range want {
		assert.ElementsMatch(t, wantCells, c.Shape(typ).Cells, "type %d", typ)
	}

	assert.Equal(t, "block", c.Shape(0).Name)
	assert.Equal(t, "hive/1", c.Shape(2).Name)
	assert.Equal(t, "blinker/0", c.Shape(3).Name)
	assert.Equal(t, "boat/3", c.Shape(12).Name)
	assert.Equal(t, 2, c.Shape(0).Width())
	assert.Equal(t, 4, c.Shape(1).Height())
}

func TestNew_Footprint(t *testing.T) {
	c := New(AllTypes())

	// still lifes occupy only themselves
	assert.ElementsMatch(t, c.Shape(0).Cells, c.Shape(0).Footprint)

	// a vertical blinker also covers its horizontal phase
	assert.ElementsMatch(t,
		cells(0, 0, 0, 1, 0, 2, -1, 1, 1, 1),
		c.Shape(3).Footprint)
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("13")
	require.NoError(t, err)

	c := New(sel)
	assert.Equal(t, []ir.ObjectType{0, 3, 4}, c.Enabled())
	assert.True(t, c.IsEnabled(4))
	assert.False(t, c.IsEnabled(1))
	assert.Equal(t, "13", sel.String())

	sel, err = ParseSelection("54")
	require.NoError(t, err)
	assert.Equal(t, []ir.ObjectType{5, 6, 7, 8, 9, 10, 11, 12}, New(sel).Enabled())

	sel, err = ParseSelection("")
	require.NoError(t, err)
	assert.Empty(t, New(sel).Enabled())
}

func TestParseSelection_Illegal(t *testing.T) {
	_, err := ParseSelection("16")
	var se *SelectionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, '6', se.Char)

	_, err = ParseSelection("1a")
	assert.Error(t, err)
}

func TestPlace(t *testing.T) {
	c := New(AllTypes())
	g := grid.New()
	require.True(t, c.Place(g, ir.Placement{Type: 0, X: -3, Y: -1}))
	assert.Equal(t, cells(-3, -1, -2, -1, -3, 0, -2, 0), g.Cells())

	assert.False(t, c.Place(g, ir.Placement{Type: 0, X: 127, Y: 0}))
}
