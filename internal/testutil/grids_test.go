package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simeksgol/GoL-destroy/internal/grid"
)

func TestGridFromText_Glider(t *testing.T) {
	g := GridFromText(-1, 2, `
		.o.
		..o
		ooo`)

	assert.Equal(t, 5, g.Population())
	assert.Equal(t, []grid.Cell{{X: 0, Y: 2}, {X: 1, Y: 3}, {X: -1, Y: 4}, {X: 0, Y: 4}, {X: 1, Y: 4}}, g.Cells())
}

func TestGridFromCells_MatchesText(t *testing.T) {
	a := GridFromCells(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 0}, grid.Cell{X: 0, Y: 1}, grid.Cell{X: 1, Y: 1})
	b := GridFromText(0, 0, "oo\noo")
	assert.True(t, a.Equal(b))
}

func TestGridFromCells_PanicsOffBoard(t *testing.T) {
	assert.Panics(t, func() { GridFromCells(grid.Cell{X: 500, Y: 0}) })
}

func TestBox(t *testing.T) {
	b := Box(-2, -3, 4, 5)
	assert.Equal(t, 20, b.Population())
	assert.Equal(t, grid.Rect{LeftX: -2, TopY: -3, Width: 4, Height: 5}, b.BoundingBox())
}

func TestNewSeededRand_Reproducible(t *testing.T) {
	a := NewSeededRand(42)
	b := NewSeededRand(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
