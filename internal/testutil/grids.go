// Package testutil holds deterministic helpers shared by package tests.
package testutil

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/simeksgol/GoL-destroy/internal/grid"
)

// NewSeededRand returns a reproducible random source.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// GridFromCells returns a grid with the given cells alive. It panics if a
// cell is off the board.
func GridFromCells(cells ...grid.Cell) *grid.Grid {
	g := grid.New()
	for _, c := range cells {
		if !g.Set(c.X, c.Y) {
			panic(fmt.Sprintf("testutil: cell (%d,%d) is off the board", c.X, c.Y))
		}
	}
	return g
}

// Box returns a grid with every cell of the w by h rectangle at (x, y) alive.
func Box(x, y, w, h int) *grid.Grid {
	g := grid.New()
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			g.Set(xx, yy)
		}
	}
	return g
}

// GridFromText builds a grid from rows of text, placing the first character
// of the first row at (x, y). 'o', 'O' and '*' are alive; anything else is
// dead. Leading and trailing blank lines are ignored.
//
//	GridFromText(0, 0, `
//	    .o.
//	    ..o
//	    ooo`)
func GridFromText(x, y int, text string) *grid.Grid {
	g := grid.New()
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	for dy, line := range lines {
		for dx, ch := range strings.TrimSpace(line) {
			switch ch {
			case 'o', 'O', '*':
				if !g.Set(x+dx, y+dy) {
					panic(fmt.Sprintf("testutil: cell (%d,%d) is off the board", x+dx, y+dy))
				}
			}
		}
	}
	return g
}
