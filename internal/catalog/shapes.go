package catalog

import (
	"slices"

	"github.com/simeksgol/GoL-destroy/internal/grid"
)

func parseShape(rle string) []grid.Cell {
	g := grid.New()
	if _, err := grid.ParseLifeHistory(rle, 0, 0, grid.Layers{On: g}); err != nil {
		panic("catalog: bad built-in shape " + rle)
	}
	return normalize(g.Cells())
}

// normalize shifts cells so their bounding box starts at (0, 0) and sorts
// them in row-major order.
func normalize(cells []grid.Cell) []grid.Cell {
	if len(cells) == 0 {
		return nil
	}
	minX, minY := cells[0].X, cells[0].Y
	for _, c := range cells {
		minX = min(minX, c.X)
		minY = min(minY, c.Y)
	}
	out := make([]grid.Cell, len(cells))
	for i, c := range cells {
		out[i] = grid.Cell{X: c.X - minX, Y: c.Y - minY}
	}
	slices.SortFunc(out, func(a, b grid.Cell) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// transpose applies one of the eight board symmetries to normalized cells.
func transpose(cells []grid.Cell, orientation int) []grid.Cell {
	w, h := 0, 0
	for _, c := range cells {
		w = max(w, c.X)
		h = max(h, c.Y)
	}
	out := slices.Clone(cells)
	if orientation&4 != 0 {
		for i, c := range out {
			out[i] = grid.Cell{X: c.Y, Y: c.X}
		}
		w, h = h, w
	}
	if orientation&2 != 0 {
		for i, c := range out {
			out[i].Y = h - c.Y
		}
	}
	if low := orientation & 3; low == 1 || low == 2 {
		for i, c := range out {
			out[i].X = w - c.X
		}
	}
	return normalize(out)
}

func evolveCells(cells []grid.Cell) []grid.Cell {
	g := grid.New()
	g.OrCells(cells, 0, 0)
	next := grid.New()
	g.Evolve(next)
	return next.Cells()
}

func footprint(cells []grid.Cell) []grid.Cell {
	g := grid.New()
	g.OrCells(cells, 0, 0)
	next := grid.New()
	g.Evolve(next)
	next.Or(g)
	return next.Cells()
}
