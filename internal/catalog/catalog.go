// Package catalog defines the catalyst objects the search may place: every
// still life and oscillator phase, in each orientation, is its own object
// type with a dense index.
package catalog

import (
	"fmt"
	"strings"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
)

// TypeCount is the number of object types in the catalog.
const TypeCount = 13

// Shape is one object type: a fixed cell pattern in a fixed orientation and
// phase. Cells are relative to the top-left of the shape's bounding box.
type Shape struct {
	Type   ir.ObjectType
	Family string
	Name   string
	Cells  []grid.Cell

	// Footprint is the union of the shape and its next generation, which is
	// what a placement must keep clear of forbidden cells.
	Footprint []grid.Cell
}

// Width and Height give the size of the shape's bounding box.
func (s *Shape) Width() int  { return span(s.Cells, func(c grid.Cell) int { return c.X }) }
func (s *Shape) Height() int { return span(s.Cells, func(c grid.Cell) int { return c.Y }) }

func span(cells []grid.Cell, coord func(grid.Cell) int) int {
	if len(cells) == 0 {
		return 0
	}
	lo, hi := coord(cells[0]), coord(cells[0])
	for _, c := range cells[1:] {
		lo = min(lo, coord(c))
		hi = max(hi, coord(c))
	}
	return hi - lo + 1
}

// family describes one object family and how its variants are derived.
// Orientation numbers use transpose: bit 2 swaps axes, bit 1 flips
// vertically, and values 1 and 2 of the low bits flip horizontally.
type family struct {
	digit        byte
	name         string
	rle          string
	orientations []int
	phases       int
}

var families = []family{
	{digit: '1', name: "block", rle: "2o$2o!", orientations: []int{0}, phases: 1},
	{digit: '2', name: "hive", rle: "bo$obo$obo$bo!", orientations: []int{0, 4}, phases: 1},
	{digit: '3', name: "blinker", rle: "o$o$o!", orientations: []int{0}, phases: 2},
	{digit: '4', name: "loaf", rle: "b2o$o2bo$obo$bo!", orientations: []int{0, 1, 2, 3}, phases: 1},
	{digit: '5', name: "boat", rle: "2o$obo$bo!", orientations: []int{0, 1, 2, 3}, phases: 1},
}

// Selection marks which object types the search may place.
type Selection [TypeCount]bool

// SelectionError reports an unknown family digit.
type SelectionError struct {
	Char rune
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("illegal object type %q (expected digits 1-%d)", e.Char, len(families))
}

// ParseSelection decodes a string of family digits: 1 block, 2 hive,
// 3 blinker, 4 loaf, 5 boat. Each digit enables every variant of its family.
// An empty string selects nothing.
func ParseSelection(digits string) (Selection, error) {
	var sel Selection
	ranges := familyRanges()
	for _, ch := range digits {
		idx := -1
		for i, f := range families {
			if rune(f.digit) == ch {
				idx = i
			}
		}
		if idx < 0 {
			return Selection{}, &SelectionError{Char: ch}
		}
		for t := ranges[idx][0]; t < ranges[idx][1]; t++ {
			sel[t] = true
		}
	}
	return sel, nil
}

// AllTypes selects every object type.
func AllTypes() Selection {
	var sel Selection
	for i := range sel {
		sel[i] = true
	}
	return sel
}

// String returns the family digits of every fully or partially selected family.
func (s Selection) String() string {
	var sb strings.Builder
	for i, r := range familyRanges() {
		for t := r[0]; t < r[1]; t++ {
			if s[t] {
				sb.WriteByte(families[i].digit)
				break
			}
		}
	}
	return sb.String()
}

func familyRanges() [][2]int {
	out := make([][2]int, len(families))
	next := 0
	for i, f := range families {
		n := len(f.orientations) * f.phases
		out[i] = [2]int{next, next + n}
		next += n
	}
	return out
}

// Catalog holds every object type and the subset enabled for a search.
type Catalog struct {
	shapes  [TypeCount]Shape
	enabled Selection
}

// New builds the catalog with the given types enabled.
func New(sel Selection) *Catalog {
	c := &Catalog{enabled: sel}
	next := 0
	for _, f := range families {
		variants := len(f.orientations) * f.phases
		base := parseShape(f.rle)
		v := 0
		for _, o := range f.orientations {
			cells := transpose(base, o)
			for ph := 0; ph < f.phases; ph++ {
				name := f.name
				if variants > 1 {
					name = fmt.Sprintf("%s/%d", f.name, v)
				}
				c.shapes[next] = Shape{
					Type:      ir.ObjectType(next),
					Family:    f.name,
					Name:      name,
					Cells:     cells,
					Footprint: footprint(cells),
				}
				next++
				v++
				cells = normalize(evolveCells(cells))
			}
		}
	}
	return c
}

// Shape returns the shape for t.
func (c *Catalog) Shape(t ir.ObjectType) *Shape {
	return &c.shapes[t]
}

// IsEnabled reports whether t may be placed.
func (c *Catalog) IsEnabled(t ir.ObjectType) bool {
	return int(t) < TypeCount && c.enabled[t]
}

// Enabled returns the enabled types in index order.
func (c *Catalog) Enabled() []ir.ObjectType {
	var out []ir.ObjectType
	for i, on := range c.enabled {
		if on {
			out = append(out, ir.ObjectType(i))
		}
	}
	return out
}

// Selection returns the enabled set.
func (c *Catalog) Selection() Selection {
	return c.enabled
}

// Place draws p onto g. It returns false if any cell was clipped.
func (c *Catalog) Place(g *grid.Grid, p ir.Placement) bool {
	return g.OrCells(c.shapes[p.Type].Cells, int(p.X), int(p.Y))
}

// PlaceAll draws every placement onto g.
func (c *Catalog) PlaceAll(g *grid.Grid, placements []ir.Placement) bool {
	ok := true
	for _, p := range placements {
		if !c.Place(g, p) {
			ok = false
		}
	}
	return ok
}
