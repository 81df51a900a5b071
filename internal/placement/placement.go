// Package placement precomputes every position at which a catalog object may
// be placed inside the catalyst area and filters them against per-candidate
// constraints.
package placement

import (
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/catalog"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
)

// Range is the half-open coordinate range scanned for placements on both axes.
const (
	RangeMin = -MaxPatternSize / 2
	RangeMax = MaxPatternSize / 2

	// MaxPatternSize is the largest pattern side the search accepts.
	MaxPatternSize = grid.Size - 8
)

// DefaultMaxPlacements bounds the size of the placement list.
const DefaultMaxPlacements = 262144

// CapacityError is returned when the catalyst area admits more placements
// than the configured limit.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("more than %d possible object placements", e.Limit)
}

// Constraints restrict which placements are legal for one candidate. A
// placement's footprint must avoid Forbidden and LockedOut and must touch
// MustTouch.
type Constraints struct {
	Forbidden *grid.Grid
	MustTouch *grid.Grid
	LockedOut *grid.Grid
}

// Enumerator holds the precomputed placement list.
type Enumerator struct {
	cat        *catalog.Catalog
	placements []ir.Placement
}

// NewEnumerator lists, in type-major then row-major order, every placement
// of an enabled type whose footprint lies entirely inside catArea.
func NewEnumerator(cat *catalog.Catalog, catArea *grid.Grid, maxPlacements int) (*Enumerator, error) {
	e := &Enumerator{cat: cat}
	for _, t := range cat.Enabled() {
		fp := cat.Shape(t).Footprint
		for y := RangeMin; y < RangeMax; y++ {
			for x := RangeMin; x < RangeMax; x++ {
				if !inside(fp, x, y, catArea) {
					continue
				}
				if len(e.placements) >= maxPlacements {
					return nil, &CapacityError{Limit: maxPlacements}
				}
				e.placements = append(e.placements, ir.NewPlacement(t, x, y))
			}
		}
	}
	return e, nil
}

func inside(cells []grid.Cell, dx, dy int, area *grid.Grid) bool {
	for _, c := range cells {
		if !area.Get(c.X+dx, c.Y+dy) {
			return false
		}
	}
	return true
}

// Len returns the number of precomputed placements.
func (e *Enumerator) Len() int {
	return len(e.placements)
}

// Placements returns the precomputed list. Callers must not modify it.
func (e *Enumerator) Placements() []ir.Placement {
	return e.placements
}

// Legal reports whether p satisfies c.
func (e *Enumerator) Legal(p ir.Placement, c Constraints) bool {
	touched := false
	dx, dy := int(p.X), int(p.Y)
	for _, cell := range e.cat.Shape(p.Type).Footprint {
		x, y := cell.X+dx, cell.Y+dy
		if c.Forbidden.Get(x, y) || c.LockedOut.Get(x, y) {
			return false
		}
		if !touched && c.MustTouch.Get(x, y) {
			touched = true
		}
	}
	return touched
}

// Each calls fn for every legal placement in list order until fn returns
// false or an error.
func (e *Enumerator) Each(c Constraints, fn func(ir.Placement) (bool, error)) error {
	for _, p := range e.placements {
		if !e.Legal(p, c) {
			continue
		}
		more, err := fn(p)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
