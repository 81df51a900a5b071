package search

import (
	"errors"
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/cost"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
)

// runSetup simulates setup until it repeats with period 1 or 2. A settled,
// non-empty pattern is returned with its cost.
func (d *Driver) runSetup(setup *grid.Grid) (SetupResult, int, error) {
	m2, m1, p0 := d.g.ringA, d.g.ringB, d.g.ringC
	p0.CopyFrom(setup)
	for gen := 0; ; gen++ {
		if !p0.IsSubsetOf(d.task.AllowedArea) {
			return SetupEscaped, 0, nil
		}
		if gen >= 2 && p0.Equal(m2) {
			break
		}
		if gen >= d.params.MaxNewGens {
			return SetupUnstable, 0, nil
		}
		m2, m1, p0 = m1, p0, m2
		m1.Evolve(p0)
	}
	if p0.IsEmpty() {
		return SetupEmpty, 0, nil
	}
	c, err := d.est.Cost(p0)
	if err != nil {
		var ce *cost.CapacityError
		if errors.As(err, &ce) {
			return SetupOvercrowded, 0, nil
		}
		return 0, 0, err
	}
	return SetupStable, c, nil
}

// gensUntilStable returns the first generation equal to the one two before
// it, or MaxStabilizeGens if there is none.
func (d *Driver) gensUntilStable(pattern *grid.Grid) int {
	m2, m1, p0 := d.g.ringA, d.g.ringB, d.g.ringC
	p0.CopyFrom(pattern)
	gen := 0
	for !(gen >= 2 && p0.Equal(m2)) && gen < d.params.MaxStabilizeGens {
		m2, m1, p0 = m1, p0, m2
		m1.Evolve(p0)
		gen++
	}
	return gen
}

// runFor advances pattern in place by gens generations.
func (d *Driver) runFor(pattern *grid.Grid, gens int) {
	cur, next := d.g.ringA, d.g.ringB
	cur.CopyFrom(pattern)
	for i := 0; i < gens; i++ {
		cur.Evolve(next)
		cur, next = next, cur
	}
	pattern.CopyFrom(cur)
}

// splitHistory evolves pattern to endGen. It leaves in d.g.start the pattern
// at lastEarlyGen (or pattern itself if lastEarlyGen is negative), in
// d.g.earlyEnv every cell alive up to and including lastEarlyGen, and in
// d.g.lateEnv every cell alive after it.
func (d *Driver) splitHistory(pattern *grid.Grid, lastEarlyGen, endGen int) {
	start, earlyEnv, lateEnv := d.g.start, d.g.earlyEnv, d.g.lateEnv
	start.CopyFrom(pattern)
	earlyEnv.Clear()
	lateEnv.Clear()

	cur, next := d.g.ringA, d.g.ringB
	cur.CopyFrom(pattern)
	for gen := 0; ; gen++ {
		lateEnv.Or(cur)
		if gen == lastEarlyGen {
			start.CopyFrom(cur)
			earlyEnv.CopyFrom(lateEnv)
			lateEnv.Clear()
		}
		if gen >= endGen {
			return
		}
		cur.Evolve(next)
		cur, next = next, cur
	}
}

// costFromScratch settles the problem with the given objects placed and
// returns its cost.
func (d *Driver) costFromScratch(placements []ir.Placement) (int, error) {
	g := d.g.scratchSetup
	g.CopyFrom(d.task.Problem)
	d.cat.PlaceAll(g, placements)
	d.runFor(g, d.gensUntilStable(g))
	c, err := d.est.Cost(g)
	if err != nil {
		return 0, fmt.Errorf("costFromScratch: %w", err)
	}
	return c, nil
}
