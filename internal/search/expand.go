package search

import (
	"errors"
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/dedup"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/placement"
)

// Dedup index labels for logs and metrics.
const (
	indexStartingPoints = "starting_points"
	indexTestedSetups   = "tested_setups"
)

// expand tries every legal next object for the candidate with the given
// placements. Settled survivors go to the unfiltered pool. A non-nil
// Solution stops the search.
func (d *Driver) expand(placements []ir.Placement) (*Solution, error) {
	g := &d.g
	n := len(placements)

	g.objects.Clear()
	d.cat.PlaceAll(g.objects, placements)
	g.inSetup.CopyFrom(d.task.Problem)
	g.inSetup.Or(g.objects)

	stableGen := d.gensUntilStable(g.inSetup)

	// Objects are added at an even generation so oscillators keep their phase.
	lastEarlyGen := -1
	if n > 0 {
		lastEarlyGen = max(-1, (stableGen-d.params.LatePhaseGens)&^1)
	}
	d.splitHistory(g.inSetup, lastEarlyGen, stableGen)

	g.earlyEnv.Bleed8(g.temp)
	g.temp.Bleed4(g.forbidden)
	g.lateEnv.Bleed8(g.temp)
	g.temp.Bleed4(g.mustTouch)

	g.useable.And(d.task.CatalystArea, g.mustTouch)
	g.useable.Subtract(g.forbidden)

	key := ir.CombineFingerprints(d.hasher.Hash(g.start), d.hasher.Hash(g.useable))
	seen, err := d.indexStore(d.seen, indexStartingPoints, key)
	if err != nil {
		return nil, err
	}
	if seen {
		d.metrics.dedupHit(indexStartingPoints)
		return nil, nil
	}

	g.objects.Evolve(g.temp)
	g.temp.Or(g.objects)
	g.temp.Bleed8(g.temp2)
	g.temp2.Bleed4(g.lockedOut)

	d.extended = append(d.extended[:0], placements...)
	d.extended = append(d.extended, ir.Placement{})

	var sol *Solution
	constraints := placement.Constraints{
		Forbidden: g.forbidden,
		MustTouch: g.mustTouch,
		LockedOut: g.lockedOut,
	}
	err = d.enum.Each(constraints, func(p ir.Placement) (bool, error) {
		g.newObject.Clear()
		d.cat.Place(g.newObject, p)
		g.allObjects.CopyFrom(g.newObject)
		g.allObjects.Or(g.objects)

		tested, err := d.indexStore(d.tested, indexTestedSetups, d.hasher.Hash(g.allObjects))
		if err != nil {
			return false, err
		}
		if tested {
			d.metrics.dedupHit(indexTestedSetups)
			return true, nil
		}

		g.setup.CopyFrom(g.start)
		g.setup.Or(g.newObject)
		d.extended[n] = p

		result, c, err := d.runSetup(g.setup)
		if err != nil {
			return false, err
		}
		d.metrics.setup(result)
		switch result {
		case SetupEmpty:
			sol, err = d.solution(d.extended)
			return false, err
		case SetupStable:
			if err := d.storeCandidate(d.unfiltered, d.extended, c); err != nil {
				return false, err
			}
			d.metrics.candidateStored()
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return sol, nil
}

// indexStore records key and reports whether it was already present. A full
// index only costs pruning, so the key is then treated as new.
func (d *Driver) indexStore(ix *dedup.Index, name string, key uint64) (bool, error) {
	present, err := ix.Store(key, 0, false)
	if errors.Is(err, dedup.ErrIndexFull) {
		d.metrics.indexFull(name)
		if !d.warned[name] {
			d.warned[name] = true
			d.logger.Warn("dedup index full, continuing without pruning",
				"index", name,
				"entries", ix.Len(),
				"capacity", ix.Capacity())
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup %s: %w", name, err)
	}
	return present, nil
}

// solution builds the report for a placement list that dies out.
func (d *Driver) solution(placements []ir.Placement) (*Solution, error) {
	sol := &Solution{
		Placements: append([]ir.Placement(nil), placements...),
		Pattern:    grid.New(),
		Objects:    grid.New(),
	}
	d.cat.PlaceAll(sol.Objects, sol.Placements)
	sol.Pattern.CopyFrom(d.task.Problem)
	sol.Pattern.Or(sol.Objects)

	for k := 1; k < len(sol.Placements); k++ {
		c, err := d.costFromScratch(sol.Placements[:k])
		if err != nil {
			return nil, err
		}
		sol.PrefixCosts = append(sol.PrefixCosts, c)
	}
	d.logger.Info("found a solution", "objects", len(sol.Placements))
	return sol, nil
}
